package mining_test

import (
	"errors"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/uBasket/basketgraph"
	"github.com/mycok/uBasket/mining"
)

var _ = check.Suite(new(miningTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type miningTestSuite struct {
	g *basketgraph.Graph
}

// SetUpTest replays six baskets: {bread, milk, butter}, {bread, milk}
// and four occurrences of {butter, jam}. The resulting edge weights are
// bread-milk: 2, bread-butter: 1, butter-milk: 1 and butter-jam: 4.
func (s *miningTestSuite) SetUpTest(c *check.C) {
	s.g = basketgraph.New()

	baskets := [][]string{
		{"bread", "milk", "butter"},
		{"bread", "milk"},
		{"butter", "jam"},
		{"butter", "jam"},
		{"butter", "jam"},
		{"butter", "jam"},
	}

	for _, basket := range baskets {
		for i := 0; i < len(basket); i++ {
			for j := i + 1; j < len(basket); j++ {
				s.g.AddCoPurchase(basket[i], basket[j])
			}
		}
	}
}

func (s *miningTestSuite) TestFrequentPairsFiltersByMinSupport(c *check.C) {
	pairs, err := mining.FrequentPairs(s.g, 3)
	c.Assert(err, check.IsNil)
	c.Assert(pairs, check.DeepEquals, []basketgraph.Pair{
		{ItemA: "butter", ItemB: "jam", Weight: 4},
	})

	// The threshold is inclusive.
	pairs, err = mining.FrequentPairs(s.g, 4)
	c.Assert(err, check.IsNil)
	c.Assert(pairs, check.DeepEquals, []basketgraph.Pair{
		{ItemA: "butter", ItemB: "jam", Weight: 4},
	})
}

func (s *miningTestSuite) TestFrequentPairsRanking(c *check.C) {
	pairs, err := mining.FrequentPairs(s.g, 1)
	c.Assert(err, check.IsNil)

	// Descending weight, with the two weight-1 pairs ordered by their
	// lexicographic pair labels.
	c.Assert(pairs, check.DeepEquals, []basketgraph.Pair{
		{ItemA: "butter", ItemB: "jam", Weight: 4},
		{ItemA: "bread", ItemB: "milk", Weight: 2},
		{ItemA: "bread", ItemB: "butter", Weight: 1},
		{ItemA: "butter", ItemB: "milk", Weight: 1},
	})
}

func (s *miningTestSuite) TestFrequentPairsWithUnreachableThreshold(c *check.C) {
	pairs, err := mining.FrequentPairs(s.g, 5)
	c.Assert(err, check.IsNil)
	c.Assert(pairs, check.HasLen, 0)
}

func (s *miningTestSuite) TestTopBundles(c *check.C) {
	bundles, err := mining.TopBundles(s.g, 2)
	c.Assert(err, check.IsNil)
	c.Assert(bundles, check.DeepEquals, []basketgraph.Pair{
		{ItemA: "butter", ItemB: "jam", Weight: 4},
		{ItemA: "bread", ItemB: "milk", Weight: 2},
	})

	// Requesting more bundles than there are pairs returns all pairs.
	bundles, err = mining.TopBundles(s.g, 100)
	c.Assert(err, check.IsNil)
	c.Assert(bundles, check.HasLen, 4)
}

func (s *miningTestSuite) TestTopBundlesWithNonPositiveCount(c *check.C) {
	for _, k := range []int{0, -1} {
		bundles, err := mining.TopBundles(s.g, k)
		c.Assert(err, check.IsNil)
		c.Assert(bundles, check.HasLen, 0, check.Commentf("k=%d", k))
	}
}

func (s *miningTestSuite) TestTopBundlesPrefixStability(c *check.C) {
	for k := 1; k < 4; k++ {
		shorter, err := mining.TopBundles(s.g, k)
		c.Assert(err, check.IsNil)

		longer, err := mining.TopBundles(s.g, k+1)
		c.Assert(err, check.IsNil)

		c.Assert(
			shorter, check.DeepEquals, longer[:k],
			check.Commentf("top bundles for k=%d are not a prefix of k=%d", k, k+1),
		)
	}
}

func (s *miningTestSuite) TestStrongestAssociations(c *check.C) {
	associations, err := mining.StrongestAssociations(s.g, 1)
	c.Assert(err, check.IsNil)
	c.Assert(associations, check.DeepEquals, []basketgraph.Pair{
		{ItemA: "butter", ItemB: "jam", Weight: 4},
	})
}

func (s *miningTestSuite) TestStrongestAssociationsDefaultCount(c *check.C) {
	// A non-positive count falls back to DefaultTopAssociations, which
	// covers all four pairs of the fixture graph.
	associations, err := mining.StrongestAssociations(s.g, 0)
	c.Assert(err, check.IsNil)
	c.Assert(associations, check.HasLen, 4)
	c.Assert(associations[0], check.DeepEquals, basketgraph.Pair{
		ItemA: "butter", ItemB: "jam", Weight: 4,
	})
}

func (s *miningTestSuite) TestRecommendItems(c *check.C) {
	c.Assert(mining.RecommendItems(s.g, "bread", 1), check.DeepEquals, []mining.Recommendation{
		{Item: "milk", Weight: 2},
	})

	// Fewer neighbours than requested returns all of them.
	c.Assert(mining.RecommendItems(s.g, "bread", 10), check.DeepEquals, []mining.Recommendation{
		{Item: "milk", Weight: 2},
		{Item: "butter", Weight: 1},
	})
}

func (s *miningTestSuite) TestRecommendItemsForUnknownItem(c *check.C) {
	c.Assert(mining.RecommendItems(s.g, "unknown", 5), check.HasLen, 0)
}

func (s *miningTestSuite) TestRecommendItemsWithNonPositiveCount(c *check.C) {
	c.Assert(mining.RecommendItems(s.g, "bread", 0), check.HasLen, 0)
	c.Assert(mining.RecommendItems(s.g, "bread", -3), check.HasLen, 0)
}

func (s *miningTestSuite) TestRecommendationTieBreak(c *check.C) {
	g := basketgraph.New()
	g.AddCoPurchase("bread", "milk")
	g.AddCoPurchase("bread", "butter")

	// Equal weights are ordered by item label.
	c.Assert(mining.RecommendItems(g, "bread", 10), check.DeepEquals, []mining.Recommendation{
		{Item: "butter", Weight: 1},
		{Item: "milk", Weight: 1},
	})
}

func (s *miningTestSuite) TestEmptyGraphQueries(c *check.C) {
	g := basketgraph.New()

	pairs, err := mining.FrequentPairs(g, 1)
	c.Assert(err, check.IsNil)
	c.Assert(pairs, check.HasLen, 0)

	bundles, err := mining.TopBundles(g, 5)
	c.Assert(err, check.IsNil)
	c.Assert(bundles, check.HasLen, 0)
}

func (s *miningTestSuite) TestPairSourceErrorsPropagate(c *check.C) {
	g := failingGraph{}

	_, err := mining.FrequentPairs(g, 1)
	c.Assert(err, check.ErrorMatches, "(?s).*pair source failed.*")

	_, err = mining.TopBundles(g, 1)
	c.Assert(err, check.ErrorMatches, "(?s).*pair source failed.*")

	// A non-positive k never touches the pair source.
	bundles, err := mining.TopBundles(g, 0)
	c.Assert(err, check.IsNil)
	c.Assert(bundles, check.HasLen, 0)
}

// failingGraph stubs the mining graph contract with a pair source that
// always reports an iteration error.
type failingGraph struct{}

func (failingGraph) Pairs() basketgraph.PairIterator {
	return &failingPairIterator{err: errors.New("pair source failed")}
}

func (failingGraph) Neighbours(_ string) map[string]int { return nil }

type failingPairIterator struct {
	err error
}

func (it *failingPairIterator) Next() bool             { return false }
func (it *failingPairIterator) Error() error           { return it.err }
func (it *failingPairIterator) Close() error           { return nil }
func (it *failingPairIterator) Pair() basketgraph.Pair { return basketgraph.Pair{} }
