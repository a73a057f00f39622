package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	check "gopkg.in/check.v1"

	"github.com/mycok/uBasket/dataset"
)

// Initialize and register a pointer instance of the builderTestSuite
// to be executed by check testing package.
var _ = check.Suite(new(builderTestSuite))

type builderTestSuite struct{}

func (s *builderTestSuite) TestBuildGraphFromBaskets(c *check.C) {
	baskets := map[dataset.BasketKey]dataset.Basket{
		{CustomerID: "1", Date: "01-01-2015"}: {"bread", "milk", "butter"},
		{CustomerID: "2", Date: "01-01-2015"}: {"bread", "milk"},
		{CustomerID: "3", Date: "01-01-2015"}: {"butter", "jam"},
		{CustomerID: "3", Date: "02-01-2015"}: {"butter", "jam"},
		{CustomerID: "4", Date: "01-01-2015"}: {"butter", "jam"},
		{CustomerID: "5", Date: "01-01-2015"}: {"butter", "jam"},
	}

	g := dataset.BuildGraph(baskets)

	c.Assert(g.EdgeWeight("bread", "milk"), check.Equals, 2)
	c.Assert(g.EdgeWeight("milk", "bread"), check.Equals, 2)
	c.Assert(g.EdgeWeight("butter", "jam"), check.Equals, 4)
	c.Assert(g.EdgeWeight("bread", "butter"), check.Equals, 1)
	c.Assert(g.EdgeWeight("milk", "butter"), check.Equals, 1)
	c.Assert(g.NumItems(), check.Equals, 4)
	c.Assert(g.NumEdges(), check.Equals, 4)
}

func (s *builderTestSuite) TestBuildGraphRegistersSingleItemBaskets(c *check.C) {
	baskets := map[dataset.BasketKey]dataset.Basket{
		{CustomerID: "1", Date: "01-01-2015"}: {"candles"},
	}

	g := dataset.BuildGraph(baskets)

	c.Assert(g.HasItem("candles"), check.Equals, true)
	c.Assert(g.NumEdges(), check.Equals, 0)
}

func (s *builderTestSuite) TestBuildGraphFromFile(c *check.C) {
	rows := []string{
		"Member_number,Date,itemDescription",
		"1,01-01-2015,bread",
		"1,01-01-2015,bread",
		"1,01-01-2015,milk",
		"2,01-01-2015,   ",
		"2,01-01-2015,bread",
		"2,01-01-2015,milk",
		"3,01-01-2015,butter",
		"3,01-01-2015,jam",
	}

	path := filepath.Join(c.MkDir(), "groceries.csv")
	err := os.WriteFile(path, []byte(strings.Join(rows, "\n")), 0o644)
	c.Assert(err, check.IsNil)

	g, stats, err := dataset.BuildGraphFromFile(path, dataset.Schema{})
	c.Assert(err, check.IsNil)

	// The duplicate bread purchase collapses before pairing, so the
	// bread-milk edge grows by exactly one per basket.
	c.Assert(g.EdgeWeight("bread", "milk"), check.Equals, 2)
	c.Assert(g.EdgeWeight("butter", "jam"), check.Equals, 1)
	c.Assert(g.EdgeWeight("bread", "bread"), check.Equals, 0)

	c.Assert(stats, check.DeepEquals, dataset.Stats{
		RecordsRead:    8,
		RecordsSkipped: 1,
		Baskets:        3,
	})
}

func (s *builderTestSuite) TestBuildGraphFromFileWithBadHeader(c *check.C) {
	path := filepath.Join(c.MkDir(), "groceries.csv")
	err := os.WriteFile(path, []byte("Member_number,Date\n1,01-01-2015\n"), 0o644)
	c.Assert(err, check.IsNil)

	_, _, err = dataset.BuildGraphFromFile(path, dataset.Schema{})
	c.Assert(errors.Is(err, dataset.ErrMissingColumns), check.Equals, true)
}

func (s *builderTestSuite) TestBuildGraphFromMissingFile(c *check.C) {
	_, _, err := dataset.BuildGraphFromFile(
		filepath.Join(c.MkDir(), "no-such-file.csv"), dataset.Schema{},
	)
	c.Assert(err, check.ErrorMatches, "(?s).*open dataset.*")
}
