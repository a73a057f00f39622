/*
	mining package implements the pair-frequency mining, ranking and
	recommendation queries that run over a fully-built co-purchase
	graph. All queries are pure reads: conditions that match nothing
	yield empty results, never errors.
*/

package mining

import (
	"sort"

	"github.com/mycok/uBasket/basketgraph"
)

// DefaultTopAssociations is the association count used by
// StrongestAssociations when the caller does not request a positive
// number of results.
const DefaultTopAssociations = 10

// Graph defines the minimum set of graph access methods required by the
// mining and recommendation functions.
type Graph interface {
	// Pairs returns an iterator for the full set of un-directed edges.
	Pairs() basketgraph.PairIterator

	// Neighbours returns the mapping of items adjacent to the provided
	// item together with their co-purchase weights.
	Neighbours(item string) map[string]int
}

// Recommendation pairs a recommended item with the co-purchase weight
// that ties it to the queried item.
type Recommendation struct {
	Item   string
	Weight int
}

// FrequentPairs returns every un-directed item pair whose edge weight is
// greater than or equal to minSupport, ordered by descending weight.
// Each edge is emitted exactly once. A threshold that no pair reaches
// yields an empty result; an error is only possible when the underlying
// pair source fails mid-iteration.
func FrequentPairs(g Graph, minSupport int) ([]basketgraph.Pair, error) {
	pairs, err := collectPairs(g.Pairs())
	if err != nil {
		return nil, err
	}

	var frequent []basketgraph.Pair
	for _, pair := range pairs {
		if pair.Weight >= minSupport {
			frequent = append(frequent, pair)
		}
	}

	sortPairsByWeight(frequent)

	return frequent, nil
}

// TopBundles returns the k pairs with the highest co-purchase weight,
// truncated to k after a full descending sort. k <= 0 yields an empty
// result and a k larger than the number of available pairs returns all
// of them.
func TopBundles(g Graph, k int) ([]basketgraph.Pair, error) {
	if k <= 0 {
		return nil, nil
	}

	pairs, err := collectPairs(g.Pairs())
	if err != nil {
		return nil, err
	}

	sortPairsByWeight(pairs)

	if k < len(pairs) {
		pairs = pairs[:k]
	}

	return pairs, nil
}

// StrongestAssociations returns the topN strongest item associations in
// the graph for global-view reporting. It ranks exactly like TopBundles
// but falls back to DefaultTopAssociations when topN is not positive.
func StrongestAssociations(g Graph, topN int) ([]basketgraph.Pair, error) {
	if topN <= 0 {
		topN = DefaultTopAssociations
	}

	return TopBundles(g, topN)
}

// RecommendItems returns the topN neighbours of the provided item with
// the highest co-purchase weight in descending order. An unknown item or
// a non-positive topN yields an empty result; an item with fewer than
// topN neighbours yields all of them.
func RecommendItems(g Graph, item string, topN int) []Recommendation {
	if topN <= 0 {
		return nil
	}

	neighbours := g.Neighbours(item)

	recommendations := make([]Recommendation, 0, len(neighbours))
	for label, weight := range neighbours {
		recommendations = append(recommendations, Recommendation{
			Item:   label,
			Weight: weight,
		})
	}

	// Descending weight with ties broken by lexicographic item order so
	// that recommendation lists are deterministic.
	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Weight != recommendations[j].Weight {
			return recommendations[i].Weight > recommendations[j].Weight
		}

		return recommendations[i].Item < recommendations[j].Item
	})

	if topN < len(recommendations) {
		recommendations = recommendations[:topN]
	}

	return recommendations
}

// sortPairsByWeight sorts pairs by descending weight. Ties are broken by
// lexicographic (ItemA, ItemB) order, which keeps rankings deterministic
// and makes TopBundles(k) a prefix of TopBundles(k+1).
func sortPairsByWeight(pairs []basketgraph.Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Weight != pairs[j].Weight {
			return pairs[i].Weight > pairs[j].Weight
		}

		if pairs[i].ItemA != pairs[j].ItemA {
			return pairs[i].ItemA < pairs[j].ItemA
		}

		return pairs[i].ItemB < pairs[j].ItemB
	})
}

// collectPairs drains the iterator into a slice and reports any
// iteration error.
func collectPairs(it basketgraph.PairIterator) ([]basketgraph.Pair, error) {
	var pairs []basketgraph.Pair
	for it.Next() {
		pairs = append(pairs, it.Pair())
	}

	// Check for iteration errors.
	if err := it.Error(); err != nil {
		_ = it.Close()

		return nil, err
	}

	return pairs, it.Close()
}
