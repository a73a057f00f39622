package dataset

import (
	"fmt"
	"os"

	"github.com/mycok/uBasket/basketgraph"
)

// BuildGraph constructs a co-purchase graph from grouped baskets. Every
// item becomes a node, including items from single-item baskets, and
// every distinct un-ordered item pair within a basket contributes
// exactly one co-purchase increment. Basket iteration order does not
// matter: increments commute, so the finished graph is identical for
// any ordering.
func BuildGraph(baskets map[BasketKey]Basket) *basketgraph.Graph {
	g := basketgraph.New()

	for _, basket := range baskets {
		for _, item := range basket {
			g.AddItem(item)
		}

		for i := 0; i < len(basket); i++ {
			for j := i + 1; j < len(basket); j++ {
				g.AddCoPurchase(basket[i], basket[j])
			}
		}
	}

	return g
}

// BuildGraphFromRecords groups the records exposed by the provided
// iterator and builds the co-purchase graph in one sequential pass.
func BuildGraphFromRecords(it RecordIterator) (*basketgraph.Graph, Stats, error) {
	baskets, stats, err := GroupBaskets(it)
	if err != nil {
		return nil, Stats{}, err
	}

	return BuildGraph(baskets), stats, nil
}

// BuildGraphFromFile reads the delimited dataset at path and builds the
// co-purchase graph from its records.
func BuildGraphFromFile(path string, schema Schema) (*basketgraph.Graph, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	src, err := NewCSVSource(f, schema)
	if err != nil {
		return nil, Stats{}, err
	}

	return BuildGraphFromRecords(src)
}
