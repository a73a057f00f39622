/*
	basketgraph package implements the in-memory co-purchase graph at the
	core of the uBasket application. Nodes represent product labels and
	un-directed weighted edges count the baskets in which two products
	were bought together.
*/

package basketgraph

import (
	"sort"
	"sync"
)

// Graph implements an in-memory co-purchase graph that can be concurrently
// read by multiple clients once construction has completed.
//
// The adjacency structure maps each item to its neighbouring items and the
// number of baskets both appeared in. Each edge is stored in both directions
// and both directions are always updated together, which keeps the graph
// symmetric at all times.
type Graph struct {
	mu        sync.RWMutex
	adjacency map[string]map[string]int
	numEdges  int
}

// New creates a new empty co-purchase graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string]map[string]int),
	}
}

// AddItem ensures that a node exists for the provided item label. Adding
// an item that is already part of the graph has no effect.
func (g *Graph) AddItem(item string) {
	// Acquire a general lock to avoid data races while mutating graph data.
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ensureItem(item)
}

// AddCoPurchase records one co-occurrence of both items in the same basket
// by incrementing the edge weight between them in both directions. Items
// not already part of the graph are added first. Pairing an item with
// itself is a no-op so that the graph stays free of self-loops.
func (g *Graph) AddCoPurchase(item1, item2 string) {
	if item1 == item2 {
		return
	}

	// Acquire a general lock to avoid data races while mutating graph data.
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ensureItem(item1)
	g.ensureItem(item2)

	if _, exists := g.adjacency[item1][item2]; !exists {
		g.numEdges++
	}

	// Both directions are updated together to preserve the un-directedness
	// invariant: weight(item1, item2) == weight(item2, item1).
	g.adjacency[item1][item2]++
	g.adjacency[item2][item1]++
}

// ensureItem inserts an empty adjacency row for item unless one exists.
// Callers must hold the write lock.
func (g *Graph) ensureItem(item string) {
	if _, exists := g.adjacency[item]; !exists {
		g.adjacency[item] = make(map[string]int)
	}
}

// Neighbours returns the mapping of items adjacent to the provided item
// together with their co-purchase weights. Unknown items yield an empty
// mapping rather than an error.
func (g *Graph) Neighbours(item string) map[string]int {
	// Read lock allows other processes or goroutines to perform reads by
	// concurrently acquiring other read locks.
	g.mu.RLock()
	defer g.mu.RUnlock()

	// Copy the adjacency row to protect graph data from side-effects
	// triggered outside this method.
	neighbours := make(map[string]int, len(g.adjacency[item]))
	for neighbour, weight := range g.adjacency[item] {
		neighbours[neighbour] = weight
	}

	return neighbours
}

// EdgeWeight returns the number of baskets in which both items appeared
// together, or 0 when either item is unknown or no edge exists between
// them.
func (g *Graph) EdgeWeight(item1, item2 string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.adjacency[item1][item2]
}

// HasItem checks whether the provided item is part of the graph.
func (g *Graph) HasItem(item string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.adjacency[item]

	return exists
}

// HasEdge checks whether at least one co-purchase has been recorded
// between both items.
func (g *Graph) HasEdge(item1, item2 string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.adjacency[item1][item2]

	return exists
}

// NumItems returns the number of items in the graph.
func (g *Graph) NumItems() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.adjacency)
}

// NumEdges returns the number of un-directed edges in the graph. Each
// edge is counted exactly once even though it is stored in both
// directions internally.
func (g *Graph) NumEdges() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.numEdges
}

// Items returns all item labels in the graph in lexicographic order so
// that listings and tests remain reproducible.
func (g *Graph) Items() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	items := make([]string, 0, len(g.adjacency))
	for item := range g.adjacency {
		items = append(items, item)
	}

	sort.Strings(items)

	return items
}

// Pairs returns an iterator for the full set of un-directed edges. Each
// edge is visited exactly once as a Pair whose ItemA label sorts before
// its ItemB label, in lexicographic (ItemA, ItemB) order. The iterator
// operates on a point-in-time snapshot of the graph and is not affected
// by subsequent mutations.
func (g *Graph) Pairs() PairIterator {
	g.mu.RLock()
	defer g.mu.RUnlock()

	pairs := make([]Pair, 0, g.numEdges)
	for item, row := range g.adjacency {
		for neighbour, weight := range row {
			// Emit each un-directed edge once: only when the first label
			// sorts before the second.
			if item < neighbour {
				pairs = append(pairs, Pair{
					ItemA:  item,
					ItemB:  neighbour,
					Weight: weight,
				})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].ItemA != pairs[j].ItemA {
			return pairs[i].ItemA < pairs[j].ItemA
		}

		return pairs[i].ItemB < pairs[j].ItemB
	})

	return &pairIterator{pairs: pairs}
}
