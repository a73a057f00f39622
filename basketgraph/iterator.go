package basketgraph

// Static and compile-time check to ensure pairIterator implements
// the PairIterator interface.
var _ PairIterator = (*pairIterator)(nil)

// Pair represents an un-directed edge of the co-purchase graph as a
// transient ranked view. ItemA always sorts lexicographically before
// ItemB so that each edge has exactly one Pair representation.
type Pair struct {
	ItemA  string
	ItemB  string
	Weight int
}

// PairIterator is implemented by types that iterate graph edge pairs.
type PairIterator interface {
	// Next loads the next pair, returns false when no more pairs
	// are available or when an error occurs.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources allocated to the iterator.
	Close() error

	// Pair returns the currently fetched pair.
	Pair() Pair
}

// pairIterator is a PairIterator implementation backed by a point-in-time
// snapshot of the graph's edge set.
type pairIterator struct {
	pairs        []Pair
	currentIndex int
}

// Next loads the next pair, returns false when no more pairs are
// available.
func (i *pairIterator) Next() bool {
	if i.currentIndex >= len(i.pairs) {
		return false
	}

	i.currentIndex++

	return true
}

// Error returns the last error encountered by the iterator.
func (i *pairIterator) Error() error {
	return nil
}

// Close releases any resources allocated to the iterator.
func (i *pairIterator) Close() error {
	return nil
}

// Pair returns the currently fetched pair. Pairs are plain values copied
// out of the snapshot, so the caller may retain them freely.
func (i *pairIterator) Pair() Pair {
	return i.pairs[i.currentIndex-1]
}
