/*
Package session tracks the dataset snapshot that query-serving components
operate on.

Each successful dataset build produces a new immutable Snapshot which replaces
the previous one in a single swap. Components that hold a snapshot keep
answering queries against the generation they grabbed, even while a newer
build is being swapped in.
*/
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mycok/uBasket/basketgraph"
	"github.com/mycok/uBasket/dataset"
	"github.com/mycok/uBasket/itemindex/index"
)

// ErrNoSnapshot is returned by snapshot lookups performed before the first
// successful dataset build completes.
var ErrNoSnapshot = errors.New("no dataset snapshot available")

// Snapshot bundles the artifacts of a single dataset build. Snapshots are
// immutable: a reload produces a brand new snapshot instead of mutating an
// existing one.
type Snapshot struct {
	// BuildID uniquely identifies the build that produced this snapshot.
	BuildID uuid.UUID

	// Source describes where the dataset was loaded from.
	Source string

	// Graph is the co-purchase graph assembled from the dataset.
	Graph *basketgraph.Graph

	// Index catalogues the graph's items for label searches.
	Index index.Indexer

	// Stats summarizes the ingestion run that produced the graph.
	Stats dataset.Stats

	// BuiltAt captures the time the build completed.
	BuiltAt time.Time
}

// Store retains the current snapshot and hands it out to readers.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
}

// NewStore instantiates and returns an empty snapshot store.
func NewStore() *Store {
	return new(Store)
}

// Current returns the latest swapped-in snapshot or ErrNoSnapshot if no
// build has completed yet.
func (s *Store) Current() (*Snapshot, error) {
	// Read lock allows other processes or goroutines to perform reads by
	// concurrently acquiring other read locks.
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoSnapshot
	}

	return s.current, nil
}

// Swap installs next as the current snapshot and returns the snapshot it
// replaced so the caller can release its resources. The returned snapshot
// is nil when no build had completed before.
func (s *Store) Swap(next *Snapshot) *Snapshot {
	// Acquire a general lock to avoid data races while mutating the
	// current snapshot.
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current
	s.current = next

	return prev
}
