package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/search/query"

	"github.com/mycok/uBasket/itemindex/index"
)

// Size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Static and compile-time check to ensure InMemoryIndex implements Indexer.
var _ index.Indexer = (*InMemoryIndex)(nil)

type bleveDoc struct {
	Label       string
	TotalWeight float64
}

// InMemoryIndex is an Indexer implementation that uses a bleve instance
// to catalogue and search item labels but keeps its index in memory.
// Every dataset build populates a fresh instance from scratch.
type InMemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]*index.Document
	idx  bleve.Index
}

// NewInMemoryIndex instantiates and returns an item indexer that
// uses an in-memory bleve instance to index documents.
func NewInMemoryIndex() (*InMemoryIndex, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	return &InMemoryIndex{
		idx:  idx,
		docs: make(map[string]*index.Document),
	}, nil
}

// Close releases / frees any previously allocated resources.
func (s *InMemoryIndex) Close() error {
	return s.idx.Close()
}

// Index adds a new document or updates an existing index entry
// in case of an existing document.
func (s *InMemoryIndex) Index(doc *index.Document) error {
	if doc.Label == "" {
		return fmt.Errorf("index: %w", index.ErrMissingLabel)
	}

	doc.IndexedAt = time.Now()
	dCopy := copyDoc(doc)

	// Acquire a general lock to avoid data races while mutating index data.
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idx.Index(dCopy.Label, makeBleveDoc(dCopy)); err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	s.docs[dCopy.Label] = dCopy

	return nil
}

// FindByLabel looks up a document by the label it was keyed under.
func (s *InMemoryIndex) FindByLabel(label string) (*index.Document, error) {
	// Read lock allows other processes or goroutines to perform reads by
	// concurrently acquiring other read locks.
	s.mu.RLock()
	defer s.mu.RUnlock()

	if doc, exists := s.docs[label]; exists {
		return copyDoc(doc), nil
	}

	return nil, fmt.Errorf("find by label: %w", index.ErrUnknownItem)
}

// Search performs a look up based on query and returns a result
// iterator if successful or an error otherwise.
func (s *InMemoryIndex) Search(q index.Query) (index.Iterator, error) {
	var bleveQuery query.Query

	switch q.Type {
	case index.QueryTypePrefix:
		bleveQuery = bleve.NewPrefixQuery(q.Expression)
	default:
		bleveQuery = bleve.NewMatchQuery(q.Expression)
	}

	searchReq := bleve.NewSearchRequest(bleveQuery)
	// Popular items first; the text relevance score only breaks ties.
	searchReq.SortBy([]string{"-TotalWeight", "-_score"})
	searchReq.Size = batchSize
	searchReq.From = int(q.Offset)

	sr, err := s.idx.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return &docIterator{
		idx:       s,
		searchReq: searchReq,
		searchRes: sr,
		cumIdx:    q.Offset,
	}, nil
}

func copyDoc(doc *index.Document) *index.Document {
	dCopy := new(index.Document)
	*dCopy = *doc

	return dCopy
}

func makeBleveDoc(doc *index.Document) bleveDoc {
	return bleveDoc{
		Label:       doc.Label,
		TotalWeight: float64(doc.TotalWeight),
	}
}
