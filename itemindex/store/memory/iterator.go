package memory

import (
	"github.com/blevesearch/bleve"

	"github.com/mycok/uBasket/itemindex/index"
)

// Static and compile-time check to ensure docIterator implements Iterator.
var _ index.Iterator = (*docIterator)(nil)

type docIterator struct {
	idx *InMemoryIndex

	searchReq *bleve.SearchRequest
	searchRes *bleve.SearchResult

	cumIdx uint64
	resIdx int

	latchedDoc *index.Document
	lastErr    error
}

// Next loads the next document matching the search query.
// It returns false if no more documents are available.
func (it *docIterator) Next() bool {
	if it.lastErr != nil || it.searchRes == nil || it.cumIdx >= it.searchRes.Total {
		return false
	}

	// Check if the next result batch should be fetched.
	if it.resIdx >= it.searchRes.Hits.Len() {
		it.searchReq.From += it.searchReq.Size

		if it.searchRes, it.lastErr = it.idx.idx.Search(it.searchReq); it.lastErr != nil {
			return false
		}

		it.resIdx = 0
	}

	nextLabel := it.searchRes.Hits[it.resIdx].ID

	if it.latchedDoc, it.lastErr = it.idx.FindByLabel(nextLabel); it.lastErr != nil {
		return false
	}

	it.cumIdx++
	it.resIdx++

	return true
}

// Error returns the last error encountered by the iterator.
func (it *docIterator) Error() error {
	return it.lastErr
}

// Close releases any resources allocated for / by the iterator.
func (it *docIterator) Close() error {
	it.idx = nil
	it.searchReq = nil

	if it.searchRes != nil {
		it.cumIdx = it.searchRes.Total
	}

	return nil
}

// Document returns the current document from the result set.
func (it *docIterator) Document() *index.Document {
	return it.latchedDoc
}

// TotalCount returns the approximate number of search results.
func (it *docIterator) TotalCount() uint64 {
	if it.searchRes == nil {
		return 0
	}

	return it.searchRes.Total
}
