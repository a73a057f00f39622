/*
	index package defines the contract for item label indexes: types
	that catalogue the items of a dataset build and answer free-text
	search queries for the dashboard's item lookup.
*/

package index

// Indexer should be implemented by objects that can index and search
// item documents produced by a dataset build.
type Indexer interface {
	// Index adds a new document or updates an existing index entry
	// in case of an existing document.
	Index(doc *Document) error

	// FindByLabel looks up a document by its item label.
	FindByLabel(label string) (*Document, error)

	// Search performs a look up based on query and returns a result
	// iterator if successful or an error otherwise.
	Search(q Query) (Iterator, error)

	// Close releases any resources allocated to the index. Each dataset
	// build populates a fresh index and closes the one it replaced.
	Close() error
}

// Iterator should be implemented by objects that can paginate search
// results.
type Iterator interface {
	// Next loads the next item, returns false when no more items
	// are available or when an error occurs.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources allocated to the iterator.
	Close() error

	// Document returns the current document from the result set.
	Document() *Document

	// TotalCount returns the approximated total number of search results.
	TotalCount() uint64
}

// QueryType represents an integer value for a specific query.
type QueryType uint8

const (
	// QueryTypeMatch queries for results that match parts
	// of the query expression.
	QueryTypeMatch QueryType = iota

	// QueryTypePrefix queries for results whose label terms start with
	// the query expression.
	QueryTypePrefix
)

// Query defines properties for a search query.
type Query struct {
	// Defines how the indexer interprets the search expression.
	Type QueryType
	// Value to search for.
	Expression string
	// Determines the cursor value for the indexer / pagination.
	Offset uint64
}
