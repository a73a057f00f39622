package index

import "errors"

var (
	// ErrUnknownItem is returned by the indexer when it attempts to look up
	// an item label that has not been indexed.
	ErrUnknownItem = errors.New("unknown item")

	// ErrMissingLabel is returned when an indexer attempts to index a document
	// with an empty label.
	ErrMissingLabel = errors.New("document has missing / empty label")
)
