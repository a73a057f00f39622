package index

import "time"

// Document describes one indexed item label together with the graph
// signals used to rank its search results.
type Document struct {
	// Normalized product label. it doubles as the index key.
	Label string

	// Number of distinct co-purchase partners of the item.
	Degree int

	// Summed weight of all edges incident to the item. Acts as the
	// popularity signal when ranking search results.
	TotalWeight int

	// Last time the document was indexed.
	IndexedAt time.Time
}
