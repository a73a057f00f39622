/*
	dataset package implements the ingestion side of uBasket: reading
	raw purchase records from a delimited dataset, grouping them into
	per-customer per-date baskets and building the co-purchase graph
	from those baskets in one sequential pass.
*/

package dataset

// Record represents one raw purchase event as exposed by a record
// source: which customer bought which item on which date. All three
// fields are plain strings; normalization happens at grouping time.
type Record struct {
	CustomerID string
	Date       string
	Item       string
}

// BasketKey identifies one shopping basket: all items bought by a
// single customer on a single date.
type BasketKey struct {
	CustomerID string
	Date       string
}

// Basket is the ordered-insertion set of distinct items bought in one
// basket. Duplicate purchases of the same item collapse to a single
// occurrence and items retain the order in which they were first seen.
type Basket []string

// Contains checks whether the basket already holds the provided item.
func (b Basket) Contains(item string) bool {
	for _, existing := range b {
		if existing == item {
			return true
		}
	}

	return false
}

// RecordIterator is implemented by record sources that feed the
// grouper. The grouper does not care how records are produced, only
// that each one yields a customer identifier, a date and an item label.
type RecordIterator interface {
	// Next loads the next record, returns false when no more records
	// are available or when an error occurs.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources allocated to the iterator.
	Close() error

	// Record returns the currently fetched record.
	Record() Record
}

// Stats captures the aggregate counters for one dataset build. Records
// dropped for data-quality reasons are tallied here instead of being
// reported individually.
type Stats struct {
	RecordsRead    int
	RecordsSkipped int
	Baskets        int
}
