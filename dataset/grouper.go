package dataset

import (
	"fmt"
	"strings"
)

// GroupBaskets consumes every record exposed by the provided iterator
// and groups the purchased items into baskets keyed by (customer, date).
//
// Normalization happens here: whitespace is trimmed from all three
// record fields and item labels are lower-cased so that label identity
// is insensitive to casing and padding. Records with a blank item label
// are dropped and tallied in the returned stats; a dirty dataset must
// not abort a load. Duplicate items within a basket collapse to a
// single occurrence. No ordering is guaranteed over the returned map's
// keys.
func GroupBaskets(it RecordIterator) (map[BasketKey]Basket, Stats, error) {
	baskets := make(map[BasketKey]Basket)

	var stats Stats

	for it.Next() {
		record := it.Record()
		stats.RecordsRead++

		item := strings.ToLower(strings.TrimSpace(record.Item))
		if item == "" {
			stats.RecordsSkipped++

			continue
		}

		key := BasketKey{
			CustomerID: strings.TrimSpace(record.CustomerID),
			Date:       strings.TrimSpace(record.Date),
		}

		if baskets[key].Contains(item) {
			continue
		}

		baskets[key] = append(baskets[key], item)
	}

	// Check for iteration errors. Any failure aborts the whole build:
	// callers never see a partially grouped dataset.
	if err := it.Error(); err != nil {
		_ = it.Close()

		return nil, Stats{}, fmt.Errorf("group baskets: %w", err)
	}

	if err := it.Close(); err != nil {
		return nil, Stats{}, fmt.Errorf("group baskets: %w", err)
	}

	stats.Baskets = len(baskets)

	return baskets, stats, nil
}
