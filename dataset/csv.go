package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const (
	defaultCustomerColumn = "Member_number"
	defaultDateColumn     = "Date"
	defaultItemColumn     = "itemDescription"
)

// Static and compile-time check to ensure CSVSource implements
// the RecordIterator interface.
var _ RecordIterator = (*CSVSource)(nil)

// Schema names the dataset columns that carry the customer identifier,
// the purchase date and the item label. Zero-valued fields fall back to
// the column names of the groceries dataset this application was built
// around.
type Schema struct {
	CustomerColumn string
	DateColumn     string
	ItemColumn     string
}

func (s *Schema) applyDefaults() {
	if s.CustomerColumn == "" {
		s.CustomerColumn = defaultCustomerColumn
	}

	if s.DateColumn == "" {
		s.DateColumn = defaultDateColumn
	}

	if s.ItemColumn == "" {
		s.ItemColumn = defaultItemColumn
	}
}

// CSVSource reads purchase records from delimited text with a named
// header row. Columns are located by header name, so their position and
// any surrounding extra columns are irrelevant.
type CSVSource struct {
	reader      *csv.Reader
	customerIdx int
	dateIdx     int
	itemIdx     int
	minRowLen   int
	current     Record
	lastErr     error
}

// NewCSVSource reads and validates the header row of r and returns a
// record iterator for the remaining rows. It fails with a wrapped
// ErrMissingColumns when one or more schema columns are absent from the
// header. The caller retains ownership of r.
func NewCSVSource(r io.Reader, schema Schema) (*CSVSource, error) {
	schema.applyDefaults()

	reader := csv.NewReader(r)
	// Rows are validated against the schema columns rather than a fixed
	// field count.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv source: read header: %w", err)
	}

	columnIdx := make(map[string]int, len(header))
	for i, column := range header {
		columnIdx[strings.TrimSpace(column)] = i
	}

	var missing []string

	src := &CSVSource{reader: reader}
	for _, required := range []struct {
		column string
		idx    *int
	}{
		{schema.CustomerColumn, &src.customerIdx},
		{schema.DateColumn, &src.dateIdx},
		{schema.ItemColumn, &src.itemIdx},
	} {
		idx, exists := columnIdx[required.column]
		if !exists {
			missing = append(missing, required.column)

			continue
		}

		*required.idx = idx
		if idx >= src.minRowLen {
			src.minRowLen = idx + 1
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf(
			"csv source: %s: %w", strings.Join(missing, ", "), ErrMissingColumns,
		)
	}

	return src, nil
}

// Next loads the next record, returns false when no more rows are
// available or when an error occurs. Rows too short to carry all schema
// columns are skipped.
func (s *CSVSource) Next() bool {
	if s.lastErr != nil {
		return false
	}

	for {
		row, err := s.reader.Read()
		if err == io.EOF {
			return false
		}

		if err != nil {
			s.lastErr = err

			return false
		}

		if len(row) < s.minRowLen {
			continue
		}

		s.current = Record{
			CustomerID: row[s.customerIdx],
			Date:       row[s.dateIdx],
			Item:       row[s.itemIdx],
		}

		return true
	}
}

// Error returns the last error encountered by the source.
func (s *CSVSource) Error() error {
	return s.lastErr
}

// Close releases any resources allocated to the source. The underlying
// reader is owned by the caller and stays open.
func (s *CSVSource) Close() error {
	return nil
}

// Record returns the currently fetched record.
func (s *CSVSource) Record() Record {
	return s.current
}
