package dataset

import "errors"

var (
	// ErrMissingColumns is returned when the header of a record source
	// does not carry all of the required customer, date and item
	// columns. The error is fatal to the load attempt that raised it.
	ErrMissingColumns = errors.New("required columns missing from dataset header")
)
