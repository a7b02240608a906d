package corpus

import "errors"

// Sentinel failures surfaced by the loader and by schema checks.
// Callers match them with errors.Is; the wrapped message carries the
// offending path, column or line number for user-facing output.
var (
	// ErrSourceNotFound means the corpus path does not exist or is unreadable.
	ErrSourceNotFound = errors.New("source not found")

	// ErrMalformedSource means the file shape is inconsistent after the
	// header-skip offset (a data row carries more fields than the header).
	ErrMalformedSource = errors.New("malformed source")

	// ErrUnknownColumn means a query or aggregation referenced a column
	// that is not part of the table schema.
	ErrUnknownColumn = errors.New("unknown column")
)
