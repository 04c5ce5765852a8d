package domain

import (
	"context"
	"errors"
	"io"
)

// RowError records why one CSV row was not imported.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult reports a bulk import. Skipped rows each carry a RowError;
// a file-level parse failure aborts the import instead.
type ImportResult struct {
	Processed int        `json:"processed"`
	Added     int        `json:"added"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors,omitempty"`
}

type Service interface {
	Import(ctx context.Context, r io.Reader) (*ImportResult, error)
	Export(ctx context.Context, w io.Writer) error
}

var (
	ErrMalformedCSV      = errors.New("malformed_csv")
	ErrMissingNameColumn = errors.New("missing_name_column")
	ErrTooManyRows       = errors.New("too_many_rows")
)
