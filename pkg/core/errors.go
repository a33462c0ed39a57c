package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRow marks an input line that does not parse into a row.
	ErrMalformedRow = errors.New("malformed row")
	// ErrNumericParse marks a value that should be numeric but is not.
	ErrNumericParse = errors.New("non-numeric value")
	// ErrMalformedColumnName marks a column outside the metric[group-index] pattern.
	ErrMalformedColumnName = errors.New("malformed column name")
	// ErrUngroupableRow marks a row name without a lipid charge.
	ErrUngroupableRow = errors.New("ungroupable row")
	// ErrMissingLookupKey marks a class key absent from the lookup. Not fatal.
	ErrMissingLookupKey = errors.New("class key not in lookup")
	// ErrEmptyTable marks an operation that needs at least one row.
	ErrEmptyTable = errors.New("empty table")
	// ErrMissingColumn marks a stage precondition violation: a column the
	// stage reads does not exist.
	ErrMissingColumn = errors.New("missing column")
)

// RowError locates an ingestion failure in its source file.
type RowError struct {
	Source string
	Line   int
	Err    error
	Detail string
}

func (e *RowError) Error() string {
	msg := fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ColumnError reports a failure tied to a single column of a row.
type ColumnError struct {
	Row    string
	Column string
	Value  string
	Err    error
}

func (e *ColumnError) Error() string {
	switch {
	case e.Row != "" && e.Value != "":
		return fmt.Sprintf("row %q column %q: %v %q", e.Row, e.Column, e.Err, e.Value)
	case e.Row != "":
		return fmt.Sprintf("row %q column %q: %v", e.Row, e.Column, e.Err)
	default:
		return fmt.Sprintf("column %q: %v", e.Column, e.Err)
	}
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}
