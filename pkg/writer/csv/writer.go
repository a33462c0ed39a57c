// Package csv writes result tables as comma-separated text.
package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ChrisMcGann/LipidX/pkg/core"
	"github.com/ChrisMcGann/LipidX/pkg/stats"
)

// WriteTable writes the header followed by every row, sorted
// case-insensitively by name. Columns keep the table order.
func WriteTable(w io.Writer, t *core.Table) error {
	cw := stdcsv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.SortedRows() {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write row %q: %w", row.Name(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAggregate writes a class or subclass statistics table.
func WriteAggregate(w io.Writer, a *stats.Aggregate) error {
	cw := stdcsv.NewWriter(w)
	if err := cw.Write(a.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(a.Records()); err != nil {
		return fmt.Errorf("failed to write %s stats: %w", a.Level, err)
	}
	return nil
}

// WriteTableFile writes t to path.
func WriteTableFile(path string, t *core.Table) error {
	return writeFile(path, func(w io.Writer) error { return WriteTable(w, t) })
}

// WriteAggregateFile writes a to path.
func WriteAggregateFile(path string, a *stats.Aggregate) error {
	return writeFile(path, func(w io.Writer) error { return WriteAggregate(w, a) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
