package peaktable

import (
	"fmt"
	"os"
	"strings"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// Load reads every non-blank path and merges the files into one table.
//
// Rows are keyed by name. When a name is already present, the row with the
// greater mean Area[...] value survives and keeps the original position.
// After each file the column set is narrowed to the columns shared by all
// files read so far, in the order of the first file.
func Load(paths []string) (*core.Table, error) {
	var merged *core.Table
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		tbl, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		merged, err = Merge(merged, tbl)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if merged == nil {
		return nil, fmt.Errorf("no input files: %w", core.ErrEmptyTable)
	}
	return merged, nil
}

// LoadFile reads a single peak table. The file is closed whether parsing
// succeeds or fails, and a parse error discards the whole file.
func LoadFile(path string) (*core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	reader := NewReader(f, path)
	return ReadTable(reader)
}

// ReadTable drains a reader into a table, resolving duplicate names within
// the input by area dominance.
func ReadTable(reader *Reader) (*core.Table, error) {
	header, err := reader.Header()
	if err != nil {
		return nil, err
	}

	tbl := core.NewTable(header)
	for reader.Next() {
		rec := reader.Record()
		if err := upsert(tbl, core.NewRow(tbl.Schema(), rec.Name, rec.Values)); err != nil {
			return nil, &core.RowError{Source: reader.source, Line: rec.Line, Err: err}
		}
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return tbl, nil
}

// Merge folds src into dst. The result exposes only the columns both tables
// share; neither input is modified.
func Merge(dst, src *core.Table) (*core.Table, error) {
	if dst == nil {
		return src.Clone(), nil
	}

	var shared []string
	for _, col := range dst.Columns() {
		if src.Schema().Has(col) {
			shared = append(shared, col)
		}
	}

	out := dst.Project(shared)
	for _, row := range src.Rows() {
		existing, ok := dst.Row(row.Name())
		if !ok {
			if _, err := out.Append(row.Name(), projectValues(row, shared)); err != nil {
				return nil, err
			}
			continue
		}
		wins, err := dominates(row, existing)
		if err != nil {
			return nil, err
		}
		if wins {
			if err := out.Replace(row.Name(), projectValues(row, shared)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// upsert appends row, or replaces the existing row of the same name when the
// new row has the greater mean area.
func upsert(tbl *core.Table, row *core.Row) error {
	existing, ok := tbl.Row(row.Name())
	if !ok {
		_, err := tbl.Append(row.Name(), row.Values())
		return err
	}
	wins, err := dominates(row, existing)
	if err != nil {
		return err
	}
	if wins {
		return tbl.Replace(row.Name(), row.Values())
	}
	return nil
}

// dominates reports whether candidate has a strictly greater mean area than
// incumbent. Ties keep the incumbent.
func dominates(candidate, incumbent *core.Row) (bool, error) {
	a, err := candidate.MeanArea()
	if err != nil {
		return false, err
	}
	b, err := incumbent.MeanArea()
	if err != nil {
		return false, err
	}
	return a > b, nil
}

func projectValues(row *core.Row, cols []string) []string {
	vals := make([]string, len(cols))
	for i, col := range cols {
		vals[i] = row.Value(col)
	}
	return vals
}
