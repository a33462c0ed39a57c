// Package core provides the row table model shared by every stage of the lipid
// analysis pipeline, along with column namespace rules, numeric helpers and the
// lipid class lookup.
package core

import (
	"fmt"
	"sort"
	"strings"
)

// Identity columns present on every row after ingestion.
const (
	ColName    = "name"
	ColRetTime = "ret_time"
)

// Schema is the ordered column set shared by all rows of a table.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema creates a schema from an ordered column list. Duplicate names keep
// their first position.
func NewSchema(columns []string) *Schema {
	s := &Schema{index: make(map[string]int, len(columns))}
	for _, col := range columns {
		if _, ok := s.index[col]; ok {
			continue
		}
		s.index[col] = len(s.columns)
		s.columns = append(s.columns, col)
	}
	return s
}

// Columns returns a copy of the ordered column names.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Has reports whether the column exists.
func (s *Schema) Has(col string) bool {
	_, ok := s.index[col]
	return ok
}

// ColumnsWithPrefix returns the ordered columns whose name starts with prefix.
func (s *Schema) ColumnsWithPrefix(prefix string) []string {
	var cols []string
	for _, col := range s.columns {
		if strings.HasPrefix(col, prefix) {
			cols = append(cols, col)
		}
	}
	return cols
}

// Row is a single lipid ion record. Values are kept as text and coerced to
// float64 on demand.
type Row struct {
	name   string
	schema *Schema
	values []string
}

// NewRow binds values to a schema. Missing trailing values are treated as
// empty strings; extra values are dropped.
func NewRow(schema *Schema, name string, values []string) *Row {
	vals := make([]string, schema.Len())
	copy(vals, values)
	return &Row{name: name, schema: schema, values: vals}
}

// Name returns the unique row key.
func (r *Row) Name() string {
	return r.name
}

// Columns returns the row's ordered column names.
func (r *Row) Columns() []string {
	return r.schema.Columns()
}

// Values returns a copy of the row values in column order.
func (r *Row) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Get returns the raw value of a column.
func (r *Row) Get(col string) (string, bool) {
	i, ok := r.schema.index[col]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Value returns the raw value of a column, or "" if the column is absent.
func (r *Row) Value(col string) string {
	v, _ := r.Get(col)
	return v
}

// Set replaces the value of an existing column.
func (r *Row) Set(col, value string) error {
	i, ok := r.schema.index[col]
	if !ok {
		return &ColumnError{Column: col, Err: ErrMissingColumn}
	}
	r.values[i] = value
	return nil
}

// SetFloat stores v using FormatFloat.
func (r *Row) SetFloat(col string, v float64) error {
	return r.Set(col, FormatFloat(v))
}

// Float parses a single column as float64.
func (r *Row) Float(col string) (float64, error) {
	v, ok := r.Get(col)
	if !ok {
		return 0, &ColumnError{Row: r.name, Column: col, Err: ErrMissingColumn}
	}
	f, err := ParseFloat(v)
	if err != nil {
		return 0, &ColumnError{Row: r.name, Column: col, Value: v, Err: ErrNumericParse}
	}
	return f, nil
}

// ColumnsWithPrefix returns the row's columns whose name starts with prefix.
func (r *Row) ColumnsWithPrefix(prefix string) []string {
	return r.schema.ColumnsWithPrefix(prefix)
}

// Floats parses every column starting with prefix, in column order.
func (r *Row) Floats(prefix string) ([]float64, error) {
	cols := r.schema.ColumnsWithPrefix(prefix)
	vals := make([]float64, 0, len(cols))
	for _, col := range cols {
		f, err := r.Float(col)
		if err != nil {
			return nil, err
		}
		vals = append(vals, f)
	}
	return vals, nil
}

// MeanArea returns the mean of all replicate Area[...] values. A row without
// area columns yields NaN.
func (r *Row) MeanArea() (float64, error) {
	areas, err := r.Floats(AreaPrefix)
	if err != nil {
		return 0, err
	}
	return Mean(areas), nil
}

// Table is an ordered, name-keyed collection of rows sharing one schema.
type Table struct {
	schema *Schema
	rows   []*Row
	index  map[string]int
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []string) *Table {
	return &Table{
		schema: NewSchema(columns),
		index:  make(map[string]int),
	}
}

// Schema returns the table schema.
func (t *Table) Schema() *Schema {
	return t.schema
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return t.schema.Columns()
}

// ColumnsWithPrefix returns the table's columns whose name starts with prefix.
func (t *Table) ColumnsWithPrefix(prefix string) []string {
	return t.schema.ColumnsWithPrefix(prefix)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the rows in insertion order.
func (t *Table) Rows() []*Row {
	return t.rows
}

// Row looks up a row by name.
func (t *Table) Row(name string) (*Row, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.rows[i], true
}

// Names returns the row keys in insertion order.
func (t *Table) Names() []string {
	names := make([]string, len(t.rows))
	for i, r := range t.rows {
		names[i] = r.name
	}
	return names
}

// Append adds a new row. Appending a name that already exists is an error.
func (t *Table) Append(name string, values []string) (*Row, error) {
	if _, ok := t.index[name]; ok {
		return nil, fmt.Errorf("duplicate row %q", name)
	}
	r := NewRow(t.schema, name, values)
	t.index[name] = len(t.rows)
	t.rows = append(t.rows, r)
	return r, nil
}

// Replace swaps the values of an existing row, keeping its position.
func (t *Table) Replace(name string, values []string) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("unknown row %q", name)
	}
	t.rows[i] = NewRow(t.schema, name, values)
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		schema: t.schema,
		rows:   make([]*Row, len(t.rows)),
		index:  make(map[string]int, len(t.rows)),
	}
	for i, r := range t.rows {
		out.rows[i] = NewRow(t.schema, r.name, r.values)
		out.index[r.name] = i
	}
	return out
}

// Filter returns a new table holding copies of the rows for which keep
// returns true. The receiver is left untouched, also when keep fails.
func (t *Table) Filter(keep func(*Row) (bool, error)) (*Table, error) {
	out := &Table{schema: t.schema, index: make(map[string]int)}
	for _, r := range t.rows {
		ok, err := keep(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out.index[r.name] = len(out.rows)
			out.rows = append(out.rows, NewRow(t.schema, r.name, r.values))
		}
	}
	return out, nil
}

// Project returns a new table restricted to columns, in the given order.
// Columns unknown to the table are ignored.
func (t *Table) Project(columns []string) *Table {
	var keep []string
	var src []int
	for _, col := range columns {
		if i, ok := t.schema.index[col]; ok {
			keep = append(keep, col)
			src = append(src, i)
		}
	}
	out := NewTable(keep)
	for _, r := range t.rows {
		vals := make([]string, len(src))
		for j, i := range src {
			vals[j] = r.values[i]
		}
		out.index[r.name] = len(out.rows)
		out.rows = append(out.rows, &Row{name: r.name, schema: out.schema, values: vals})
	}
	return out
}

// DropColumns returns a new table without the named columns.
func (t *Table) DropColumns(cols []string) *Table {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	var keep []string
	for _, c := range t.schema.columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	return t.Project(keep)
}

// AddColumn appends a column, filled with fill on every row. Adding an
// existing column is a no-op.
func (t *Table) AddColumn(col, fill string) {
	if t.schema.Has(col) {
		return
	}
	t.schema = NewSchema(append(t.schema.Columns(), col))
	for _, r := range t.rows {
		r.schema = t.schema
		r.values = append(r.values, fill)
	}
}

// SortedRows returns the rows ordered case-insensitively by name.
func (t *Table) SortedRows() []*Row {
	rows := make([]*Row, len(t.rows))
	copy(rows, t.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].name) < strings.ToLower(rows[j].name)
	})
	return rows
}
