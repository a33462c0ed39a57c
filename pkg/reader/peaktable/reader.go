// Package peaktable provides streaming readers for peak-table exports and the
// multi-file merge that builds the row table.
package peaktable

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

const maxLineSize = 4 * 1024 * 1024

// Record is one parsed data line, aligned to the reader's header.
type Record struct {
	Name    string
	RetTime float64
	Values  []string
	Line    int
}

// Reader provides streaming access to a tab- or comma-delimited peak table
type Reader struct {
	scanner *bufio.Scanner
	source  string
	lineNum int

	// Delimiter is detected from the header when zero.
	Delimiter rune

	header    []string
	synthetic int
	nameCol   int
	retCol    int
	ionCol    int
	topPos    []int

	current *Record
	err     error
}

// NewReader creates a new peak-table reader. source names the input in errors.
func NewReader(r io.Reader, source string) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{
		scanner: scanner,
		source:  source,
		nameCol: -1,
		retCol:  -1,
		ionCol:  -1,
	}
}

// Header returns the table columns, including the synthetic name and
// ret_time columns. It reads up to the header line on first use.
func (r *Reader) Header() ([]string, error) {
	if r.header != nil {
		return r.header, nil
	}
	if r.err != nil {
		return nil, r.err
	}
	line, ok := r.nextLine()
	if !ok {
		if r.err == nil {
			r.err = &core.RowError{Source: r.source, Line: r.lineNum, Err: core.ErrMalformedRow, Detail: "no header line"}
		}
		return nil, r.err
	}
	if err := r.parseHeader(line); err != nil {
		r.header = nil
		r.err = err
		return nil, err
	}
	return r.header, nil
}

// Next advances to the next data row. Returns false at end of input or on error.
func (r *Reader) Next() bool {
	r.current = nil
	if _, err := r.Header(); err != nil {
		return false
	}

	line, ok := r.nextLine()
	if !ok {
		return false
	}

	rec, err := r.parseRecord(line)
	if err != nil {
		r.err = err
		return false
	}
	r.current = rec
	return true
}

// Record returns the current row
func (r *Reader) Record() *Record {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// nextLine returns the next line that is not a comment or blank line.
func (r *Reader) nextLine() (string, bool) {
	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimRight(r.scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "\t") {
			continue
		}
		return line, true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("%s: %w", r.source, err)
	}
	return "", false
}

func (r *Reader) split(line string) []string {
	return strings.Split(line, string(r.Delimiter))
}

// parseHeader locates the identity and retention-time source columns and
// prepends name/ret_time unless the header already carries them.
func (r *Reader) parseHeader(line string) error {
	if r.Delimiter == 0 {
		r.Delimiter = '\t'
		if !strings.Contains(line, "\t") && strings.Contains(line, ",") {
			r.Delimiter = ','
		}
	}

	raw := r.split(line)
	var prefix []string
	if !containsCol(raw, core.ColName) {
		prefix = append(prefix, core.ColName)
	}
	if !containsCol(raw, core.ColRetTime) {
		prefix = append(prefix, core.ColRetTime)
	}
	r.synthetic = len(prefix)
	r.header = append(prefix, raw...)

	seen := make(map[string]bool, len(r.header))
	for _, col := range r.header {
		if seen[col] {
			return &core.RowError{Source: r.source, Line: r.lineNum, Err: core.ErrMalformedRow, Detail: "duplicate column " + col}
		}
		seen[col] = true
	}

	for i, col := range r.header {
		switch {
		case col == core.ColName:
			r.nameCol = i
		case col == core.ColRetTime:
			r.retCol = i
		case col == core.ColLipidIon:
			r.ionCol = i
		case strings.HasPrefix(col, core.GroupTopPosPrefix):
			r.topPos = append(r.topPos, i)
		}
	}

	if !containsCol(raw, core.ColName) && r.ionCol < 0 {
		return &core.RowError{Source: r.source, Line: r.lineNum, Err: core.ErrMalformedRow, Detail: "header has no LipidIon column"}
	}
	if !containsCol(raw, core.ColRetTime) && len(r.topPos) == 0 {
		return &core.RowError{Source: r.source, Line: r.lineNum, Err: core.ErrMalformedRow, Detail: "header has no GroupTopPos column"}
	}
	return nil
}

// parseRecord aligns a data line to the header and derives ret_time and name.
func (r *Reader) parseRecord(line string) (*Record, error) {
	fields := r.split(line)
	if len(fields) > len(r.header)-r.synthetic {
		return nil, &core.RowError{
			Source: r.source,
			Line:   r.lineNum,
			Err:    core.ErrMalformedRow,
			Detail: fmt.Sprintf("%d fields, header has %d", len(fields), len(r.header)-r.synthetic),
		}
	}

	values := make([]string, len(r.header))
	copy(values[r.synthetic:], fields)

	rec := &Record{Values: values, Line: r.lineNum}

	retTime, err := r.retTime(values)
	if err != nil {
		return nil, err
	}
	rec.RetTime = retTime
	values[r.retCol] = core.FormatFloat(retTime)

	name := values[r.nameCol]
	if r.nameCol < r.synthetic {
		name = values[r.ionCol] + "_" + values[r.retCol]
		values[r.nameCol] = name
	}
	if name == "" {
		return nil, &core.RowError{Source: r.source, Line: r.lineNum, Err: core.ErrMalformedRow, Detail: "empty name"}
	}
	rec.Name = name

	return rec, nil
}

// retTime reads ret_time when the input carries it, otherwise averages the
// GroupTopPos columns rounded to two decimals.
func (r *Reader) retTime(values []string) (float64, error) {
	if r.retCol >= r.synthetic {
		v, err := core.ParseFloat(values[r.retCol])
		if err != nil {
			return 0, r.numericError(core.ColRetTime, values[r.retCol])
		}
		return v, nil
	}

	positions := make([]float64, 0, len(r.topPos))
	for _, i := range r.topPos {
		v, err := core.ParseFloat(values[i])
		if err != nil {
			return 0, r.numericError(r.header[i], values[i])
		}
		positions = append(positions, v)
	}
	return core.RoundFloat(core.Mean(positions), core.RoundTo), nil
}

func (r *Reader) numericError(col, value string) error {
	return &core.RowError{
		Source: r.source,
		Line:   r.lineNum,
		Err:    fmt.Errorf("%w: %w", core.ErrMalformedRow, &core.ColumnError{Column: col, Value: value, Err: core.ErrNumericParse}),
	}
}

func containsCol(cols []string, col string) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}
