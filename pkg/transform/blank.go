// Package transform provides the column-level table transformations of the
// pipeline: blank subtraction, column pruning and normalization.
package transform

import (
	"fmt"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// AvgBlankColumn records the blank mean subtracted from each row.
const AvgBlankColumn = "avg_blank"

// DefaultBlankMultiplier scales the blank mean before subtraction.
const DefaultBlankMultiplier = 3

// SubtractBlank subtracts multiplier times the mean blank area from every
// Area[...] column, flooring results at zero. Rows left with no positive
// non-blank area are dropped; surviving rows gain avg_blank and lose the
// blank group's area columns.
func SubtractBlank(t *core.Table, blank string, multiplier float64) (*core.Table, error) {
	if blank == "" || t.Len() == 0 {
		return t, nil
	}

	areaCols := t.ColumnsWithPrefix(core.AreaPrefix)
	blankCols := t.ColumnsWithPrefix(core.GroupAreaPrefixFor(blank))
	if len(blankCols) == 0 {
		return nil, fmt.Errorf("blank group %q: %w", blank, &core.ColumnError{Column: core.GroupAreaPrefixFor(blank) + "*]", Err: core.ErrMissingColumn})
	}
	isBlank := make(map[string]bool, len(blankCols))
	for _, col := range blankCols {
		isBlank[col] = true
	}

	out := t.Clone()
	out.AddColumn(AvgBlankColumn, "")

	kept, err := out.Filter(func(row *core.Row) (bool, error) {
		blankVals, err := row.Floats(core.GroupAreaPrefixFor(blank))
		if err != nil {
			return false, err
		}
		avgBlank := core.RoundFloat(core.Mean(blankVals), core.RoundTo)

		include := false
		for _, col := range areaCols {
			v, err := row.Float(col)
			if err != nil {
				return false, err
			}
			sub := core.RoundFloat(v-avgBlank*multiplier, core.RoundTo)
			if sub <= 0 {
				sub = 0
			}
			if err := row.SetFloat(col, sub); err != nil {
				return false, err
			}
			if sub > 0 && !isBlank[col] {
				include = true
			}
		}
		if include {
			return true, row.SetFloat(AvgBlankColumn, avgBlank)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return kept.DropColumns(blankCols), nil
}
