// Package filter provides row quality filtering for lipid tables
package filter

import (
	"fmt"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// Default thresholds
const (
	DefaultRetTimeMin     = 3
	DefaultGroupPQMin     = 0.8
	DefaultGroupSNMin     = 100
	DefaultGroupAreaMin   = 0
	DefaultGroupHeightMin = 0
)

// Config holds filtering configuration. A row passes only if every value
// strictly exceeds its threshold.
type Config struct {
	RetTimeMin     float64 // ret_time must exceed this
	GroupPQMin     float64 // max GroupPQ must exceed this
	GroupSNMin     float64 // max GroupS/N must exceed this
	GroupAreaMin   float64 // max GroupArea must exceed this (0 = skip)
	GroupHeightMin float64 // max GroupHeight must exceed this (0 = skip)
}

// DefaultConfig returns the thresholds used when none are supplied.
func DefaultConfig() Config {
	return Config{
		RetTimeMin:     DefaultRetTimeMin,
		GroupPQMin:     DefaultGroupPQMin,
		GroupSNMin:     DefaultGroupSNMin,
		GroupAreaMin:   DefaultGroupAreaMin,
		GroupHeightMin: DefaultGroupHeightMin,
	}
}

// Apply returns a table holding only the rows that pass all thresholds
func (c *Config) Apply(t *core.Table) (*core.Table, error) {
	if t.Len() == 0 {
		return t, nil
	}
	return t.Filter(c.Keep)
}

// Keep reports whether a row passes every threshold.
func (c *Config) Keep(row *core.Row) (bool, error) {
	retTime, err := row.Float(core.ColRetTime)
	if err != nil {
		return false, err
	}
	if retTime <= c.RetTimeMin {
		return false, nil
	}

	if ok, err := exceeds(row, core.GroupPQPrefix, c.GroupPQMin); err != nil || !ok {
		return false, err
	}
	if ok, err := exceeds(row, core.GroupSNPrefix, c.GroupSNMin); err != nil || !ok {
		return false, err
	}

	// Areas and heights are never negative, so a zero threshold cannot reject.
	if c.GroupAreaMin > 0 {
		if ok, err := exceeds(row, core.GroupAreaPrefix, c.GroupAreaMin); err != nil || !ok {
			return false, err
		}
	}
	if c.GroupHeightMin > 0 {
		if ok, err := exceeds(row, core.GroupHeightPrefix, c.GroupHeightMin); err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// exceeds reports whether the max of the prefix columns is above threshold.
func exceeds(row *core.Row, prefix string, threshold float64) (bool, error) {
	vals, err := row.Floats(prefix)
	if err != nil {
		return false, err
	}
	top, ok := core.Max(vals)
	if !ok {
		return false, &core.ColumnError{Row: row.Name(), Column: prefix + "...]", Err: core.ErrMissingColumn}
	}
	return top > threshold, nil
}

// RemoveRejects keeps only rows whose Rej. value is "0". It must run before
// ion grouping so rejected detections cannot win a retention-time bucket.
func RemoveRejects(t *core.Table) (*core.Table, error) {
	if t.Len() == 0 {
		return t, nil
	}
	if !t.Schema().Has(core.ColReject) {
		return nil, fmt.Errorf("remove rejects: %w", &core.ColumnError{Column: core.ColReject, Err: core.ErrMissingColumn})
	}
	return t.Filter(func(row *core.Row) (bool, error) {
		return row.Value(core.ColReject) == "0", nil
	})
}
