package transform

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// Mode selects how Area[...] columns are rescaled.
type Mode string

const (
	ModeNone      Mode = "none"
	ModeValues    Mode = "values"
	ModeIntensity Mode = "intensity"
)

// ParseMode validates a normalization mode name. Empty means none.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeNone:
		return ModeNone, nil
	case ModeValues, ModeIntensity:
		return m, nil
	default:
		return "", fmt.Errorf("unknown normalization mode %q", s)
	}
}

// Debug columns written when NormalizeOptions.Debug is set.
const (
	PreNormPrefix     = "PreNorm["
	NormDivisorPrefix = "NormDivisor["
)

// NormalizeOptions configures Normalize.
type NormalizeOptions struct {
	Mode Mode
	// Divisors maps a group label to its divisor: a single value for the
	// whole group or a comma-separated list applied by replicate position.
	// Only used in ModeValues.
	Divisors map[string]string
	// Debug keeps the pre-division value and divisor of every area column.
	Debug bool
}

// Normalize divides every Area[...] column by its divisor, rounded to 8
// decimals, then recomputes GroupAVG/GroupRSD. Unset or non-positive divisors
// leave the column unchanged.
func Normalize(t *core.Table, opts NormalizeOptions) (*core.Table, error) {
	if t.Len() == 0 || opts.Mode == ModeNone || opts.Mode == "" {
		return t, nil
	}

	areaCols := t.ColumnsWithPrefix(core.AreaPrefix)
	divisors, err := columnDivisors(t, areaCols, opts)
	if err != nil {
		return nil, err
	}

	out := t.Clone()
	if opts.Debug {
		for _, col := range areaCols {
			sample, _ := core.SampleOf(col)
			out.AddColumn(PreNormPrefix+sample+"]", "")
			out.AddColumn(NormDivisorPrefix+sample+"]", "")
		}
	}

	for _, row := range out.Rows() {
		for _, col := range areaCols {
			d, ok := divisors[col]
			if !ok || d <= 0 {
				continue
			}
			v, err := row.Float(col)
			if err != nil {
				return nil, err
			}
			if opts.Debug {
				sample, _ := core.SampleOf(col)
				if err := row.Set(PreNormPrefix+sample+"]", row.Value(col)); err != nil {
					return nil, err
				}
				if err := row.SetFloat(NormDivisorPrefix+sample+"]", d); err != nil {
					return nil, err
				}
			}
			if err := row.SetFloat(col, core.RoundFloat(v/d, core.PostNormalRound)); err != nil {
				return nil, err
			}
		}
	}

	return Recompute(out)
}

// columnDivisors resolves the divisor of every area column for the mode.
func columnDivisors(t *core.Table, areaCols []string, opts NormalizeOptions) (map[string]float64, error) {
	switch opts.Mode {
	case ModeIntensity:
		intensities, err := CalcIntensities(t, areaCols)
		if err != nil {
			return nil, err
		}
		divisors := make(map[string]float64, len(areaCols))
		for _, col := range areaCols {
			sample, err := core.SampleOf(col)
			if err != nil {
				return nil, err
			}
			divisors[col] = intensities[sample]
		}
		return divisors, nil

	case ModeValues:
		groups, err := core.DiscoverGroups(areaCols)
		if err != nil {
			return nil, err
		}
		divisors := make(map[string]float64, len(areaCols))
		for _, col := range areaCols {
			group, index, err := core.GroupAndIndex(col)
			if err != nil {
				return nil, err
			}
			list, err := parseDivisors(opts.Divisors[group])
			if err != nil {
				return nil, fmt.Errorf("divisor for group %q: %w", group, err)
			}
			switch pos := groups.Position(group, index); {
			case len(list) == 1:
				divisors[col] = list[0]
			case pos >= 0 && pos < len(list):
				divisors[col] = list[pos]
			}
		}
		return divisors, nil

	default:
		return nil, fmt.Errorf("unknown normalization mode %q", opts.Mode)
	}
}

// parseDivisors parses "2" or "2, 3, 4". Blank input means unset.
func parseDivisors(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := core.ParseFloat(p)
		if err != nil {
			return nil, &core.ColumnError{Column: "divisor", Value: p, Err: core.ErrNumericParse}
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// CalcIntensities returns the mean area of every sample (the bracket content
// of a column, e.g. "s1-2") across all rows, rounded to 8 decimals.
func CalcIntensities(t *core.Table, areaCols []string) (map[string]float64, error) {
	samples := make(map[string][]float64)
	for _, row := range t.Rows() {
		for _, col := range areaCols {
			sample, err := core.SampleOf(col)
			if err != nil {
				return nil, err
			}
			v, err := row.Float(col)
			if err != nil {
				return nil, err
			}
			samples[sample] = append(samples[sample], v)
		}
	}

	intensities := make(map[string]float64, len(samples))
	for sample, vals := range samples {
		intensities[sample] = core.RoundFloat(core.Mean(vals), core.PostNormalRound)
	}
	return intensities, nil
}

// Recompute rebuilds the group registry from the current columns and sets
// GroupAVG[group] and GroupRSD[group] (population std) on every row.
func Recompute(t *core.Table) (*core.Table, error) {
	if t.Len() == 0 {
		return t, nil
	}
	groups, err := core.DiscoverGroups(t.Columns())
	if err != nil {
		return nil, err
	}

	out := t.Clone()
	for _, g := range groups.Labels() {
		out.AddColumn(core.GroupAVGPrefix+g+"]", "")
		out.AddColumn(core.GroupRSDPrefix+g+"]", "")
	}

	for _, row := range out.Rows() {
		for _, g := range groups.Labels() {
			vals := make([]float64, 0, len(groups.Replicates(g)))
			for _, idx := range groups.Replicates(g) {
				v, err := row.Float(core.AreaColumn(g, idx))
				if err != nil {
					return nil, err
				}
				vals = append(vals, v)
			}
			if err := row.SetFloat(core.GroupAVGPrefix+g+"]", core.RoundFloat(core.Mean(vals), core.PostNormalRound)); err != nil {
				return nil, err
			}
			if err := row.SetFloat(core.GroupRSDPrefix+g+"]", core.RoundFloat(core.PopStd(vals), core.PostNormalRound)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
