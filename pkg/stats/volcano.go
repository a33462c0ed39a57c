package stats

import (
	"math"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// Plot-safe replacements for non-finite values.
const (
	ClampPosInf = 1e10
	ClampNegInf = 1e-11
)

// Clamp replaces +Inf with ClampPosInf and -Inf or NaN with ClampNegInf.
func Clamp(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return ClampPosInf
	case math.IsInf(v, -1), math.IsNaN(v):
		return ClampNegInf
	}
	return v
}

// Point is one lipid on a volcano plot.
type Point struct {
	Name      string  `json:"name"`
	Log2Ratio float64 `json:"log2_ratio"`
	LogP      float64 `json:"log_p"`
}

// Series holds the points of one lipid class.
type Series struct {
	Class  string  `json:"class"`
	Points []Point `json:"points"`
}

// Volcano is the plot data of one group pair.
type Volcano struct {
	A      string    `json:"group_a"`
	B      string    `json:"group_b"`
	Series []*Series `json:"series"`
}

// VolcanoPoints collects (name, log2 ratio, -log10 p) for every row whose
// Class key is known, grouped by class name in first-seen order. CalcRatio
// must have run for pair.
func VolcanoPoints(t *core.Table, pair Pair, lookup *core.ClassLookup) (*Volcano, error) {
	v := &Volcano{A: pair.A, B: pair.B}
	if t.Len() == 0 || lookup == nil {
		return v, nil
	}

	byClass := make(map[string]*Series)
	for _, row := range t.Rows() {
		entry, ok := lookup.Get(row.Value(core.ColClass))
		if !ok {
			continue
		}
		log2, err := row.Float(pair.LogRatioColumn())
		if err != nil {
			return nil, err
		}
		logP, err := row.Float(pair.LogPColumn())
		if err != nil {
			return nil, err
		}

		s, ok := byClass[entry.Class]
		if !ok {
			s = &Series{Class: entry.Class}
			byClass[entry.Class] = s
			v.Series = append(v.Series, s)
		}
		s.Points = append(s.Points, Point{Name: row.Name(), Log2Ratio: Clamp(log2), LogP: Clamp(logP)})
	}
	return v, nil
}
