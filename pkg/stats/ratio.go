package stats

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// Substitutes used when either group area is zero.
const (
	ZeroDividendRatio = 0.1
	ZeroDivisorRatio  = 10.0
)

// Per-pair column prefixes. The bracket holds "A/B".
const (
	RatioPrefix    = "ratio["
	LogRatioPrefix = "log_ratio["
	PValuePrefix   = "p_value["
	LogPPrefix     = "log_p["
)

// Pair is a two-group comparison, A over B.
type Pair struct {
	A, B string
}

// ParsePair parses "a:b".
func ParsePair(s string) (Pair, error) {
	a, b, ok := strings.Cut(s, ":")
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if !ok || a == "" || b == "" {
		return Pair{}, fmt.Errorf("invalid group pair %q, want a:b", s)
	}
	return Pair{A: a, B: b}, nil
}

func (p Pair) String() string {
	return p.A + "/" + p.B
}

func (p Pair) RatioColumn() string    { return RatioPrefix + p.String() + "]" }
func (p Pair) LogRatioColumn() string { return LogRatioPrefix + p.String() + "]" }
func (p Pair) PValueColumn() string   { return PValuePrefix + p.String() + "]" }
func (p Pair) LogPColumn() string     { return LogPPrefix + p.String() + "]" }

// Ratio divides the group areas, substituting fixed values for zero operands.
func Ratio(dividend, divisor float64) float64 {
	switch {
	case dividend == 0:
		return ZeroDividendRatio
	case divisor == 0:
		return ZeroDivisorRatio
	default:
		return dividend / divisor
	}
}

// WelchTTest runs a two-sided two-sample t-test without assuming equal
// variances and returns the p-value. Samples that sum to zero on both sides
// and samples with fewer than two values give 1. Constant samples give 0 when
// their means differ and 1 when they are equal.
func WelchTTest(a, b []float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 1
	}
	if core.Sum(a) == 0 && core.Sum(b) == 0 {
		return 1
	}

	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	na, nb := float64(len(a)), float64(len(b))
	sa, sb := varA/na, varB/nb

	se := math.Sqrt(sa + sb)
	if se == 0 {
		if meanA == meanB {
			return 1
		}
		return 0
	}
	t := (meanA - meanB) / se
	df := (sa + sb) * (sa + sb) / (sa*sa/(na-1) + sb*sb/(nb-1))

	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(-math.Abs(t))
	if math.IsNaN(p) {
		return 1
	}
	return math.Min(p, 1)
}

// NegLog10 returns -log10(p) without a negative zero for p == 1.
func NegLog10(p float64) float64 {
	if p == 1 {
		return 0
	}
	return -math.Log10(p)
}

// CalcRatio adds the ratio, log2 ratio, p-value and -log10 p-value columns of
// pair to every row. The ratio compares GroupArea[A] with GroupArea[B]; the
// test compares the replicate Area[A-*] and Area[B-*] values.
func CalcRatio(t *core.Table, pair Pair) (*core.Table, error) {
	if t.Len() == 0 {
		return t, nil
	}
	colA := core.GroupAreaPrefix + pair.A + "]"
	colB := core.GroupAreaPrefix + pair.B + "]"
	for _, col := range []string{colA, colB} {
		if !t.Schema().Has(col) {
			return nil, &core.ColumnError{Column: col, Err: core.ErrMissingColumn}
		}
	}

	out := t.Clone()
	for _, col := range []string{pair.RatioColumn(), pair.LogRatioColumn(), pair.PValueColumn(), pair.LogPColumn()} {
		out.AddColumn(col, "")
	}

	for _, row := range out.Rows() {
		dividend, err := row.Float(colA)
		if err != nil {
			return nil, err
		}
		divisor, err := row.Float(colB)
		if err != nil {
			return nil, err
		}
		ratio := Ratio(dividend, divisor)

		a, err := row.Floats(core.GroupAreaPrefixFor(pair.A))
		if err != nil {
			return nil, err
		}
		b, err := row.Floats(core.GroupAreaPrefixFor(pair.B))
		if err != nil {
			return nil, err
		}
		p := WelchTTest(a, b)

		for col, v := range map[string]float64{
			pair.RatioColumn():    ratio,
			pair.LogRatioColumn(): math.Log2(ratio),
			pair.PValueColumn():   p,
			pair.LogPColumn():     NegLog10(p),
		} {
			if err := row.SetFloat(col, v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
