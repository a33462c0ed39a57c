package core

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Rounding precision used across stages.
const (
	RoundTo         = 2
	PostNormalRound = 8
)

// RoundFloat rounds a float to n decimal places, halves to even
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.RoundToEven(val*ratio) / ratio
}

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// PopStd returns the population standard deviation (divisor n), or NaN for an
// empty slice.
func PopStd(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return math.Sqrt(stat.Moment(2, xs, nil))
}

// Max returns the largest value and false for an empty slice.
func Max(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m, true
}

// Sum adds up xs.
func Sum(xs []float64) float64 {
	return floats.Sum(xs)
}

// ParseFloat parses a cell value, tolerating surrounding whitespace.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// FormatFloat renders v the way the exported tables expect: shortest
// round-trip digits, with a trailing ".0" on integral values.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
