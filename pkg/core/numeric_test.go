package core

import (
	"math"
	"testing"
)

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name      string
		val       float64
		precision int
		want      float64
	}{
		{"round to 2 decimals", 3.14159, 2, 3.14},
		{"round to 8 decimals", 0.123456789, 8, 0.12345679},
		{"round to 0 decimals", 3.6, 0, 4.0},
		{"round negative", -3.14159, 2, -3.14},
		{"half to even down", 10.125, 2, 10.12},
		{"half to even up", 10.375, 2, 10.38},
		{"half to even whole", 2.5, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundFloat(tt.val, tt.precision)
			if got != tt.want {
				t.Errorf("RoundFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeanAndPopStd(t *testing.T) {
	tests := []struct {
		name     string
		vals     []float64
		wantMean float64
		wantStd  float64
	}{
		{"single value", []float64{4}, 4, 0},
		{"two values", []float64{2, 4}, 3, 1},
		{"population std", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.vals); math.Abs(got-tt.wantMean) > 1e-12 {
				t.Errorf("Mean() = %v, want %v", got, tt.wantMean)
			}
			if got := PopStd(tt.vals); math.Abs(got-tt.wantStd) > 1e-12 {
				t.Errorf("PopStd() = %v, want %v", got, tt.wantStd)
			}
		})
	}

	if !math.IsNaN(Mean(nil)) {
		t.Error("Mean of empty slice should be NaN")
	}
	if !math.IsNaN(PopStd(nil)) {
		t.Error("PopStd of empty slice should be NaN")
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		val  float64
		want string
	}{
		{12, "12.0"},
		{12.5, "12.5"},
		{0.00000001, "0.00000001"},
		{-3, "-3.0"},
		{math.Inf(1), "inf"},
		{math.NaN(), "nan"},
	}

	for _, tt := range tests {
		if got := FormatFloat(tt.val); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.val, got, tt.want)
		}
	}
}

func TestMax(t *testing.T) {
	if _, ok := Max(nil); ok {
		t.Error("Max of empty slice should report false")
	}
	if m, ok := Max([]float64{1, 7, 3}); !ok || m != 7 {
		t.Errorf("Max() = %v, %v, want 7, true", m, ok)
	}
}
