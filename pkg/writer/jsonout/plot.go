// Package jsonout exports the data consumed by the plotting front end.
package jsonout

import (
	"fmt"
	"io"
	"math"
	"os"

	gojson "github.com/goccy/go-json"

	"github.com/ChrisMcGann/LipidX/pkg/stats"
)

// CategoryPoint is one bar of the class or subclass charts.
type CategoryPoint struct {
	Category    string  `json:"category"`
	Group       string  `json:"group"`
	Count       int     `json:"cnt"`
	Sum         float64 `json:"sum"`
	LogSum      float64 `json:"log_sum"`
	Mean        float64 `json:"avg"`
	Std         float64 `json:"std"`
	LogStd      float64 `json:"log_std"`
	Lower       float64 `json:"lower"`
	Upper       float64 `json:"upper"`
	Relative    float64 `json:"relative"`
	LogRelative float64 `json:"log_relative"`
}

// PlotData bundles every chart input of one analysis.
type PlotData struct {
	Class    []CategoryPoint  `json:"class"`
	Subclass []CategoryPoint  `json:"subclass"`
	Volcano  []*stats.Volcano `json:"volcano"`
}

// Build flattens the aggregates into chart points. Non-finite values are
// clamped so the result always encodes.
func Build(class, subclass *stats.Aggregate, volcano []*stats.Volcano) *PlotData {
	return &PlotData{
		Class:    points(class),
		Subclass: points(subclass),
		Volcano:  volcano,
	}
}

func points(a *stats.Aggregate) []CategoryPoint {
	if a == nil {
		return nil
	}
	out := make([]CategoryPoint, 0, len(a.Categories)*len(a.Groups))
	for _, c := range a.Categories {
		for _, g := range a.Groups {
			gs := c.Groups[g]
			logSum := 0.0
			if gs.Sum > 1 {
				logSum = math.Log10(gs.Sum)
			}
			logRelative := 0.0
			if gs.Relative > 0 {
				logRelative = math.Log10(gs.Relative / 100)
			}
			out = append(out, CategoryPoint{
				Category:    c.Name,
				Group:       g,
				Count:       gs.Count,
				Sum:         stats.Clamp(gs.Sum),
				LogSum:      logSum,
				Mean:        stats.Clamp(gs.Mean),
				Std:         stats.Clamp(gs.Std),
				LogStd:      stats.Clamp(gs.LogStd),
				Lower:       stats.Clamp(gs.Sum - gs.Std),
				Upper:       stats.Clamp(gs.Sum + gs.Std),
				Relative:    stats.Clamp(gs.Relative),
				LogRelative: logRelative,
			})
		}
	}
	return out
}

// Write encodes d as indented JSON.
func Write(w io.Writer, d *PlotData) error {
	enc := gojson.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode plot data: %w", err)
	}
	return nil
}

// WriteFile writes d to path.
func WriteFile(path string, d *PlotData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
