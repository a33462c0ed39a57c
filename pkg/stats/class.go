// Package stats aggregates the finished lipid table by class and subclass and
// computes per-pair ratio and significance columns for volcano plots.
package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// Aggregation levels.
const (
	LevelClass    = "class"
	LevelSubclass = "subclass"
)

// relativeFloor replaces a non-positive group total when computing shares.
const relativeFloor = 0.1

// GroupStats summarizes one sample group within a category.
type GroupStats struct {
	Count    int       // rows with a nonzero replicate area
	Means    []float64 // per-row mean area
	LogMeans []float64 // per-row mean log10 area, 0 for zero areas
	Sum      float64
	Mean     float64
	Std      float64
	LogStd   float64
	Relative float64 // Sum as a percentage of the group's total over all categories
}

// Category is one class or subclass with its per-group statistics.
type Category struct {
	Name   string
	Groups map[string]*GroupStats
}

// Aggregate holds the categories of one level in first-seen order.
type Aggregate struct {
	Level      string
	Groups     []string
	Categories []*Category
	index      map[string]int
}

func newAggregate(level string, groups []string) *Aggregate {
	return &Aggregate{Level: level, Groups: groups, index: make(map[string]int)}
}

// Category looks up a category by name.
func (a *Aggregate) Category(name string) (*Category, bool) {
	i, ok := a.index[name]
	if !ok {
		return nil, false
	}
	return a.Categories[i], true
}

// Len returns the number of categories.
func (a *Aggregate) Len() int {
	return len(a.Categories)
}

// Header returns the output columns: the level name followed by cnt, avg and
// std per group.
func (a *Aggregate) Header() []string {
	cols := []string{a.Level}
	for _, g := range a.Groups {
		cols = append(cols, g+" cnt", g+" avg", g+" std")
	}
	return cols
}

// Records renders one output row per category, aligned with Header.
func (a *Aggregate) Records() [][]string {
	records := make([][]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		rec := []string{c.Name}
		for _, g := range a.Groups {
			gs := c.Groups[g]
			rec = append(rec, strconv.Itoa(gs.Count), core.FormatFloat(gs.Mean), core.FormatFloat(gs.Std))
		}
		records = append(records, rec)
	}
	return records
}

func (a *Aggregate) category(name string) *Category {
	if c, ok := a.Category(name); ok {
		return c
	}
	c := &Category{Name: name, Groups: make(map[string]*GroupStats, len(a.Groups))}
	for _, g := range a.Groups {
		c.Groups[g] = &GroupStats{}
	}
	a.index[name] = len(a.Categories)
	a.Categories = append(a.Categories, c)
	return c
}

func (a *Aggregate) finalize() {
	totals := make(map[string]float64, len(a.Groups))
	for _, c := range a.Categories {
		for g, gs := range c.Groups {
			gs.Sum = core.Sum(gs.Means)
			gs.Mean = core.Mean(gs.Means)
			gs.Std = core.PopStd(gs.Means)
			gs.LogStd = core.PopStd(gs.LogMeans)
			totals[g] += gs.Sum
		}
	}
	for _, c := range a.Categories {
		for g, gs := range c.Groups {
			total := totals[g]
			if total <= 0 {
				total = relativeFloor
			}
			gs.Relative = gs.Sum / total * 100
		}
	}
}

// ClassStats folds every row whose Class key is known to the lookup into a
// class-level and a subclass-level aggregate. Unknown keys are skipped.
func ClassStats(t *core.Table, lookup *core.ClassLookup) (class, subclass *Aggregate, err error) {
	groups, err := core.DiscoverGroups(t.Columns())
	if err != nil {
		return nil, nil, err
	}
	class = newAggregate(LevelClass, groups.Labels())
	subclass = newAggregate(LevelSubclass, groups.Labels())
	if t.Len() == 0 {
		return class, subclass, nil
	}
	if !t.Schema().Has(core.ColClass) {
		return nil, nil, &core.ColumnError{Column: core.ColClass, Err: core.ErrMissingColumn}
	}

	for _, row := range t.Rows() {
		entry, ok := lookup.Get(row.Value(core.ColClass))
		if !ok {
			continue
		}
		sub := subclass.category(entry.Subclass)
		cls := class.category(entry.Class)
		for _, g := range groups.Labels() {
			areas, err := row.Floats(core.GroupAreaPrefixFor(g))
			if err != nil {
				return nil, nil, fmt.Errorf("class stats: %w", err)
			}
			mean, logMean, nonzero := summarize(areas)
			for _, c := range []*Category{sub, cls} {
				gs := c.Groups[g]
				if nonzero {
					gs.Count++
				}
				gs.Means = append(gs.Means, mean)
				gs.LogMeans = append(gs.LogMeans, logMean)
			}
		}
	}

	class.finalize()
	subclass.finalize()
	return class, subclass, nil
}

// summarize returns the mean area, the mean log10 area and whether any
// replicate is above zero.
func summarize(areas []float64) (mean, logMean float64, nonzero bool) {
	logs := make([]float64, len(areas))
	for i, a := range areas {
		if a > 0 {
			logs[i] = math.Log10(a)
		}
	}
	top, ok := core.Max(areas)
	return core.Mean(areas), core.Mean(logs), ok && top > 0
}
