// Package pipeline runs the lipid analysis stages in their fixed order and
// collects the result tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/LipidX/pkg/config"
	"github.com/ChrisMcGann/LipidX/pkg/core"
	"github.com/ChrisMcGann/LipidX/pkg/filter"
	"github.com/ChrisMcGann/LipidX/pkg/ions"
	"github.com/ChrisMcGann/LipidX/pkg/reader/peaktable"
	"github.com/ChrisMcGann/LipidX/pkg/stats"
	"github.com/ChrisMcGann/LipidX/pkg/transform"
)

// ErrBadInput marks failures caused by the supplied files rather than by the
// analysis itself.
var ErrBadInput = errors.New("bad input")

// Stage is one table transformation.
type Stage struct {
	Name string
	Run  func(*core.Table) (*core.Table, error)
}

// StageReport records the effect of one stage.
type StageReport struct {
	Name     string
	RowsIn   int
	RowsOut  int
	Columns  int
	Duration time.Duration
}

// Result is everything an analysis produces.
type Result struct {
	Table    *core.Table
	Class    *stats.Aggregate // nil when class stats are disabled
	Subclass *stats.Aggregate
	Pairs    []stats.Pair // pairs that were computed
	Volcano  []*stats.Volcano
	Stages   []StageReport
}

// Empty reports whether no rows survived the pipeline. This is not an error.
func (r *Result) Empty() bool {
	return r.Table == nil || r.Table.Len() == 0
}

// Pipeline runs one analysis request.
type Pipeline struct {
	params *config.Params
	log    *zap.Logger
	lookup *core.ClassLookup
}

// New validates params and creates a pipeline. A nil logger discards output.
func New(params *config.Params, log *zap.Logger) (*Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{params: params, log: log}, nil
}

// WithLookup sets the class lookup instead of loading params.LookupPath.
func (p *Pipeline) WithLookup(lookup *core.ClassLookup) *Pipeline {
	p.lookup = lookup
	return p
}

// Run ingests the input files and runs the full analysis.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	t, err := p.ingest()
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, t)
}

// Process runs every stage after ingestion on t.
func (p *Pipeline) Process(ctx context.Context, t *core.Table) (*Result, error) {
	res := &Result{}
	t, err := p.runStages(ctx, t, p.stages(), res)
	if err != nil {
		return nil, err
	}
	res.Table = t

	if p.params.ClassStats {
		lookup, err := p.classLookup(true)
		if err != nil {
			return nil, err
		}
		res.Class, res.Subclass, err = stats.ClassStats(t, lookup)
		if err != nil {
			return nil, fmt.Errorf("class stats: %w", err)
		}
		p.log.Info("class stats computed",
			zap.Int("classes", res.Class.Len()),
			zap.Int("subclasses", res.Subclass.Len()))
	}

	if err := p.volcano(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// RunVolcano ingests already processed tables and only computes the ratio
// and significance columns of the requested pairs.
func (p *Pipeline) RunVolcano(ctx context.Context) (*Result, error) {
	t, err := p.ingest()
	if err != nil {
		return nil, err
	}
	res := &Result{Table: t}
	if err := p.volcano(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Ingest reads and merges the input files only.
func (p *Pipeline) Ingest() (*core.Table, error) {
	return p.ingest()
}

func (p *Pipeline) ingest() (*core.Table, error) {
	start := time.Now()
	t, err := peaktable.Load(p.params.Inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	p.log.Info("ingested peak tables",
		zap.Strings("files", p.params.Inputs),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(t.Columns())),
		zap.Duration("duration", time.Since(start)))
	return t, nil
}

// stages lists the table transformations in execution order.
func (p *Pipeline) stages() []Stage {
	params := p.params
	var stages []Stage
	if params.RemoveRejects {
		stages = append(stages, Stage{Name: "remove_rejects", Run: filter.RemoveRejects})
	}
	if params.GroupIons {
		stages = append(stages, Stage{Name: "group_ions", Run: func(t *core.Table) (*core.Table, error) {
			return ions.Group(t, params.IonTolerance)
		}})
	}
	filterCfg := params.FilterConfig()
	stages = append(stages,
		Stage{Name: "filter", Run: filterCfg.Apply},
		Stage{Name: "blank_subtraction", Run: func(t *core.Table) (*core.Table, error) {
			return transform.SubtractBlank(t, params.Blank, params.BlankMultiplier)
		}},
		Stage{Name: "remove_columns", Run: func(t *core.Table) (*core.Table, error) {
			return transform.RemoveColumns(t, params.RemoveColumns, params.Whitelist)
		}},
		Stage{Name: "normalize", Run: func(t *core.Table) (*core.Table, error) {
			return transform.Normalize(t, params.NormalizeOptions())
		}},
	)
	return stages
}

func (p *Pipeline) runStages(ctx context.Context, t *core.Table, stages []Stage, res *Result) (*core.Table, error) {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		out, err := stage.Run(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name, err)
		}
		report := StageReport{
			Name:     stage.Name,
			RowsIn:   t.Len(),
			RowsOut:  out.Len(),
			Columns:  len(out.Columns()),
			Duration: time.Since(start),
		}
		res.Stages = append(res.Stages, report)
		p.log.Info("stage complete",
			zap.String("stage", report.Name),
			zap.Int("rows_in", report.RowsIn),
			zap.Int("rows_out", report.RowsOut),
			zap.Int("columns", report.Columns),
			zap.Duration("duration", report.Duration))
		t = out
	}
	return t, nil
}

// volcano adds the ratio columns of every known pair and extracts plot points.
func (p *Pipeline) volcano(ctx context.Context, res *Result) error {
	pairs, err := p.params.GroupPairs()
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}
	groups, err := core.DiscoverGroups(res.Table.Columns())
	if err != nil {
		return fmt.Errorf("volcano: %w", err)
	}
	lookup, err := p.classLookup(false)
	if err != nil {
		return err
	}

	t := res.Table
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.pairAvailable(t, groups, pair) {
			p.log.Warn("skipping ratio for unknown group", zap.String("pair", pair.String()))
			continue
		}
		t, err = stats.CalcRatio(t, pair)
		if err != nil {
			return fmt.Errorf("ratio %s: %w", pair, err)
		}
		v, err := stats.VolcanoPoints(t, pair, lookup)
		if err != nil {
			return fmt.Errorf("volcano %s: %w", pair, err)
		}
		res.Pairs = append(res.Pairs, pair)
		res.Volcano = append(res.Volcano, v)
	}
	res.Table = t
	return nil
}

func (p *Pipeline) pairAvailable(t *core.Table, groups *core.Groups, pair stats.Pair) bool {
	for _, g := range []string{pair.A, pair.B} {
		if !groups.Has(g) || !t.Schema().Has(core.GroupAreaPrefix+g+"]") {
			return false
		}
	}
	return true
}

// classLookup returns the injected lookup or loads it once from disk. Without
// a configured path it fails when required and otherwise returns nil.
func (p *Pipeline) classLookup(required bool) (*core.ClassLookup, error) {
	if p.lookup != nil {
		return p.lookup, nil
	}
	if p.params.LookupPath == "" {
		if required {
			return nil, fmt.Errorf("%w: class stats need a lipid class lookup file", ErrBadInput)
		}
		p.log.Warn("no lipid class lookup file, volcano points skipped")
		return nil, nil
	}
	lookup, err := core.LoadClassLookup(p.params.LookupPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	p.log.Info("loaded lipid classes", zap.String("path", p.params.LookupPath), zap.Int("keys", lookup.Len()))
	p.lookup = lookup
	return lookup, nil
}
