package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/LipidX/pkg/pipeline"
	"github.com/ChrisMcGann/LipidX/pkg/writer/csv"
	"github.com/ChrisMcGann/LipidX/pkg/writer/jsonout"
	"github.com/ChrisMcGann/LipidX/pkg/writer/sqlite"
	"github.com/ChrisMcGann/LipidX/pkg/writer/xlsx"
)

// Output formats
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
	FormatJSON   = "json"
)

// Output file names inside the output directory
const (
	lipidCSVFile    = "lipid_analysis.csv"
	classCSVFile    = "class_stats.csv"
	subclassCSVFile = "subclass_stats.csv"
	xlsxFile        = "lipid_analysis.xlsx"
	sqliteFile      = "lipid_analysis.db"
	plotFile        = "plot_data.json"
)

var allFormats = []string{FormatCSV, FormatXLSX, FormatSQLite, FormatJSON}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis on one or two peak tables",
	Long: `Merge LipidSearch peak tables and run every analysis stage.

Results are written to the output directory as CSV tables, an Excel
workbook, a SQLite database and a JSON file with the plot series.

Examples:
  # Positive and negative mode with blank subtraction
  lipidx analyze -i pos.txt -i neg.txt --lookup lipidKey.csv --blank c -o results

  # Normalize by fixed divisors and compare two groups
  lipidx analyze -i pos.txt --lookup lipidKey.csv --normalize values \
    --divisor s1=2 --divisor s2=1,2,3 --pair s1:s2

  # Parameters from a YAML file, overriding one threshold
  lipidx analyze -c params.yaml --sn-min 50`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	params, err := loadParams(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(params)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	pl, err := pipeline.New(params, log)
	if err != nil {
		return err
	}

	start := time.Now()
	fmt.Printf("Analyzing %s\n", strings.Join(params.Inputs, ", "))

	res, err := pl.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	for _, s := range res.Stages {
		fmt.Printf("  %-18s %6d -> %-6d rows\n", s.Name, s.RowsIn, s.RowsOut)
	}
	if res.Empty() {
		fmt.Println("Warning: no lipids passed the filters")
	}

	written, err := export(cmd.Context(), res, params.OutputDir, formats, log)
	if err != nil {
		return err
	}

	fmt.Printf("\nAnalysis complete:\n")
	fmt.Printf("  Lipids: %d\n", res.Table.Len())
	if res.Class != nil {
		fmt.Printf("  Classes: %d, subclasses: %d\n", res.Class.Len(), res.Subclass.Len())
	}
	for _, p := range res.Pairs {
		fmt.Printf("  Ratio: %s\n", p)
	}
	for _, path := range written {
		fmt.Printf("  Output: %s\n", path)
	}
	fmt.Printf("  Time: %v\n", time.Since(start).Round(time.Millisecond))

	return nil
}

// export writes res in every requested format. Each format goes to its own
// file so the writers run concurrently.
func export(ctx context.Context, res *pipeline.Result, dir string, formats []string, log *zap.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var jobs []exportJob
	for _, f := range formats {
		js, err := exportJobs(strings.ToLower(strings.TrimSpace(f)), res, dir)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, js...)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			if err := job.write(); err != nil {
				return fmt.Errorf("failed to write %s: %w", job.path, err)
			}
			log.Debug("output written", zap.String("path", job.path), zap.Duration("duration", time.Since(start)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, len(jobs))
	for i, job := range jobs {
		paths[i] = job.path
	}
	return paths, nil
}

type exportJob struct {
	path  string
	write func() error
}

func exportJobs(format string, res *pipeline.Result, dir string) ([]exportJob, error) {
	join := func(name string) string { return filepath.Join(dir, name) }

	switch format {
	case FormatCSV:
		jobs := []exportJob{{
			path:  join(lipidCSVFile),
			write: func() error { return csv.WriteTableFile(join(lipidCSVFile), res.Table) },
		}}
		if res.Class != nil {
			jobs = append(jobs,
				exportJob{
					path:  join(classCSVFile),
					write: func() error { return csv.WriteAggregateFile(join(classCSVFile), res.Class) },
				},
				exportJob{
					path:  join(subclassCSVFile),
					write: func() error { return csv.WriteAggregateFile(join(subclassCSVFile), res.Subclass) },
				})
		}
		return jobs, nil
	case FormatXLSX:
		return []exportJob{{
			path:  join(xlsxFile),
			write: func() error { return xlsx.Write(join(xlsxFile), res.Table, res.Class, res.Subclass) },
		}}, nil
	case FormatSQLite:
		return []exportJob{{
			path:  join(sqliteFile),
			write: func() error { return writeSQLite(join(sqliteFile), res) },
		}}, nil
	case FormatJSON:
		return []exportJob{{
			path: join(plotFile),
			write: func() error {
				return jsonout.WriteFile(join(plotFile), jsonout.Build(res.Class, res.Subclass, res.Volcano))
			},
		}}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func writeSQLite(path string, res *pipeline.Result) error {
	// SQLite appends to an existing file; start from an empty database.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	w, err := sqlite.NewWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()
	w.SetDescription("lipidx " + rootCmd.Version)

	if err := w.WriteTable(res.Table); err != nil {
		return err
	}
	if err := w.WriteAggregate(res.Class); err != nil {
		return err
	}
	if err := w.WriteAggregate(res.Subclass); err != nil {
		return err
	}
	return w.Finalize()
}
