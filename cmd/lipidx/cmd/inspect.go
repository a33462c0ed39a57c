package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/LipidX/pkg/config"
	"github.com/ChrisMcGann/LipidX/pkg/core"
	"github.com/ChrisMcGann/LipidX/pkg/reader/peaktable"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate peak table format and contents",
	Long: `Read one or two peak tables the way analyze does and report the first
problem found: missing identity columns, rows with the wrong number of
fields or non-numeric retention times, and bad Area column names.`,
	Args: cobra.RangeArgs(1, config.MaxInputs),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := peaktable.Load(args)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		groups, err := core.DiscoverGroups(t.Columns())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Printf("OK: %d lipids, %d columns, %d groups\n", t.Len(), len(t.Columns()), groups.Len())
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file...]",
	Short: "Summarize peak table contents",
	Long:  `Print the sample groups with their replicates, the column metrics and the retention time range of merged peak tables.`,
	Args:  cobra.RangeArgs(1, config.MaxInputs),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := peaktable.Load(args)
		if err != nil {
			return err
		}
		groups, err := core.DiscoverGroups(t.Columns())
		if err != nil {
			return err
		}

		fmt.Printf("Lipids: %d\n", t.Len())
		if t.Len() > 0 {
			lo, hi := retTimeRange(t)
			fmt.Printf("Retention time: %.2f - %.2f\n", lo, hi)
		}

		fmt.Printf("\nGroups: %d\n", groups.Len())
		for _, g := range groups.Labels() {
			fmt.Printf("  %-12s replicates %s\n", g, strings.Join(groups.Replicates(g), ","))
		}

		counts := make(map[string]int)
		for _, col := range t.Columns() {
			counts[core.MetricOf(col)]++
		}
		metrics := make([]string, 0, len(counts))
		for m := range counts {
			metrics = append(metrics, m)
		}
		sort.Strings(metrics)

		fmt.Printf("\nColumn metrics: %d\n", len(metrics))
		for _, m := range metrics {
			fmt.Printf("  %-16s %d\n", m, counts[m])
		}
		return nil
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [file]",
	Short: "Write the default parameters as a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err == nil {
			return fmt.Errorf("file already exists: %s", args[0])
		}
		if err := config.Save(args[0], config.Defaults()); err != nil {
			return err
		}
		fmt.Printf("Wrote default parameters to %s\n", args[0])
		return nil
	},
}

func retTimeRange(t *core.Table) (lo, hi float64) {
	seen := false
	for _, row := range t.Rows() {
		rt, err := row.Float(core.ColRetTime)
		if err != nil {
			continue
		}
		if !seen || rt < lo {
			lo = rt
		}
		if !seen || rt > hi {
			hi = rt
		}
		seen = true
	}
	return lo, hi
}
