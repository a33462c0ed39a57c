package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/LipidX/pkg/pipeline"
)

var volcanoCmd = &cobra.Command{
	Use:   "volcano",
	Short: "Add ratio and t-test columns to an analyzed table",
	Long: `Read tables written by analyze (tab- or comma-separated with the same
columns) and compute ratio, log2 ratio, p-value and -log10 p-value columns
for each group pair, plus the volcano plot points per lipid class.

Examples:
  lipidx volcano -i results/lipid_analysis.csv --lookup lipidKey.csv \
    --pair treated:control -o volcano`,
	RunE: runVolcano,
}

func runVolcano(cmd *cobra.Command, args []string) error {
	params, err := loadParams(cmd)
	if err != nil {
		return err
	}
	if len(params.Pairs) == 0 {
		return fmt.Errorf("no group pairs, use --pair a:b")
	}
	params.ClassStats = false

	log, err := newLogger(params)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	pl, err := pipeline.New(params, log)
	if err != nil {
		return err
	}

	fmt.Printf("Computing ratios for %s\n", strings.Join(params.Pairs, ", "))
	res, err := pl.RunVolcano(cmd.Context())
	if err != nil {
		return fmt.Errorf("volcano failed: %w", err)
	}
	if len(res.Pairs) == 0 {
		return fmt.Errorf("none of the pairs %s match the groups of the input", strings.Join(params.Pairs, ", "))
	}

	written, err := export(cmd.Context(), res, params.OutputDir, formats, log)
	if err != nil {
		return err
	}

	fmt.Printf("\nVolcano complete:\n")
	fmt.Printf("  Lipids: %d\n", res.Table.Len())
	for i, p := range res.Pairs {
		fmt.Printf("  %s: %d classes\n", p, len(res.Volcano[i].Series))
	}
	for _, path := range written {
		fmt.Printf("  Output: %s\n", path)
	}
	return nil
}
