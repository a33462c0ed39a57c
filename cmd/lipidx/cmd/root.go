// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/LipidX/pkg/config"
	"github.com/ChrisMcGann/LipidX/pkg/logger"
)

var (
	// Flags shared by analyze and volcano
	inputFiles []string
	configFile string
	lookupFile string
	outputDir  string
	pairs      []string
	formats    []string
	logLevel   string
	debug      bool

	// Flags for analyze command
	keepRejects     bool
	noGroupIons     bool
	ionTolerance    float64
	retTimeMin      float64
	groupPQMin      float64
	groupSNMin      float64
	groupAreaMin    float64
	groupHeightMin  float64
	blankGroup      string
	blankMultiplier float64
	removeCols      string
	whitelist       bool
	normalizeMode   string
	divisors        []string
	noClassStats    bool
)

var rootCmd = &cobra.Command{
	Use:   "lipidx",
	Short: "LipidX - Lipid peak table analysis tool",
	Long: `LipidX merges positive and negative mode lipid peak tables exported by
LipidSearch and turns them into cleaned, normalized result tables.

The analysis runs a fixed sequence of stages:
- Reject removal and adduct ion grouping
- Quality filtering on retention time, GroupPQ and GroupS/N
- Blank subtraction and column pruning
- Normalization by fixed divisors or sample intensity
- Class and subclass statistics, ratios and Welch t-tests for volcano plots`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(volcanoCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(initConfigCmd)

	for _, c := range []*cobra.Command{analyzeCmd, volcanoCmd} {
		c.Flags().StringSliceVarP(&inputFiles, "in", "i", nil, "Input peak table(s), at most two (positive and negative mode)")
		c.Flags().StringVarP(&configFile, "config", "c", "", "YAML parameter file; flags override its values")
		c.Flags().StringVar(&lookupFile, "lookup", "", "Lipid class key CSV (key,class,subclass)")
		c.Flags().StringVarP(&outputDir, "out", "o", ".", "Output directory")
		c.Flags().StringArrayVar(&pairs, "pair", nil, "Group pair for ratio analysis as a:b (repeatable)")
		c.Flags().StringSliceVar(&formats, "format", allFormats, "Output formats: csv, xlsx, sqlite, json")
		c.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
		c.Flags().BoolVar(&debug, "debug", false, "Keep pre-normalization values and development logging")
	}

	analyzeCmd.Flags().BoolVar(&keepRejects, "keep-rejects", false, "Keep rows whose Rej. value is not 0")
	analyzeCmd.Flags().BoolVar(&noGroupIons, "no-group-ions", false, "Skip adduct ion grouping")
	analyzeCmd.Flags().Float64Var(&ionTolerance, "ion-tolerance", 0.9, "Retention time window for ion grouping (minutes)")
	analyzeCmd.Flags().Float64Var(&retTimeMin, "ret-time-min", 3, "Minimum retention time")
	analyzeCmd.Flags().Float64Var(&groupPQMin, "pq-min", 0.8, "Minimum GroupPQ")
	analyzeCmd.Flags().Float64Var(&groupSNMin, "sn-min", 100, "Minimum GroupS/N")
	analyzeCmd.Flags().Float64Var(&groupAreaMin, "area-min", 0, "Minimum GroupArea (0 = no check)")
	analyzeCmd.Flags().Float64Var(&groupHeightMin, "height-min", 0, "Minimum GroupHeight (0 = no check)")
	analyzeCmd.Flags().StringVar(&blankGroup, "blank", "", "Blank group label to subtract")
	analyzeCmd.Flags().Float64Var(&blankMultiplier, "blank-multiplier", 3, "Multiplier applied to the blank mean")
	analyzeCmd.Flags().StringVar(&removeCols, "remove-cols", "", "Comma-separated column metrics to remove (default list if unset)")
	analyzeCmd.Flags().BoolVar(&whitelist, "whitelist", false, "Keep only the --remove-cols metrics instead of removing them")
	analyzeCmd.Flags().StringVar(&normalizeMode, "normalize", "none", "Normalization: none, values, intensity")
	analyzeCmd.Flags().StringArrayVar(&divisors, "divisor", nil, "Group divisor as group=value or group=v1,v2,... (repeatable)")
	analyzeCmd.Flags().BoolVar(&noClassStats, "no-class-stats", false, "Skip class and subclass statistics")
}

// loadParams reads --config (or the defaults) and applies every flag the
// user set explicitly.
func loadParams(cmd *cobra.Command) (*config.Params, error) {
	params := config.Defaults()
	if configFile != "" {
		var err error
		params, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	}

	var ferr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "in":
			params.Inputs = inputFiles
		case "lookup":
			params.LookupPath = lookupFile
		case "out":
			params.OutputDir = outputDir
		case "pair":
			params.Pairs = pairs
		case "log-level":
			params.LogLevel = logLevel
		case "debug":
			params.Debug = debug
		case "keep-rejects":
			params.RemoveRejects = !keepRejects
		case "no-group-ions":
			params.GroupIons = !noGroupIons
		case "ion-tolerance":
			params.IonTolerance = ionTolerance
		case "ret-time-min":
			params.RetTimeMin = retTimeMin
		case "pq-min":
			params.GroupPQMin = groupPQMin
		case "sn-min":
			params.GroupSNMin = groupSNMin
		case "area-min":
			params.GroupAreaMin = groupAreaMin
		case "height-min":
			params.GroupHeightMin = groupHeightMin
		case "blank":
			params.Blank = blankGroup
		case "blank-multiplier":
			params.BlankMultiplier = blankMultiplier
		case "remove-cols":
			params.RemoveColumns = removeCols
		case "whitelist":
			params.Whitelist = whitelist
		case "normalize":
			params.Normalize = normalizeMode
		case "divisor":
			m, err := parseDivisorFlags(divisors)
			if err != nil {
				ferr = err
				return
			}
			params.Divisors = m
		case "no-class-stats":
			params.ClassStats = !noClassStats
		}
	})
	if ferr != nil {
		return nil, ferr
	}
	if len(params.Inputs) == 0 {
		return nil, fmt.Errorf("no input files, use --in or inputs in --config")
	}
	return params, nil
}

// parseDivisorFlags turns group=value entries into the divisor map.
func parseDivisorFlags(entries []string) (map[string]string, error) {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		group, value, ok := strings.Cut(e, "=")
		group = strings.TrimSpace(group)
		if !ok || group == "" {
			return nil, fmt.Errorf("invalid --divisor %q, want group=value", e)
		}
		m[group] = strings.TrimSpace(value)
	}
	return m, nil
}

func newLogger(params *config.Params) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       params.LogLevel,
		Development: params.Debug,
		Encoding:    "console",
		OutputPaths: []string{"stderr"},
	})
}
