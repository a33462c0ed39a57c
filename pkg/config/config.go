// Package config loads analysis parameters from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/LipidX/pkg/filter"
	"github.com/ChrisMcGann/LipidX/pkg/ions"
	"github.com/ChrisMcGann/LipidX/pkg/stats"
	"github.com/ChrisMcGann/LipidX/pkg/transform"
)

// MaxInputs is the number of peak tables one analysis accepts (positive and
// negative mode).
const MaxInputs = 2

// Params holds every user-chosen analysis parameter.
type Params struct {
	Inputs     []string `yaml:"inputs,omitempty"`
	LookupPath string   `yaml:"lookup"`
	OutputDir  string   `yaml:"output_dir"`

	RemoveRejects bool    `yaml:"remove_rejects"`
	GroupIons     bool    `yaml:"group_ions"`
	IonTolerance  float64 `yaml:"ion_tolerance"`

	RetTimeMin     float64 `yaml:"ret_time_min"`
	GroupPQMin     float64 `yaml:"group_pq_min"`
	GroupSNMin     float64 `yaml:"group_sn_min"`
	GroupAreaMin   float64 `yaml:"group_area_min"`
	GroupHeightMin float64 `yaml:"group_height_min"`

	Blank           string  `yaml:"blank"`
	BlankMultiplier float64 `yaml:"blank_multiplier"`

	RemoveColumns string `yaml:"remove_columns"` // comma-separated metric prefixes
	Whitelist     bool   `yaml:"whitelist"`

	Normalize string            `yaml:"normalize"`          // none, values or intensity
	Divisors  map[string]string `yaml:"divisors,omitempty"` // group -> "2" or "2,3,4"

	ClassStats bool     `yaml:"class_stats"`
	Pairs      []string `yaml:"pairs,omitempty"` // "a:b"

	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the parameters of a plain analysis run.
func Defaults() *Params {
	return &Params{
		RemoveRejects:   true,
		GroupIons:       true,
		IonTolerance:    ions.DefaultTolerance,
		RetTimeMin:      filter.DefaultRetTimeMin,
		GroupPQMin:      filter.DefaultGroupPQMin,
		GroupSNMin:      filter.DefaultGroupSNMin,
		GroupAreaMin:    filter.DefaultGroupAreaMin,
		GroupHeightMin:  filter.DefaultGroupHeightMin,
		BlankMultiplier: transform.DefaultBlankMultiplier,
		RemoveColumns:   strings.Join(transform.DefaultRemoveColumns, ","),
		Normalize:       string(transform.ModeNone),
		ClassStats:      true,
		OutputDir:       ".",
		LogLevel:        "info",
	}
}

// Load reads parameters from a YAML file on top of Defaults. ${VAR}
// references are replaced with environment values before parsing.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	p := Defaults()
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return p, nil
}

// Save writes p as YAML.
func Save(path string, p *Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the parameters before any file is read.
func (p *Params) Validate() error {
	var errs []error
	if len(p.Inputs) > MaxInputs {
		errs = append(errs, fmt.Errorf("at most %d input files, got %d", MaxInputs, len(p.Inputs)))
	}
	if _, err := transform.ParseMode(p.Normalize); err != nil {
		errs = append(errs, err)
	}
	for name, v := range map[string]float64{
		"ion_tolerance":    p.IonTolerance,
		"ret_time_min":     p.RetTimeMin,
		"group_pq_min":     p.GroupPQMin,
		"group_sn_min":     p.GroupSNMin,
		"group_area_min":   p.GroupAreaMin,
		"group_height_min": p.GroupHeightMin,
		"blank_multiplier": p.BlankMultiplier,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, v))
		}
	}
	for _, s := range p.Pairs {
		if _, err := stats.ParsePair(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FilterConfig returns the row filter thresholds.
func (p *Params) FilterConfig() filter.Config {
	return filter.Config{
		RetTimeMin:     p.RetTimeMin,
		GroupPQMin:     p.GroupPQMin,
		GroupSNMin:     p.GroupSNMin,
		GroupAreaMin:   p.GroupAreaMin,
		GroupHeightMin: p.GroupHeightMin,
	}
}

// NormalizeOptions returns the normalization settings. Validate must have
// accepted the mode.
func (p *Params) NormalizeOptions() transform.NormalizeOptions {
	mode, _ := transform.ParseMode(p.Normalize)
	return transform.NormalizeOptions{Mode: mode, Divisors: p.Divisors, Debug: p.Debug}
}

// GroupPairs parses the requested ratio pairs.
func (p *Params) GroupPairs() ([]stats.Pair, error) {
	pairs := make([]stats.Pair, 0, len(p.Pairs))
	for _, s := range p.Pairs {
		pair, err := stats.ParsePair(s)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Substituted values are not expanded again.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
