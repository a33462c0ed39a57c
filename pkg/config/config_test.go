package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/LipidX/pkg/stats"
	"github.com/ChrisMcGann/LipidX/pkg/transform"
)

func TestDefaults(t *testing.T) {
	p := Defaults()

	assert.True(t, p.RemoveRejects)
	assert.True(t, p.ClassStats)
	assert.Equal(t, 0.9, p.IonTolerance)
	assert.Equal(t, 3.0, p.RetTimeMin)
	assert.Equal(t, 0.8, p.GroupPQMin)
	assert.Equal(t, 100.0, p.GroupSNMin)
	assert.Equal(t, 3.0, p.BlankMultiplier)
	assert.Contains(t, p.RemoveColumns, "GroupHeight")
	assert.NoError(t, p.Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIPIDX_DATA", "/data/run7")

	path := filepath.Join(dir, "params.yaml")
	content := `inputs:
  - ${LIPIDX_DATA}/pos.txt
  - ${LIPIDX_DATA}/neg.txt
blank: c
group_sn_min: 50
normalize: values
divisors:
  s1: "2"
  s2: "2,3,4"
pairs: ["s1:s2"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	p, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	assert.Equal(t, []string{"/data/run7/pos.txt", "/data/run7/neg.txt"}, p.Inputs)
	assert.Equal(t, "c", p.Blank)
	assert.Equal(t, 50.0, p.GroupSNMin)
	assert.Equal(t, 0.8, p.GroupPQMin, "unset keys keep defaults")
	assert.True(t, p.RemoveRejects)

	opts := p.NormalizeOptions()
	assert.Equal(t, transform.ModeValues, opts.Mode)
	assert.Equal(t, "2,3,4", opts.Divisors["s2"])

	pairs, err := p.GroupPairs()
	require.NoError(t, err)
	assert.Equal(t, []stats.Pair{{A: "s1", B: "s2"}}, pairs)

	assert.Equal(t, 50.0, p.FilterConfig().GroupSNMin)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inputs: [unterminated"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	p := Defaults()
	p.Blank = "blk"
	p.Pairs = []string{"a:b"}

	require.NoError(t, Save(path, p))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{name: "too many inputs", modify: func(p *Params) { p.Inputs = []string{"a", "b", "c"} }},
		{name: "unknown mode", modify: func(p *Params) { p.Normalize = "median" }},
		{name: "negative threshold", modify: func(p *Params) { p.GroupPQMin = -1 }},
		{name: "negative multiplier", modify: func(p *Params) { p.BlankMultiplier = -3 }},
		{name: "bad pair", modify: func(p *Params) { p.Pairs = []string{"s1"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Defaults()
			tt.modify(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("LIPIDX_DIR", "/data")
	t.Setenv("LIPIDX_SELF", "${LIPIDX_SELF}/x")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "dir: ${LIPIDX_DIR}/pos.txt", want: "dir: /data/pos.txt"},
		{name: "two vars", in: "${LIPIDX_DIR}:${LIPIDX_DIR}", want: "/data:/data"},
		{name: "unset var", in: "a${LIPIDX_UNSET}b", want: "ab"},
		{name: "value with reference", in: "p: ${LIPIDX_SELF}", want: "p: ${LIPIDX_SELF}/x"},
		{name: "unterminated", in: "p: ${LIPIDX_DIR", want: "p: ${LIPIDX_DIR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, substituteEnvVars(tt.in))
		})
	}
}
