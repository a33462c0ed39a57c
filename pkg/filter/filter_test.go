package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

var filterCols = []string{
	core.ColName, core.ColRetTime, "Rej.",
	"GroupPQ[c]", "GroupPQ[s1]",
	"GroupS/N[c]", "GroupS/N[s1]",
	"GroupArea[c]", "GroupArea[s1]",
	"GroupHeight[c]", "GroupHeight[s1]",
}

func buildTable(t *testing.T, rows [][]string) *core.Table {
	t.Helper()
	tbl := core.NewTable(filterCols)
	for _, r := range rows {
		_, err := tbl.Append(r[0], r)
		require.NoError(t, err)
	}
	return tbl
}

func TestConfigApply(t *testing.T) {
	tbl := buildTable(t, [][]string{
		{"pass", "5.0", "0", "0.5", "0.9", "50", "150", "10", "1000", "1", "200"},
		{"early", "3.0", "0", "0.9", "0.9", "150", "150", "10", "1000", "1", "200"},
		{"low_pq", "5.0", "0", "0.8", "0.8", "150", "150", "10", "1000", "1", "200"},
		{"low_sn", "5.0", "0", "0.9", "0.9", "100", "99", "10", "1000", "1", "200"},
		{"low_area", "5.0", "0", "0.9", "0.9", "150", "150", "10", "500", "1", "200"},
		{"low_height", "5.0", "0", "0.9", "0.9", "150", "150", "10", "1000", "1", "20"},
	})

	tests := []struct {
		name   string
		config Config
		want   []string
	}{
		{
			name:   "defaults skip area and height",
			config: DefaultConfig(),
			want:   []string{"pass", "low_area", "low_height"},
		},
		{
			name: "area threshold",
			config: Config{
				RetTimeMin: 3, GroupPQMin: 0.8, GroupSNMin: 100, GroupAreaMin: 500,
			},
			want: []string{"pass", "low_height"},
		},
		{
			name: "height threshold",
			config: Config{
				RetTimeMin: 3, GroupPQMin: 0.8, GroupSNMin: 100, GroupAreaMin: 500, GroupHeightMin: 100,
			},
			want: []string{"pass"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.config.Apply(tbl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Names())
			assert.Equal(t, 6, tbl.Len(), "source table must not change")
		})
	}
}

func TestConfigApplyIsIdempotent(t *testing.T) {
	tbl := buildTable(t, [][]string{
		{"a", "5.0", "0", "0.9", "0.9", "150", "150", "10", "1000", "1", "200"},
		{"b", "2.0", "0", "0.9", "0.9", "150", "150", "10", "1000", "1", "200"},
		{"c", "9.0", "0", "0.1", "0.9", "150", "150", "10", "1000", "1", "200"},
	})
	cfg := DefaultConfig()

	once, err := cfg.Apply(tbl)
	require.NoError(t, err)
	twice, err := cfg.Apply(once)
	require.NoError(t, err)

	assert.Equal(t, once.Names(), twice.Names())
}

func TestConfigApplyMissingColumn(t *testing.T) {
	tbl := core.NewTable([]string{core.ColName, core.ColRetTime, "GroupPQ[c]"})
	_, err := tbl.Append("x", []string{"x", "5.0", "0.9"})
	require.NoError(t, err)

	cfg := DefaultConfig()
	_, err = cfg.Apply(tbl)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
}

func TestConfigApplyEmptyTable(t *testing.T) {
	cfg := DefaultConfig()
	out, err := cfg.Apply(core.NewTable(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestRemoveRejects(t *testing.T) {
	tbl := buildTable(t, [][]string{
		{"keep", "5.0", "0", "", "", "", "", "", "", "", ""},
		{"drop", "5.0", "1", "", "", "", "", "", "", "", ""},
	})

	out, err := RemoveRejects(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, out.Names())

	noRej := core.NewTable([]string{core.ColName})
	_, err = noRej.Append("x", []string{"x"})
	require.NoError(t, err)
	_, err = RemoveRejects(noRej)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
}
