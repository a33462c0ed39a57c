package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/LipidX/pkg/core"
	"github.com/ChrisMcGann/LipidX/pkg/stats"
)

func TestWrite(t *testing.T) {
	tbl := core.NewTable([]string{core.ColName, core.ColRetTime, core.ColClass, "Area[s1-1]", "log_p[s1/s2]"})
	for _, r := range [][]string{
		{"TG(52:2)+NH4_20.0", "20.0", "TG", "5", "inf"},
		{"PC(34:1)+H_10.0", "10.0", "PC", "100.5", "1.25"},
	} {
		_, err := tbl.Append(r[0], r)
		require.NoError(t, err)
	}
	class := &stats.Aggregate{
		Level:  stats.LevelClass,
		Groups: []string{"s1"},
		Categories: []*stats.Category{{
			Name:   "GP",
			Groups: map[string]*stats.GroupStats{"s1": {Count: 1, Mean: 100.5}},
		}},
	}

	path := filepath.Join(t.TempDir(), "lipid_analysis.xlsx")
	require.NoError(t, Write(path, tbl, class, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{LipidSheet, ClassSheet}, f.GetSheetList())

	rows, err := f.GetRows(LipidSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "ret_time", "Class", "Area[s1-1]", "log_p[s1/s2]"}, rows[0])
	assert.Equal(t, "PC(34:1)+H_10.0", rows[1][0])
	assert.Equal(t, "100.5", rows[1][3])
	assert.Equal(t, "inf", rows[2][4])

	typ, err := f.GetCellType(LipidSheet, "D2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)

	classRows, err := f.GetRows(ClassSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"class", "s1 cnt", "s1 avg", "s1 std"}, classRows[0])
	assert.Equal(t, "GP", classRows[1][0])
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, 12.5, cellValue("12.5"))
	assert.Equal(t, "PC", cellValue("PC"))
	assert.Equal(t, "nan", cellValue("nan"))
	assert.Equal(t, "-inf", cellValue("-inf"))
	assert.Equal(t, "", cellValue(""))
}
