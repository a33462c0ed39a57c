package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/LipidX/pkg/core"
	"github.com/ChrisMcGann/LipidX/pkg/stats"
)

func sampleTable(t *testing.T) *core.Table {
	t.Helper()
	tbl := core.NewTable([]string{core.ColName, core.ColRetTime, core.ColLipidIon, core.ColClass, "Area[s1-1]", "log_p[s1/s2]"})
	_, err := tbl.Append("PE(36:2)+H_12.0", []string{"PE(36:2)+H_12.0", "12.0", "PE(36:2)+H", "PE", "40", "inf"})
	require.NoError(t, err)
	_, err = tbl.Append("pc(34:1)+H_10.0", []string{"pc(34:1)+H_10.0", "10.0", "pc(34:1)+H", "PC", "100.5", "1.5"})
	require.NoError(t, err)
	return tbl
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lipids.db")

	w, err := NewWriter(path)
	require.NoError(t, err)
	w.SetDescription("test run")

	require.NoError(t, w.WriteTable(sampleTable(t)))

	agg := &stats.Aggregate{
		Level:  stats.LevelClass,
		Groups: []string{"s1"},
		Categories: []*stats.Category{{
			Name:   "GP",
			Groups: map[string]*stats.GroupStats{"s1": {Count: 2, Mean: 70.25, Std: 30.25, Sum: 140.5, Relative: 100}},
		}},
	}
	require.NoError(t, w.WriteAggregate(agg))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close(), "close after finalize is a no-op")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var names []string
	rows, err := db.Query(`SELECT Name FROM LipidTable ORDER BY LipidId`)
	require.NoError(t, err)
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	rows.Close()
	assert.Equal(t, []string{"pc(34:1)+H_10.0", "PE(36:2)+H_12.0"}, names, "sorted case-insensitively")

	var rt float64
	var class string
	require.NoError(t, db.QueryRow(`SELECT RetentionTime, Class FROM LipidTable WHERE Name = ?`, "pc(34:1)+H_10.0").Scan(&rt, &class))
	assert.Equal(t, 10.0, rt)
	assert.Equal(t, "PC", class)

	var area float64
	require.NoError(t, db.QueryRow(`
		SELECT v.NumericValue FROM LipidValueTable v JOIN LipidTable l ON l.LipidId = v.LipidId
		WHERE l.Name = ? AND v.ColumnName = ?`, "pc(34:1)+H_10.0", "Area[s1-1]").Scan(&area))
	assert.Equal(t, 100.5, area)

	var inf sql.NullFloat64
	var text string
	require.NoError(t, db.QueryRow(`
		SELECT v.NumericValue, v.Value FROM LipidValueTable v JOIN LipidTable l ON l.LipidId = v.LipidId
		WHERE l.Name = ? AND v.ColumnName = ?`, "PE(36:2)+H_12.0", "log_p[s1/s2]").Scan(&inf, &text))
	assert.False(t, inf.Valid)
	assert.Equal(t, "inf", text)

	var count int
	var avg float64
	require.NoError(t, db.QueryRow(`SELECT Count, Average FROM ClassStatsTable WHERE Category = 'GP'`).Scan(&count, &avg))
	assert.Equal(t, 2, count)
	assert.Equal(t, 70.25, avg)

	var lipids, columns int
	var desc string
	require.NoError(t, db.QueryRow(`SELECT NoofLipids, NoofColumns, Description FROM HeaderTable`).Scan(&lipids, &columns, &desc))
	assert.Equal(t, 2, lipids)
	assert.Equal(t, 6, columns)
	assert.Equal(t, "test run", desc)
}

func TestWriterEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(core.NewTable([]string{core.ColName})))
	require.NoError(t, w.WriteAggregate(nil))
	require.NoError(t, w.Finalize())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM LipidTable`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWriterCloseWithoutFinalizeRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.db")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(sampleTable(t)))
	require.NoError(t, w.Close())
	require.NoError(t, w.Finalize(), "finalize after close is a no-op")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"LipidTable", "LipidValueTable", "HeaderTable", "MaintenanceTable"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Equal(t, 0, n, table)
	}
}
