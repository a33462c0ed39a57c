// Package sqlite provides SQLite database writing for lipid analysis results
package sqlite

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/LipidX/pkg/core"
	"github.com/ChrisMcGann/LipidX/pkg/stats"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Date format for MaintenanceTable
	maintenanceDateFormat = "2006 01 02"
	// schemaVersion is stored in HeaderTable.version
	schemaVersion = 1
)

// Writer handles writing result tables to SQLite database files
type Writer struct {
	db          *sql.DB
	tx          *sql.Tx
	outputPath  string
	lipidStmt   *sql.Stmt
	valueStmt   *sql.Stmt
	classStmt   *sql.Stmt
	lipidID     int
	description string
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:          db,
		outputPath:  outputPath,
		lipidID:     1,
		description: "lipid analysis",
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// SetDescription sets the HeaderTable description written by Finalize.
func (w *Writer) SetDescription(desc string) {
	w.description = desc
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS LipidTable (
		LipidId INTEGER PRIMARY KEY,
		Name TEXT NOT NULL UNIQUE,
		RetentionTime DOUBLE,
		LipidIon TEXT,
		Class TEXT
	);

	CREATE TABLE IF NOT EXISTS LipidValueTable (
		LipidId INTEGER REFERENCES LipidTable(LipidId),
		ColumnIndex INTEGER,
		ColumnName TEXT,
		Value TEXT,
		NumericValue DOUBLE,
		PRIMARY KEY (LipidId, ColumnIndex)
	);

	CREATE TABLE IF NOT EXISTS ClassStatsTable (
		Level TEXT,
		Category TEXT,
		GroupLabel TEXT,
		Count INTEGER,
		Average DOUBLE,
		Std DOUBLE,
		Sum DOUBLE,
		LogStd DOUBLE,
		Relative DOUBLE
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT,
		NoofLipids INTEGER,
		NoofColumns INTEGER
	);

	CREATE TABLE IF NOT EXISTS MaintenanceTable (
		CreationDate TEXT,
		NoofLipidsModified INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements opens the write transaction and prepares the insert
// statements used for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.tx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.lipidStmt, err = w.tx.Prepare(`
		INSERT INTO LipidTable (LipidId, Name, RetentionTime, LipidIon, Class)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare lipid statement: %w", err)
	}

	w.valueStmt, err = w.tx.Prepare(`
		INSERT INTO LipidValueTable (LipidId, ColumnIndex, ColumnName, Value, NumericValue)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare value statement: %w", err)
	}

	w.classStmt, err = w.tx.Prepare(`
		INSERT INTO ClassStatsTable (Level, Category, GroupLabel, Count, Average, Std, Sum, LogStd, Relative)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare class statement: %w", err)
	}

	return nil
}

// WriteTable writes every row of t, one LipidTable entry per row and one
// LipidValueTable entry per cell.
func (w *Writer) WriteTable(t *core.Table) error {
	for _, row := range t.SortedRows() {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow writes a single lipid row to the database
func (w *Writer) WriteRow(row *core.Row) error {
	// Handle optional retention time
	var rt interface{} = nil
	if v, err := row.Float(core.ColRetTime); err == nil {
		rt = v
	}

	_, err := w.lipidStmt.Exec(
		w.lipidID,                   // LipidId
		row.Name(),                  // Name
		rt,                          // RetentionTime
		row.Value(core.ColLipidIon), // LipidIon
		row.Value(core.ColClass),    // Class
	)
	if err != nil {
		return fmt.Errorf("failed to insert lipid %q: %w", row.Name(), err)
	}

	values := row.Values()
	for i, col := range row.Columns() {
		var num interface{} = nil
		if v, err := core.ParseFloat(values[i]); err == nil {
			num = nullable(v)
		}
		if _, err := w.valueStmt.Exec(w.lipidID, i, col, values[i], num); err != nil {
			return fmt.Errorf("failed to insert value %s of %q: %w", col, row.Name(), err)
		}
	}

	w.lipidID++
	return nil
}

// WriteAggregate writes one ClassStatsTable entry per category and group.
func (w *Writer) WriteAggregate(a *stats.Aggregate) error {
	if a == nil {
		return nil
	}
	for _, c := range a.Categories {
		for _, g := range a.Groups {
			gs := c.Groups[g]
			_, err := w.classStmt.Exec(
				a.Level,
				c.Name,
				g,
				gs.Count,
				nullable(gs.Mean),
				nullable(gs.Std),
				nullable(gs.Sum),
				nullable(gs.LogStd),
				nullable(gs.Relative),
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s stats %q: %w", a.Level, c.Name, err)
			}
		}
	}
	return nil
}

// nullable maps NaN and infinities to NULL.
func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// Finalize writes the header and maintenance tables, commits and closes the
// database
func (w *Writer) Finalize() error {
	if w.db == nil {
		return nil
	}
	now := time.Now()
	lipids := w.lipidID - 1

	var columns int
	if err := w.tx.QueryRow(`SELECT COUNT(DISTINCT ColumnName) FROM LipidValueTable`).Scan(&columns); err != nil {
		return fmt.Errorf("failed to count columns: %w", err)
	}

	// Write HeaderTable
	_, err := w.tx.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, LastModifiedDate, Description, NoofLipids, NoofColumns)
		VALUES (?, ?, ?, ?, ?, ?)
	`, schemaVersion, now.Format(headerDateFormat), now.Format(headerDateFormat), w.description, lipids, columns)
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Write MaintenanceTable
	_, err = w.tx.Exec(`
		INSERT INTO MaintenanceTable (CreationDate, NoofLipidsModified, Description)
		VALUES (?, ?, ?)
	`, now.Format(maintenanceDateFormat), lipids, w.description)
	if err != nil {
		return fmt.Errorf("failed to insert maintenance: %w", err)
	}

	w.closeStatements()

	if err := w.tx.Commit(); err != nil {
		w.db.Close()
		w.db = nil
		return fmt.Errorf("failed to commit: %w", err)
	}

	// Close database
	db := w.db
	w.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close rolls back everything written since NewWriter unless Finalize has
// already committed, then closes the database.
func (w *Writer) Close() error {
	if w.db == nil {
		return nil
	}
	w.closeStatements()
	if w.tx != nil {
		_ = w.tx.Rollback()
	}

	db := w.db
	w.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func (w *Writer) closeStatements() {
	for _, stmt := range []*sql.Stmt{w.lipidStmt, w.valueStmt, w.classStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
}
