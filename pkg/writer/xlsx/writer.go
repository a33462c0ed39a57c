// Package xlsx exports analysis results as an Excel workbook.
package xlsx

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/LipidX/pkg/core"
	"github.com/ChrisMcGann/LipidX/pkg/stats"
)

// Sheet names of the workbook.
const (
	LipidSheet    = "lipids"
	ClassSheet    = "class"
	SubclassSheet = "subclass"
)

// Workbook collects result sheets before saving.
type Workbook struct {
	f      *excelize.File
	sheets int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile()}
}

// AddTable writes t to a sheet named name, one row per lipid sorted by name.
// Numeric cells are stored as numbers.
func (wb *Workbook) AddTable(name string, t *core.Table) error {
	rows := make([][]string, 0, t.Len())
	for _, row := range t.SortedRows() {
		rows = append(rows, row.Values())
	}
	return wb.addSheet(name, t.Columns(), rows)
}

// AddAggregate writes a class or subclass statistics table to a sheet.
func (wb *Workbook) AddAggregate(name string, a *stats.Aggregate) error {
	if a == nil {
		return nil
	}
	return wb.addSheet(name, a.Header(), a.Records())
}

func (wb *Workbook) addSheet(name string, header []string, rows [][]string) error {
	if wb.sheets == 0 {
		if err := wb.f.SetSheetName(wb.f.GetSheetName(0), name); err != nil {
			return fmt.Errorf("failed to name sheet %s: %w", name, err)
		}
	} else if _, err := wb.f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	wb.sheets++

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := wb.f.SetSheetRow(name, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", name, err)
	}

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = cellValue(v)
		}
		if err := wb.f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, name, err)
		}
	}
	return nil
}

// cellValue stores finite numbers as numbers and everything else as text.
func cellValue(v string) interface{} {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return v
	}
	return f
}

// Write saves the lipid table and both statistics tables to one workbook.
func Write(path string, t *core.Table, class, subclass *stats.Aggregate) error {
	wb := NewWorkbook()
	defer wb.Close()

	if err := wb.AddTable(LipidSheet, t); err != nil {
		return err
	}
	if err := wb.AddAggregate(ClassSheet, class); err != nil {
		return err
	}
	if err := wb.AddAggregate(SubclassSheet, subclass); err != nil {
		return err
	}
	return wb.SaveAs(path)
}

// SaveAs writes the workbook to path.
func (wb *Workbook) SaveAs(path string) error {
	if err := wb.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Close releases the workbook.
func (wb *Workbook) Close() error {
	return wb.f.Close()
}
