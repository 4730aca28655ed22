package batch

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/banshee-data/eda.report/internal/fsutil"
)

// ResultsSheet is the worksheet name used for XLSX exports.
const ResultsSheet = "Results"

// WriteCSV writes the header and all rows of t to w.
func WriteCSV(w io.Writer, t *ResultTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// SaveCSV writes t to path through fsys.
func SaveCSV(fsys fsutil.FileSystem, path string, t *ResultTable) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return err
	}
	return fsys.WriteFile(path, buf.Bytes(), 0o644)
}

// WriteXLSX writes t as a single-sheet workbook. Metrics are numeric cells;
// missing metrics are left blank.
func WriteXLSX(w io.Writer, t *ResultTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for col, name := range Columns() {
		if err := setCell(f, col+1, 1, name); err != nil {
			return err
		}
	}
	for i, r := range t.Records {
		row := i + 2
		if err := setCell(f, 1, row, r.Metrics.PeaksN); err != nil {
			return err
		}
		vals := r.Metrics.Values()
		col := 2
		for _, v := range vals[1:] {
			if !math.IsNaN(v) {
				if err := setCell(f, col, row, v); err != nil {
					return err
				}
			}
			col++
		}
		if err := setCell(f, col, row, r.Participant); err != nil {
			return err
		}
		if err := setCell(f, col+1, row, r.Condition); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes t as a workbook to path through fsys.
func SaveXLSX(fsys fsutil.FileSystem, path string, t *ResultTable) error {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, t); err != nil {
		return err
	}
	return fsys.WriteFile(path, buf.Bytes(), 0o644)
}

func setCell(f *excelize.File, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(ResultsSheet, cell, v); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}
