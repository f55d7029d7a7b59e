package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// RowWriter accepts report tables one sheet at a time.
type RowWriter interface {
	WriteRows(sheet string, rows [][]interface{}) error
}

// Workbook is an xlsx file assembled sheet by sheet.
type Workbook struct {
	f      *excelize.File
	sheets int
}

func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile()}
}

// WriteRows writes rows into a new sheet. The first sheet written takes
// over the default sheet of a fresh file.
func (w *Workbook) WriteRows(sheet string, rows [][]interface{}) error {
	if w.sheets == 0 {
		if err := w.f.SetSheetName(w.f.GetSheetName(0), sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	} else if _, err := w.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}
	w.sheets++

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet, err)
		}
	}
	return nil
}

// WriteTo streams the workbook as xlsx.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.f.WriteTo(out)
}

func (w *Workbook) Close() error {
	return w.f.Close()
}
