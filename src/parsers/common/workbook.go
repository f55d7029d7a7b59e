package common

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CSVSheetName is the name given to the single sheet of a CSV upload.
const CSVSheetName = "csv"

var zipMagic = []byte("PK\x03\x04")

// Record is one data row keyed by its header cell text.
type Record map[string]string

// Get returns the trimmed value of column, or "" when absent.
func (r Record) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Has reports whether column exists and is non-empty.
func (r Record) Has(column string) bool {
	return r.Get(column) != ""
}

// Workbook is a read-only view of a tabular export: an xlsx workbook with
// named sheets, or a CSV file exposed as one sheet.
type Workbook struct {
	names []string
	rows  map[string][][]string
}

// OpenWorkbook reads an xlsx workbook (detected by its zip signature) or a
// CSV file from r.
func OpenWorkbook(r io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}
	if bytes.HasPrefix(data, zipMagic) {
		return openXLSX(data)
	}
	return openCSV(data)
}

func openXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{rows: make(map[string][][]string)}
	for _, name := range f.GetSheetList() {
		// Raw values keep dates as Excel serials and numbers unformatted.
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		wb.names = append(wb.names, name)
		wb.rows[name] = rows
	}
	return wb, nil
}

func openCSV(data []byte) (*Workbook, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}
	return &Workbook{
		names: []string{CSVSheetName},
		rows:  map[string][][]string{CSVSheetName: rows},
	}, nil
}

// SheetNames lists the sheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

// FindSheet returns the first sheet whose name contains fragment,
// compared case-insensitively.
func (w *Workbook) FindSheet(fragment string) (string, bool) {
	fragment = strings.ToLower(fragment)
	for _, name := range w.names {
		if strings.Contains(strings.ToLower(name), fragment) {
			return name, true
		}
	}
	return "", false
}

// FirstSheet returns the first sheet of the workbook.
func (w *Workbook) FirstSheet() (string, bool) {
	if len(w.names) == 0 {
		return "", false
	}
	return w.names[0], true
}

// Records maps the rows of sheet to Records. headerRow is the zero-based
// index of the header; data starts on the row after it. Blank rows are
// skipped.
func (w *Workbook) Records(sheet string, headerRow int) ([]Record, error) {
	rows, ok := w.rows[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSheet, sheet)
	}
	if len(rows) <= headerRow {
		return nil, fmt.Errorf("%w: sheet %q has no header at row %d", ErrEmptyInput, sheet, headerRow)
	}

	header := rows[headerRow]
	records := make([]Record, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if isBlank(row) {
			continue
		}
		rec := make(Record, len(header))
		for pos, field := range header {
			field = strings.TrimSpace(field)
			if field == "" || pos >= len(row) {
				continue
			}
			rec[field] = row[pos]
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
