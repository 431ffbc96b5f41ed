// Package export projects expense records into downloadable tabular
// files: one row per record, one column per field, as a spreadsheet or
// delimited text.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
)

// Format selects the output encoding.
type Format string

const (
	XLSX Format = "xlsx"
	CSV  Format = "csv"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool { return f == XLSX || f == CSV }

// ContentType returns the MIME type for download responses.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

const sheetName = "Expenses"

var header = []string{
	"id", "expense_date", "expense_time", "category", "amount",
	"location", "description", "created_by", "email", "platform",
}

// FileName derives the deterministic download name from the active month
// filter and whether every category was selected.
func FileName(month string, allSelected bool, f Format) string {
	scope := "selected"
	if allSelected {
		scope = "all"
	}
	return fmt.Sprintf("expenses_%s_%s.%s", month, scope, f)
}

// Write encodes the records in the requested format.
func Write(w io.Writer, records []core.ExpenseRecord, f Format) error {
	switch f {
	case XLSX:
		return writeXLSX(w, records)
	case CSV:
		return writeCSV(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

func writeXLSX(w io.Writer, records []core.ExpenseRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, rec := range records {
		for col, v := range recordCells(rec) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("row cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, records []core.ExpenseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		row := make([]string, len(header))
		for col, v := range recordCells(rec) {
			switch t := v.(type) {
			case string:
				row[col] = t
			case float64:
				row[col] = strconv.FormatFloat(t, 'f', -1, 64)
			default:
				row[col] = fmt.Sprint(t)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func recordCells(rec core.ExpenseRecord) []any {
	return []any{
		rec.ID.String(), rec.ExpenseDate, rec.ExpenseTime, rec.Category,
		rec.Amount.Value(), rec.Location, rec.Description,
		rec.CreatedBy, rec.Email, rec.Platform,
	}
}
