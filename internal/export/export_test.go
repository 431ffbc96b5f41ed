package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
)

func records() []core.ExpenseRecord {
	return []core.ExpenseRecord{
		{ID: "1", ExpenseDate: "2024-01-01", Category: "Ăn uống", Amount: 100000, Location: "Vinmart", CreatedBy: "Duong", Email: "d@example.com", Platform: "web"},
		{ID: "2", ExpenseDate: "2024-01-02", Category: "Đi lại", Amount: 20000.5},
	}
}

func TestFileName(t *testing.T) {
	cases := []struct {
		month string
		all   bool
		f     Format
		want  string
	}{
		{"2024-01", true, XLSX, "expenses_2024-01_all.xlsx"},
		{"2024-01", false, XLSX, "expenses_2024-01_selected.xlsx"},
		{"2024-02", true, CSV, "expenses_2024-02_all.csv"},
		{"2024-02", false, CSV, "expenses_2024-02_selected.csv"},
	}
	for _, tc := range cases {
		if got := FileName(tc.month, tc.all, tc.f); got != tc.want {
			t.Errorf("FileName(%q, %v, %s) = %q, want %q", tc.month, tc.all, tc.f, got, tc.want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, records(), CSV); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "id" || rows[0][4] != "amount" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][3] != "Ăn uống" || rows[1][4] != "100000" {
		t.Fatalf("row 1 = %v", rows[1])
	}
	if rows[2][4] != "20000.5" {
		t.Fatalf("row 2 amount = %q", rows[2][4])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, records(), XLSX); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Expenses")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1][1] != "2024-01-01" || rows[1][3] != "Ăn uống" {
		t.Fatalf("row 1 = %v", rows[1])
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, CSV); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, _ := csv.NewReader(&buf).ReadAll()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, nil, Format("pdf")); err == nil {
		t.Fatal("expected error")
	}
	if Format("pdf").Valid() {
		t.Fatal("pdf must not be valid")
	}
}
