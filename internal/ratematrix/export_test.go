package ratematrix

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

func TestExportXLSX(t *testing.T) {
	m := Build([]models.CarrierQuotes{
		quotes("Alpha", "2025-03-01", 100.0, "2025-03-03", 300.0),
		quotes("Beta", "2025-03-01", 200.0, "2025-03-02", 250.0),
	})

	f, err := ExportXLSX(m, "Los Angeles", "Chicago")
	if err != nil {
		t.Fatalf("Failed to export matrix: %v", err)
	}

	mustCell := func(cell string) string {
		v, err := f.GetCellValue(SheetName, cell)
		if err != nil {
			t.Fatalf("Failed to read cell %s: %v", cell, err)
		}
		return v
	}

	if got := mustCell("B1"); got != "Los Angeles -> Chicago" {
		t.Errorf("Expected lane header, got %q", got)
	}
	if got := mustCell("A3"); got != "Carrier" {
		t.Errorf("Expected 'Carrier' header, got %q", got)
	}
	if got := mustCell("B3"); got != "2025-03-01" {
		t.Errorf("Expected first date column 2025-03-01, got %q", got)
	}
	if got := mustCell("E3"); got != "Average" {
		t.Errorf("Expected 'Average' column, got %q", got)
	}

	if got := mustCell("A4"); got != "Alpha" {
		t.Errorf("Expected Alpha in first carrier row, got %q", got)
	}
	if got := mustCell("C4"); got != "N/A" {
		t.Errorf("Expected N/A for Alpha's absent 2025-03-02 cell, got %q", got)
	}
	alphaAvg, err := strconv.ParseFloat(mustCell("E4"), 64)
	if err != nil || alphaAvg != 200 {
		t.Errorf("Expected Alpha average 200, got %q", mustCell("E4"))
	}

	// Row 5 is Beta, row 6 blank, rows 7-9 the market summary.
	if got := mustCell("A7"); got != "Market Min" {
		t.Errorf("Expected 'Market Min' label, got %q", got)
	}
	minVal, err := strconv.ParseFloat(mustCell("B7"), 64)
	if err != nil || minVal != 100 {
		t.Errorf("Expected market min 100, got %q", mustCell("B7"))
	}
	avgVal, err := strconv.ParseFloat(mustCell("B9"), 64)
	if err != nil || avgVal != 212.5 {
		t.Errorf("Expected market average 212.5, got %q", mustCell("B9"))
	}
}

func TestExportXLSX_Roundtrip(t *testing.T) {
	m := Build([]models.CarrierQuotes{
		quotes("Alpha", "2025-03-01", 125.5),
	})

	f, err := ExportXLSX(m, "Reno", "Boise")
	if err != nil {
		t.Fatalf("Failed to export matrix: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}

	reopened, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Failed to reopen workbook: %v", err)
	}
	defer reopened.Close()

	sheets := reopened.GetSheetList()
	if len(sheets) != 1 || sheets[0] != SheetName {
		t.Errorf("Expected single sheet %q, got %v", SheetName, sheets)
	}
	rows, err := reopened.GetRows(SheetName)
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) < 4 {
		t.Fatalf("Expected at least 4 rows, got %d", len(rows))
	}
	if rows[3][0] != "Alpha" {
		t.Errorf("Expected carrier row to survive roundtrip, got %v", rows[3])
	}
}
