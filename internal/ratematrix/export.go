package ratematrix

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

// SheetName is the single worksheet the exporter writes.
const SheetName = "Spot Rate Matrix"

const absentCell = "N/A"

// ExportXLSX renders the matrix as a spreadsheet: a lane header, one
// column per ship date, one row per carrier, then the market summary.
// Cell values keep full precision; the 0.00 number format is display
// only.
func ExportXLSX(m models.RateMatrix, origin, dest string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	set := func(col, row int, value interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, value)
	}

	if err := set(1, 1, "Lane"); err != nil {
		return nil, fmt.Errorf("failed to write lane header: %w", err)
	}
	if err := set(2, 1, fmt.Sprintf("%s -> %s", origin, dest)); err != nil {
		return nil, fmt.Errorf("failed to write lane header: %w", err)
	}

	const headerRow = 3
	if err := set(1, headerRow, "Carrier"); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	for i, date := range m.Dates {
		if err := set(2+i, headerRow, date); err != nil {
			return nil, fmt.Errorf("failed to write header row: %w", err)
		}
	}
	avgCol := 2 + len(m.Dates)
	if err := set(avgCol, headerRow, "Average"); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	row := headerRow + 1
	for _, r := range m.Rows {
		if err := set(1, row, r.Carrier); err != nil {
			return nil, fmt.Errorf("failed to write carrier row: %w", err)
		}
		for i, date := range m.Dates {
			var value interface{} = absentCell
			if cost, ok := r.Cells[date]; ok {
				value = cost
			}
			if err := set(2+i, row, value); err != nil {
				return nil, fmt.Errorf("failed to write carrier row: %w", err)
			}
		}
		var avg interface{} = absentCell
		if r.Average != nil {
			avg = *r.Average
		}
		if err := set(avgCol, row, avg); err != nil {
			return nil, fmt.Errorf("failed to write carrier row: %w", err)
		}
		row++
	}

	row++ // blank separator
	summary := []struct {
		label string
		value *float64
	}{
		{"Market Min", m.MarketMin},
		{"Market Max", m.MarketMax},
		{"Market Average", m.MarketAverage},
	}
	for _, s := range summary {
		if err := set(1, row, s.label); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
		var value interface{} = absentCell
		if s.value != nil {
			value = *s.value
		}
		if err := set(2, row, value); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
		row++
	}

	costStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return nil, fmt.Errorf("failed to create cost style: %w", err)
	}
	first, err := excelize.CoordinatesToCellName(2, headerRow+1)
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(avgCol, row-1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, first, last, costStyle); err != nil {
		return nil, fmt.Errorf("failed to style cost cells: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 22); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	return f, nil
}
