package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Timesheet"

// WriteXLSX renders the grid as a one-sheet spreadsheet: date headers in
// row 1, bucket labels in column A, out-of-range cells shaded.
func (g *Grid) WriteXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	shaded, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating shade style: %w", err)
	}

	for col, day := range g.Dates {
		name, err := excelize.CoordinatesToCellName(col+2, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, name, day.Format("2006-01-02")); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	for row, label := range g.Labels {
		name, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return nil, fmt.Errorf("label cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, name, label); err != nil {
			return nil, fmt.Errorf("writing label: %w", err)
		}

		for col := range g.Dates {
			name, err := excelize.CoordinatesToCellName(col+2, row+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			cell := g.Cells[row][col]
			if cell.Category != "" {
				if err := f.SetCellValue(sheetName, name, cell.Category); err != nil {
					return nil, fmt.Errorf("writing cell: %w", err)
				}
			}
			if cell.OutOfRange {
				if err := f.SetCellStyle(sheetName, name, name, shaded); err != nil {
					return nil, fmt.Errorf("shading cell: %w", err)
				}
			}
		}
	}

	// Cosmetic only.
	_ = f.SetColWidth(sheetName, "A", "A", 12)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename encodes the queried time range into the report file name.
func Filename(t0, t1 time.Time) string {
	const layout = "20060102T150405"
	return fmt.Sprintf("ts-stats-%s-%s.xlsx", t0.Format(layout), t1.Format(layout))
}
