package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of the encoded workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX encodes sheets as a workbook, one worksheet per sheet in order.
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; rename it to the first sheet.
	if err := f.SetSheetName(f.GetSheetName(0), sheets[0].Name); err != nil {
		return fmt.Errorf("failed to name sheet %s: %w", sheets[0].Name, err)
	}
	for _, s := range sheets[1:] {
		if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.Name, err)
		}
	}

	for _, s := range sheets {
		for i, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", s.Name, i+1, err)
			}
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
