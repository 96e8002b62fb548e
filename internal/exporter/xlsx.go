package exporter

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

const xlsxSheet = "Sheet1"

// writeXLSX writes a single-sheet workbook. Timestamps are stored as RFC 3339
// strings so spreadsheet locale settings cannot reinterpret them.
func writeXLSX(path string, events []domain.Event) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	cols := ExportColumns(events)
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("map header cell: %w", err)
		}
		if err := f.SetCellValue(xlsxSheet, cell, col); err != nil {
			return fmt.Errorf("write header cell: %w", err)
		}
	}

	for r, e := range events {
		for i, col := range cols {
			v := e.Value(col)
			if v == nil {
				continue
			}
			if t, ok := v.(time.Time); ok {
				v = t.Format(time.RFC3339)
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return fmt.Errorf("map cell: %w", err)
			}
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return fmt.Errorf("write cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
