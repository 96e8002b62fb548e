package exporter

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// writeCSV writes a UTF-8 CSV with a header row. Null cells are empty.
func writeCSV(path string, events []domain.Event) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := ExportColumns(events)
	if err := w.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(cols))
	for _, e := range events {
		for i, col := range cols {
			row[i] = formatCell(e.Value(col))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
