package exporter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// writeJSON writes an array of flat record objects with explicit nulls.
func writeJSON(path string, events []domain.Event) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if events == nil {
		events = []domain.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
