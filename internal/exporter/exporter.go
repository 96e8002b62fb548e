// Package exporter writes event tables to disk in the supported formats.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// Formats accepted by Save.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Save writes events to path in the given format, creating parent
// directories as needed. An unknown format is a configuration error.
func Save(path, format string, events []domain.Event) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return writeCSV(path, events)
	case FormatJSON:
		return writeJSON(path, events)
	case FormatXLSX:
		return writeXLSX(path, events)
	default:
		return domain.NewConfigError("save format must be csv, json, or xlsx, got %q", format)
	}
}

// ExportColumns returns the header row for events: the canonical schema
// followed by the sorted union of extra columns observed across events.
func ExportColumns(events []domain.Event) []string {
	extras := make(map[string]struct{})
	for _, e := range events {
		for k := range e.Extra {
			extras[k] = struct{}{}
		}
	}

	names := make([]string, 0, len(extras))
	for k := range extras {
		names = append(names, k)
	}
	sort.Strings(names)
	return append(domain.Columns(), names...)
}

// formatCell renders one value for text formats. Null is the empty string;
// timestamps use RFC 3339.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
