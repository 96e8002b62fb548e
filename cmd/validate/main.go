// Command validate performs integrity checks across the mock data fixtures:
// the raw AFAD records fixture and, optionally, the normalized events
// fixture genmock writes next to it. It re-runs the actual domain
// normalization so the checks track real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw data/mock/afad_events_250801.json \
//	  -events data/mock/afad_events_250801_normalized.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// aliasSpellings lists every raw key the normalizer claims. None of them may
// survive into an event's Extra map.
var aliasSpellings = []string{
	"event_id", "eventid", "eventId", "eventID", "id",
	"time", "date", "datetime", "eventDate", "lastOccurrenceTime",
	"latitude", "lat", "longitude", "lon", "lng",
	"depth_km", "depth", "magnitude", "mag",
	"mag_type", "type", "magType",
	"location", "title", "place",
	"province", "il", "district", "ilce", "country",
	"neighborhood", "mahalle", "rms",
	"is_event_update", "iseventupdate", "isEventUpdate",
	"last_update_time", "lastupdatedate", "lastUpdateDate", "lastUpdate",
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawPath := flag.String("raw", "data/mock/afad_events_250801.json", "path to the raw AFAD records fixture")
	eventsPath := flag.String("events", "", "optional path to the normalized events fixture")
	flag.Parse()

	if code := run(*rawPath, *eventsPath); code != 0 {
		os.Exit(code)
	}
}

func run(rawPath, eventsPath string) int {
	fmt.Println("=== Quake Fixture Integrity Validation ===")
	fmt.Println()

	raws, err := loadJSON[map[string]any](rawPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw fixture: %v\n", err)
		return 1
	}

	// Re-run the real normalization, keeping only usable records the way the
	// pipeline does.
	all := make([]domain.Event, 0, len(raws))
	usable := make([]domain.Event, 0, len(raws))
	for _, raw := range raws {
		e := domain.NormalizeRecord(raw, nil)
		all = append(all, e)
		if e.EventID != nil || e.Time != nil {
			usable = append(usable, e)
		}
	}

	phases := []*phase{
		validateRawShape(raws),
		validateNormalization(raws, all),
		validateDailyBuckets(usable),
	}

	if eventsPath != "" {
		fixture, err := loadJSON[domain.Event](eventsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load events fixture: %v\n", err)
			return 1
		}
		phases = append(phases, validateEventsParity(usable, fixture))
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d normalized, %d rejected\n",
		len(raws), len(usable), len(raws)-len(usable))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Raw Shape ──
// Validates the raw fixture before normalization touches it.

func validateRawShape(raws []map[string]any) *phase {
	p := &phase{name: "Phase 1: Raw Shape (fixture file)"}

	if len(raws) == 0 {
		p.errorf("fixture is empty")
		return p
	}

	seen := map[string]int{}
	for i, rec := range raws {
		if len(rec) == 0 {
			p.errorf("record %d: empty object", i)
			continue
		}
		if id := rawID(rec); id != "" {
			if prev, dup := seen[id]; dup {
				p.errorf("record %d: duplicate id %q (first at %d)", i, id, prev)
			} else {
				seen[id] = i
			}
		}
	}
	return p
}

// ── Phase 2: Normalization ──
// Validates that every record maps onto the canonical schema losslessly.

func validateNormalization(raws []map[string]any, all []domain.Event) *phase {
	p := &phase{name: "Phase 2: Normalization (canonical schema)"}

	usable := 0
	for i, e := range all {
		if e.EventID != nil || e.Time != nil {
			usable++
		}

		if id := rawID(raws[i]); id != "" {
			if e.EventID == nil {
				p.errorf("record %d: id %q lost in normalization", i, id)
			} else if *e.EventID != id {
				p.errorf("record %d: id changed: raw=%q, normalized=%q", i, id, *e.EventID)
			}
		}

		if e.Time != nil && e.Time.Location() != domain.Istanbul {
			p.errorf("record %d: time not anchored to Istanbul: %s", i, e.Time.Location())
		}
		if e.Latitude != nil && (*e.Latitude < -90 || *e.Latitude > 90) {
			p.errorf("record %d: latitude %g out of range", i, *e.Latitude)
		}
		if e.Longitude != nil && (*e.Longitude < -180 || *e.Longitude > 180) {
			p.errorf("record %d: longitude %g out of range", i, *e.Longitude)
		}

		for _, key := range aliasSpellings {
			if _, leaked := e.Extra[key]; leaked {
				p.errorf("record %d: claimed key %q leaked into extras", i, key)
			}
		}
	}

	if usable == 0 {
		p.errorf("no usable records: every record lacks both an id and a time")
	}
	return p
}

// ── Phase 3: Daily Buckets ──
// Validates the Istanbul day bucketing over the normalized events. The
// energy-sum mode emits a row for every day that has timestamped events, so
// the event counts must add up exactly.

func validateDailyBuckets(events []domain.Event) *phase {
	p := &phase{name: "Phase 3: Daily Buckets (Istanbul days)"}

	withTime := 0
	for i := range events {
		if events[i].Time != nil {
			withTime++
		}
	}

	rows, err := domain.AggregateDaily(events, domain.AggregateOptions{Mode: domain.ModeDailyEnergySum})
	if err != nil {
		p.errorf("aggregate: %v", err)
		return p
	}

	counted := 0
	var prev *time.Time
	for i, row := range rows {
		if row.Time == nil {
			p.errorf("row %d: missing day timestamp", i)
			continue
		}
		if !row.Time.Equal(domain.DayOf(*row.Time)) {
			p.errorf("row %d: day %s is not Istanbul midnight", i, row.Time)
		}
		if prev != nil && !prev.Before(*row.Time) {
			p.errorf("row %d: days out of order: %s after %s", i, prev, row.Time)
		}
		prev = row.Time

		if !row.HasExtra(domain.ColEnergyJ) {
			p.errorf("row %d: missing energy column", i)
		}
		n, ok := row.ExtraFloat(domain.ColEventCount)
		if !ok || n < 1 {
			p.errorf("row %d: bad event_count", i)
			continue
		}
		counted += int(n)
	}

	if counted != withTime {
		p.errorf("event counts: %d bucketed, %d events carry a time", counted, withTime)
	}
	return p
}

// ── Phase 4: Events Parity ──
// Validates a stored normalized fixture against a fresh normalization run.

func validateEventsParity(fresh, fixture []domain.Event) *phase {
	p := &phase{name: "Phase 4: Events Parity (stored fixture)"}

	if len(fresh) != len(fixture) {
		p.errorf("count: fresh normalization has %d events, fixture has %d", len(fresh), len(fixture))
		return p
	}

	for i := range fresh {
		if !ptrStrEq(fresh[i].EventID, fixture[i].EventID) {
			p.errorf("event %d: id: fresh=%s, fixture=%s", i, ptrStr(fresh[i].EventID), ptrStr(fixture[i].EventID))
		}
		if !ptrFloatEq(fresh[i].Magnitude, fixture[i].Magnitude) {
			p.errorf("event %d (%s): magnitude mismatch", i, ptrStr(fresh[i].EventID))
		}
		if !ptrTimeEq(fresh[i].Time, fixture[i].Time) {
			p.errorf("event %d (%s): time mismatch", i, ptrStr(fresh[i].EventID))
		}
	}
	return p
}

// ── Helpers ──

// rawID extracts the event id from a raw record using the same alias
// precedence the normalizer applies.
func rawID(rec map[string]any) string {
	for _, k := range []string{"event_id", "eventid", "eventId", "eventID", "id"} {
		if v, ok := rec[k]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptrStrEq(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func ptrFloatEq(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEq(*a, *b)
}

func ptrTimeEq(a, b *time.Time) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}

func ptrStr(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
