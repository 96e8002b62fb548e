// Command genmock generates synthetic AFAD-style earthquake records for test
// fixtures. Records vary their key spellings and value types the way the
// live feeds do, and a small share is deliberately unusable. The normalized
// output runs through the actual domain package so it matches real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genmock -count 200 -seed 42 -start 2025-08-01 -days 3 \
//	  -out data/mock/afad_events_generated.json \
//	  -events-out data/mock/afad_events_generated_normalized.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// baseEventID seeds the sequential ids. AFAD ids grow with time, so records
// sorted by date get ascending ids.
const baseEventID = 652000

// region anchors synthetic epicenters to seismically active districts.
type region struct {
	province string
	district string
	lat      float64
	lon      float64
}

var regions = []region{
	{"Izmir", "Seferihisar", 38.18, 26.84},
	{"Kahramanmaras", "Pazarcik", 37.49, 37.30},
	{"Kutahya", "Simav", 39.09, 28.98},
	{"Tokat", "Sulusaray", 40.01, 36.09},
	{"Van", "Tusba", 38.54, 43.34},
	{"Mugla", "Datca", 36.73, 27.69},
	{"Malatya", "Puturge", 38.20, 38.87},
	{"Antalya", "Kas", 36.20, 29.64},
	{"Canakkale", "Ayvacik", 39.60, 26.40},
	{"Bingol", "Karliova", 39.30, 41.01},
	{"Hatay", "Samandag", 36.08, 35.98},
	{"Duzce", "Golyaka", 40.78, 31.00},
}

var neighborhoods = []string{"Kumluca", "Atakent", "Cumhuriyet", "Yali", "Fatih"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("count", 200, "number of records to generate")
	seed := flag.Int64("seed", 1, "random seed; the same seed reproduces the same fixture")
	start := flag.String("start", "2025-08-01", "first day of the window, 2006-01-02 (Istanbul time)")
	days := flag.Int("days", 1, "window length in days")
	out := flag.String("out", "", "output path for the raw records fixture")
	eventsOut := flag.String("events-out", "", "optional output path for the normalized events fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	day, err := time.ParseInLocation("2006-01-02", *start, domain.Istanbul)
	if err != nil {
		return fmt.Errorf("parsing -start: %w", err)
	}
	if *count < 1 || *days < 1 {
		return fmt.Errorf("-count and -days must be positive")
	}

	rng := rand.New(rand.NewSource(*seed))
	raws := generate(rng, *count, day, *days)

	if err := writeJSON(*out, raws); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *out)

	events := normalize(raws)
	if *eventsOut != "" {
		if err := writeJSON(*eventsOut, events); err != nil {
			return fmt.Errorf("writing events fixture: %w", err)
		}
		log.Printf("wrote events fixture: %s", *eventsOut)
	}

	printStats(raws, events)
	return nil
}

// generate produces count records ordered by time across the window.
func generate(rng *rand.Rand, count int, start time.Time, days int) []map[string]any {
	span := time.Duration(days) * 24 * time.Hour
	offsets := make([]time.Duration, count)
	for i := range offsets {
		offsets[i] = time.Duration(rng.Int63n(int64(span)))
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	raws := make([]map[string]any, 0, count)
	for i, off := range offsets {
		raws = append(raws, record(rng, baseEventID+i, start.Add(off)))
	}
	return raws
}

func record(rng *rand.Rand, id int, at time.Time) map[string]any {
	// A small share of the feed is junk with neither an id nor a time.
	if rng.Float64() < 0.02 {
		if rng.Float64() < 0.5 {
			return map[string]any{"note": "duplicate entry removed"}
		}
		return map[string]any{"status": "ok", "message": "no data"}
	}

	reg := regions[rng.Intn(len(regions))]
	lat := reg.lat + rng.Float64() - 0.5
	lon := reg.lon + rng.Float64() - 0.5
	depth := round1(2 + rng.ExpFloat64()*9)
	if depth > 80 {
		depth = 80
	}
	mag := round1(1.2 + rng.ExpFloat64()*0.9)
	if mag > 7.2 {
		mag = 7.2
	}
	magType := pickMagType(rng)
	loc := fmt.Sprintf("%s (%s)", reg.district, reg.province)

	switch style := rng.Float64(); {
	case style < 0.55:
		return gatewayRecord(rng, id, at, reg, loc, lat, lon, depth, mag, magType)
	case style < 0.70:
		return titleRecord(rng, id, at, loc, lat, lon, depth, mag, magType)
	case style < 0.85:
		return numericRecord(id, at, loc, lat, lon, depth, mag, magType)
	case style < 0.95:
		return turkishKeyRecord(rng, id, at, reg, loc, lat, lon, depth, mag, magType)
	default:
		return sparseRecord(rng, id, at, loc, lat, lon, depth, magType)
	}
}

// gatewayRecord mirrors the servisnet API gateway shape: every value a
// string, explicit nulls for absent fields.
func gatewayRecord(rng *rand.Rand, id int, at time.Time, reg region, loc string, lat, lon, depth, mag float64, magType string) map[string]any {
	rec := map[string]any{
		"eventID":        fmt.Sprintf("%d", id),
		"date":           at.Format("2006-01-02T15:04:05"),
		"latitude":       fmt.Sprintf("%.4f", lat),
		"longitude":      fmt.Sprintf("%.4f", lon),
		"depth":          fmt.Sprintf("%.1f", depth),
		"type":           magType,
		"magnitude":      fmt.Sprintf("%.1f", mag),
		"location":       loc,
		"country":        "Türkiye",
		"province":       reg.province,
		"district":       reg.district,
		"rms":            fmt.Sprintf("%.2f", rng.Float64()*1.5),
		"isEventUpdate":  false,
		"lastUpdateDate": nil,
	}
	if rng.Float64() < 0.30 {
		rec["neighborhood"] = neighborhoods[rng.Intn(len(neighborhoods))] + " Mahallesi"
	}
	if rng.Float64() < 0.08 {
		rec["isEventUpdate"] = true
		rec["lastUpdateDate"] = at.Add(time.Duration(1+rng.Intn(3)) * time.Hour).Format("2006-01-02T15:04:05")
	}
	if mag >= 4.5 {
		rec["faultMechanism"] = []string{"strike-slip", "normal", "thrust"}[rng.Intn(3)]
	}
	return rec
}

func titleRecord(rng *rand.Rand, id int, at time.Time, loc string, lat, lon, depth, mag float64, magType string) map[string]any {
	return map[string]any{
		"eventId": fmt.Sprintf("%d", id),
		"date":    at.Format("2006-01-02T15:04:05"),
		"title":   loc,
		"lat":     fmt.Sprintf("%.4f", lat),
		"lon":     fmt.Sprintf("%.4f", lon),
		"depth":   fmt.Sprintf("%.1f", depth),
		"magType": magType,
		"mag":     fmt.Sprintf("%.1f", mag),
		"quality": []string{"A", "B", "C"}[rng.Intn(3)],
	}
}

// numericRecord uses JSON numbers and a space-separated timestamp.
func numericRecord(id int, at time.Time, loc string, lat, lon, depth, mag float64, magType string) map[string]any {
	return map[string]any{
		"id":       id,
		"datetime": at.Format("2006-01-02 15:04:05"),
		"place":    loc,
		"lat":      math.Round(lat*10000) / 10000,
		"lng":      math.Round(lon*10000) / 10000,
		"depth_km": depth,
		"mag":      mag,
		"mag_type": magType,
	}
}

func turkishKeyRecord(rng *rand.Rand, id int, at time.Time, reg region, loc string, lat, lon, depth, mag float64, magType string) map[string]any {
	rec := map[string]any{
		"event_id":  fmt.Sprintf("%d", id),
		"eventDate": at.Format(time.RFC3339),
		"location":  loc,
		"latitude":  fmt.Sprintf("%.4f", lat),
		"longitude": fmt.Sprintf("%.4f", lon),
		"depth":     fmt.Sprintf("%.1f", depth),
		"type":      magType,
		"magnitude": fmt.Sprintf("%.1f", mag),
		"il":        reg.province,
		"ilce":      reg.district,
	}
	if rng.Float64() < 0.40 {
		rec["mahalle"] = neighborhoods[rng.Intn(len(neighborhoods))] + " Mahallesi"
	}
	if rng.Float64() < 0.25 {
		rec["stationCount"] = 5 + rng.Intn(40)
	}
	return rec
}

// sparseRecord keeps the id and time but blanks measurement fields the way
// preliminary solutions do.
func sparseRecord(rng *rand.Rand, id int, at time.Time, loc string, lat, lon, depth float64, magType string) map[string]any {
	rec := map[string]any{
		"eventID":   fmt.Sprintf("%d", id),
		"date":      at.Format("2006-01-02T15:04:05"),
		"location":  loc,
		"latitude":  fmt.Sprintf("%.4f", lat),
		"longitude": fmt.Sprintf("%.4f", lon),
		"depth":     fmt.Sprintf("%.1f", depth),
		"type":      magType,
		"magnitude": []any{"", "N/A", nil}[rng.Intn(3)],
	}
	if rng.Float64() < 0.30 {
		rec["depth"] = ""
	}
	return rec
}

func pickMagType(rng *rand.Rand) string {
	switch r := rng.Float64(); {
	case r < 0.60:
		return "ML"
	case r < 0.80:
		return "Md"
	case r < 0.95:
		return "Mw"
	default:
		return "Mb"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// normalize runs the real schema mapping and applies the pipeline's
// rejection rule: a record with neither an id nor a time is dropped.
func normalize(raws []map[string]any) []domain.Event {
	events := make([]domain.Event, 0, len(raws))
	for _, raw := range raws {
		e := domain.NormalizeRecord(raw, nil)
		if e.EventID == nil && e.Time == nil {
			continue
		}
		events = append(events, e)
	}
	return events
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(raws []map[string]any, events []domain.Event) {
	withTime, withMag, updates := 0, 0, 0
	byType := map[string]int{}
	byDay := map[string]int{}
	maxMag, maxID := 0.0, ""

	for _, e := range events {
		if e.Time != nil {
			withTime++
			byDay[e.Time.In(domain.Istanbul).Format("2006-01-02")]++
		}
		if e.Magnitude != nil {
			withMag++
			if *e.Magnitude > maxMag {
				maxMag = *e.Magnitude
				if e.EventID != nil {
					maxID = *e.EventID
				}
			}
		}
		if e.MagType != nil {
			byType[*e.MagType]++
		}
		if e.IsEventUpdate != nil && *e.IsEventUpdate {
			updates++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Raw records: %d\n", len(raws))
	fmt.Printf("Normalized events: %d (rejected %d)\n", len(events), len(raws)-len(events))
	fmt.Printf("With time: %d, with magnitude: %d, updates: %d\n", withTime, withMag, updates)

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	fmt.Printf("By mag type:")
	for _, t := range types {
		fmt.Printf(" %s=%d", t, byType[t])
	}
	fmt.Println()

	if maxID != "" {
		fmt.Printf("Max magnitude: %.1f (event %s)\n", maxMag, maxID)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	fmt.Printf("Events per day:")
	for _, d := range days {
		fmt.Printf(" %s=%d", d, byDay[d])
	}
	fmt.Println()
}
