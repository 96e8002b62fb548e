// Command fetch pulls earthquake events from the AFAD catalog and writes
// them to disk, optionally filtered, enriched with radiated energy, and
// reduced to daily series.
//
// Usage:
//
//	go run ./cmd/fetch -days 7 -minmag 4 -energy -out data/week.csv
//	go run ./cmd/fetch -start 2025-08-01 -end 2025-08-02 \
//	  -aggregate daily_energy_sum -fill -out data/daily.json
//	go run ./cmd/fetch -latest -limit 100 -out data/latest.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/afad"
	"github.com/couchcryptid/quake-data-etl/internal/dataset"
	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// options collects the parsed command line. Pointer fields are nil unless
// the matching flag was given, so unset bounds stay open.
type options struct {
	baseURL string
	timeout time.Duration

	start string
	end   string
	days  int

	latest  bool
	limit   int
	window  time.Duration
	orderBy string

	minMag, maxMag     *float64
	minDepth, maxDepth *float64
	magTypes           string
	bbox               string
	radius             string

	energy    bool
	aggregate string
	threshold *float64
	fill      bool

	out    string
	format string
}

func main() {
	var o options

	flag.StringVar(&o.baseURL, "base-url", afad.DefaultBaseURL, "AFAD API base URL")
	gateway := flag.Bool("gateway", false, "use the servisnet API gateway base URL")
	flag.DurationVar(&o.timeout, "timeout", afad.DefaultTimeout, "HTTP request timeout")

	flag.StringVar(&o.start, "start", "", "window start, 2006-01-02 or 2006-01-02T15:04:05 (Istanbul time)")
	flag.StringVar(&o.end, "end", "", "window end, same layouts; empty means now")
	flag.IntVar(&o.days, "days", 0, "fetch the last N days instead of -start/-end")

	flag.BoolVar(&o.latest, "latest", false, "fetch the latest-events endpoint instead of a window")
	flag.IntVar(&o.limit, "limit", 0, "maximum events to request (0 means the server default)")
	flag.DurationVar(&o.window, "window", afad.DefaultFallbackWindow, "fallback window when -latest fails over to the filter endpoint")
	flag.StringVar(&o.orderBy, "orderby", "", "sort order: timedesc, timeasc, magnitude, or depth")

	minMag := flag.Float64("minmag", 0, "minimum magnitude")
	maxMag := flag.Float64("maxmag", 0, "maximum magnitude")
	minDepth := flag.Float64("mindepth", 0, "minimum depth in km")
	maxDepth := flag.Float64("maxdepth", 0, "maximum depth in km")
	flag.StringVar(&o.magTypes, "magtypes", "", "comma-separated magnitude types to keep, e.g. Mw,ML")
	flag.StringVar(&o.bbox, "bbox", "", "bounding box as minlat,maxlat,minlon,maxlon")
	flag.StringVar(&o.radius, "radius", "", "circular area as lat,lon,km")

	flag.BoolVar(&o.energy, "energy", false, "attach the radiated-energy column")
	flag.StringVar(&o.aggregate, "aggregate", "", "daily aggregation mode: all_events, daily_max_mag, daily_mag_threshold, daily_energy_sum, or daily_energy_max")
	threshold := flag.Float64("threshold", 0, "magnitude threshold for daily_mag_threshold")
	flag.BoolVar(&o.fill, "fill", false, "pad quiet days with zero-count rows when aggregating")

	flag.StringVar(&o.out, "out", "quake_events.csv", "output path")
	flag.StringVar(&o.format, "format", "", "output format: csv, json, or xlsx (default: from the -out extension)")

	flag.Parse()

	// Bounds only apply when their flag was actually given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "minmag":
			o.minMag = minMag
		case "maxmag":
			o.maxMag = maxMag
		case "mindepth":
			o.minDepth = minDepth
		case "maxdepth":
			o.maxDepth = maxDepth
		case "threshold":
			o.threshold = threshold
		}
	})

	if *gateway {
		o.baseURL = afad.GatewayBaseURL
	}
	if o.format == "" {
		o.format = strings.TrimPrefix(filepath.Ext(o.out), ".")
		if o.format == "" {
			o.format = "csv"
		}
	}

	if code := run(&o); code != 0 {
		os.Exit(code)
	}
}

func run(o *options) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := afad.NewClient(o.baseURL, o.timeout, nil, logger)
	ctx := context.Background()

	var (
		raws       []map[string]any
		start, end *time.Time
		err        error
	)
	if o.latest {
		raws, err = client.FetchLatest(ctx, afad.LatestOptions{
			Limit:          o.limit,
			FallbackWindow: o.window,
		})
	} else {
		start, end, err = resolveWindow(o)
		if err == nil {
			raws, err = fetchWindow(ctx, client, o, *start, *end)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: fetch: %v\n", err)
		return 1
	}

	ds := dataset.FromRecords(raws, logger)

	// The filter endpoint applies magnitude and depth bounds server-side;
	// the latest endpoint cannot, so apply them here.
	if o.latest {
		if o.minMag != nil || o.maxMag != nil {
			ds = ds.FilterByMagnitude(o.minMag, o.maxMag)
		}
		if o.minDepth != nil || o.maxDepth != nil {
			ds = ds.FilterByDepth(o.minDepth, o.maxDepth)
		}
	}
	if o.magTypes != "" {
		ds = ds.FilterByMagType(splitList(o.magTypes)...)
	}
	if o.energy {
		ds = ds.ConvertEnergy()
	}
	if o.aggregate != "" {
		ds = ds.AggregateDaily(domain.AggregateOptions{
			Mode:          o.aggregate,
			Threshold:     o.threshold,
			Start:         start,
			End:           end,
			FillEmptyDays: o.fill,
		})
	}

	if err := ds.Save(o.out, o.format); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: save: %v\n", err)
		return 1
	}

	fmt.Printf("Fetched %d records, kept %d rows\n", len(raws), ds.Len())
	fmt.Printf("Wrote %s (%s)\n", o.out, o.format)
	return 0
}

// resolveWindow turns -start/-end or -days into a concrete Istanbul window.
func resolveWindow(o *options) (*time.Time, *time.Time, error) {
	if o.days > 0 {
		if o.start != "" || o.end != "" {
			return nil, nil, fmt.Errorf("use -start/-end or -days, not both")
		}
		end := domain.Now().In(domain.Istanbul)
		start := end.AddDate(0, 0, -o.days)
		return &start, &end, nil
	}
	if o.start == "" {
		return nil, nil, fmt.Errorf("a time window is required: -start/-end, -days, or -latest")
	}

	start, err := parseWallTime(o.start)
	if err != nil {
		return nil, nil, fmt.Errorf("-start: %w", err)
	}
	end := domain.Now().In(domain.Istanbul)
	if o.end != "" {
		end, err = parseWallTime(o.end)
		if err != nil {
			return nil, nil, fmt.Errorf("-end: %w", err)
		}
	}
	return &start, &end, nil
}

func fetchWindow(ctx context.Context, client *afad.Client, o *options, start, end time.Time) ([]map[string]any, error) {
	q := afad.FilterQuery{
		Start:    start,
		End:      end,
		OrderBy:  o.orderBy,
		Limit:    o.limit,
		MinMag:   o.minMag,
		MaxMag:   o.maxMag,
		MinDepth: o.minDepth,
		MaxDepth: o.maxDepth,
	}

	if o.bbox != "" {
		vals, err := splitFloats(o.bbox, 4)
		if err != nil {
			return nil, fmt.Errorf("-bbox: %w", err)
		}
		q.BBox = &afad.BBox{MinLat: vals[0], MaxLat: vals[1], MinLon: vals[2], MaxLon: vals[3]}
	}
	if o.radius != "" {
		vals, err := splitFloats(o.radius, 3)
		if err != nil {
			return nil, fmt.Errorf("-radius: %w", err)
		}
		q.Radius = &afad.Radius{Lat: vals[0], Lon: vals[1], KM: vals[2]}
	}

	return client.FetchByFilter(ctx, q)
}

func parseWallTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, domain.Istanbul); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as 2006-01-02 or 2006-01-02T15:04:05", s)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %d", want, len(parts))
	}
	out := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}
