package domain

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// aliasTable maps each canonical column to the key spellings agency payloads
// use for it, canonical name first. The first key present in a record wins,
// even when its value is null. Every listed spelling is consumed, so none of
// them leak into Extra.
var aliasTable = []struct {
	canonical string
	keys      []string
}{
	{ColEventID, []string{"event_id", "eventid", "eventId", "eventID", "id"}},
	{ColTime, []string{"time", "date", "datetime", "eventDate", "lastOccurrenceTime"}},
	{ColLatitude, []string{"latitude", "lat"}},
	{ColLongitude, []string{"longitude", "lon", "lng"}},
	{ColDepthKm, []string{"depth_km", "depth"}},
	{ColMagnitude, []string{"magnitude", "mag"}},
	{ColMagType, []string{"mag_type", "type", "magType"}},
	{ColLocation, []string{"location", "title", "place"}},
	{ColProvince, []string{"province", "il"}},
	{ColDistrict, []string{"district", "ilce"}},
	{ColCountry, []string{"country"}},
	{ColNeighborhood, []string{"neighborhood", "mahalle"}},
	{ColRMS, []string{"rms"}},
	{ColIsEventUpdate, []string{"is_event_update", "iseventupdate", "isEventUpdate"}},
	{ColLastUpdateTime, []string{"last_update_time", "lastupdatedate", "lastUpdateDate", "lastUpdate"}},
}

var (
	aliasKeys   = buildAliasKeys()
	claimedKeys = buildClaimedKeys()
)

func buildAliasKeys() map[string][]string {
	keys := make(map[string][]string, len(aliasTable))
	for _, a := range aliasTable {
		keys[a.canonical] = a.keys
	}
	return keys
}

func buildClaimedKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, a := range aliasTable {
		for _, k := range a.keys {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// timeLayouts lists the timestamp spellings agency feeds produce. Layouts
// without zone information are read as Istanbul wall time.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NormalizeRecord maps one raw agency record onto the canonical schema.
// Values that fail to parse become nil and are logged at Warn level; the
// record itself always survives. Keys outside the alias table are preserved
// verbatim in Extra. A nil logger discards the warnings.
func NormalizeRecord(raw map[string]any, logger *slog.Logger) Event {
	if logger == nil {
		logger = discardLogger
	}

	var e Event
	e.EventID = asString(lookup(raw, ColEventID))

	id := ""
	if e.EventID != nil {
		id = *e.EventID
	}
	warn := func(col string, v any) {
		logger.Warn("field did not parse, keeping null",
			"column", col, "value", fmt.Sprintf("%v", v), "event_id", id)
	}

	str := func(col string) *string {
		return asString(lookup(raw, col))
	}
	num := func(col string) *float64 {
		v := lookup(raw, col)
		f, ok := asFloat(v)
		if !ok {
			warn(col, v)
		}
		return f
	}
	stamp := func(col string) *time.Time {
		v := lookup(raw, col)
		t, ok := asTime(v)
		if !ok {
			warn(col, v)
		}
		return t
	}

	e.Time = stamp(ColTime)
	e.Latitude = num(ColLatitude)
	e.Longitude = num(ColLongitude)
	e.DepthKm = num(ColDepthKm)
	e.Magnitude = num(ColMagnitude)
	e.MagType = str(ColMagType)
	e.Location = str(ColLocation)
	e.Province = str(ColProvince)
	e.District = str(ColDistrict)
	e.Country = str(ColCountry)
	e.Neighborhood = str(ColNeighborhood)
	e.RMS = num(ColRMS)
	e.LastUpdateTime = stamp(ColLastUpdateTime)

	if v := lookup(raw, ColIsEventUpdate); v != nil {
		b, ok := asBool(v)
		if !ok {
			warn(ColIsEventUpdate, v)
		}
		e.IsEventUpdate = b
	}

	for k, v := range raw {
		if _, claimed := claimedKeys[k]; claimed {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]any)
		}
		e.Extra[k] = v
	}

	return e
}

// NormalizeBatch normalizes records in order. The result is never nil, so an
// empty fetch still yields a dataset with the full schema.
func NormalizeBatch(raws []map[string]any, logger *slog.Logger) []Event {
	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		events = append(events, NormalizeRecord(raw, logger))
	}
	return events
}

// lookup returns the value for the first alias of canonical present in raw,
// or nil when none of the spellings appear.
func lookup(raw map[string]any, canonical string) any {
	for _, k := range aliasKeys[canonical] {
		if v, ok := raw[k]; ok {
			return v
		}
	}
	return nil
}

// asString renders an upstream scalar as a string. Numeric identifiers keep
// their integer form instead of picking up an exponent.
func asString(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return &x
	case json.Number:
		s := x.String()
		return &s
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(x)
		return &s
	default:
		s := fmt.Sprintf("%v", x)
		return &s
	}
}

// asFloat converts an upstream scalar to a float. ok is false only when a
// value was present but unparseable; null and blank stay clean nils.
func asFloat(v any) (f *float64, ok bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case float64:
		if math.IsNaN(x) {
			return nil, true
		}
		return &x, true
	case float32:
		y := float64(x)
		return &y, true
	case int:
		y := float64(x)
		return &y, true
	case int64:
		y := float64(x)
		return &y, true
	case json.Number:
		y, err := x.Float64()
		if err != nil {
			return nil, false
		}
		return &y, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, true
		}
		y, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return &y, true
	default:
		return nil, false
	}
}

// asBool accepts native booleans plus the 0/1 and true/false spellings the
// agency mixes into its update flag.
func asBool(v any) (b *bool, ok bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case bool:
		return &x, true
	case float64:
		switch x {
		case 0:
			return boolPtr(false), true
		case 1:
			return boolPtr(true), true
		}
		return nil, false
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "":
			return nil, true
		case "true", "1":
			return boolPtr(true), true
		case "false", "0":
			return boolPtr(false), true
		}
		return nil, false
	default:
		return nil, false
	}
}

// asTime parses an upstream timestamp. Naive values are read as Istanbul wall
// time; zoned values are converted to Istanbul.
func asTime(v any) (t *time.Time, ok bool) {
	s, isStr := v.(string)
	if !isStr {
		if v == nil {
			return nil, true
		}
		return nil, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range timeLayouts {
		parsed, err := time.ParseInLocation(layout, s, Istanbul)
		if err != nil {
			continue
		}
		parsed = parsed.In(Istanbul)
		return &parsed, true
	}
	return nil, false
}

func boolPtr(b bool) *bool {
	return &b
}
