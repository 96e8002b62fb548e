package domain

import (
	"encoding/json"
	"time"
)

// Canonical column names, in schema order.
const (
	ColEventID        = "event_id"
	ColTime           = "time"
	ColLatitude       = "latitude"
	ColLongitude      = "longitude"
	ColDepthKm        = "depth_km"
	ColMagnitude      = "magnitude"
	ColMagType        = "mag_type"
	ColLocation       = "location"
	ColProvince       = "province"
	ColDistrict       = "district"
	ColCountry        = "country"
	ColNeighborhood   = "neighborhood"
	ColRMS            = "rms"
	ColIsEventUpdate  = "is_event_update"
	ColLastUpdateTime = "last_update_time"
)

// Derived column names produced by enrichment and aggregation.
const (
	ColEnergyJ    = "energy_J"
	ColEventCount = "event_count"
)

// Columns returns the canonical column names in schema order.
func Columns() []string {
	return []string{
		ColEventID, ColTime, ColLatitude, ColLongitude, ColDepthKm,
		ColMagnitude, ColMagType, ColLocation, ColProvince, ColDistrict,
		ColCountry, ColNeighborhood, ColRMS, ColIsEventUpdate, ColLastUpdateTime,
	}
}

// Istanbul is the wall-clock reference for agency timestamps. Hosts without
// tzdata fall back to the fixed +03 offset the zone has used since 2016.
var Istanbul = loadIstanbul()

func loadIstanbul() *time.Location {
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		return time.FixedZone("+03", 3*60*60)
	}
	return loc
}

// Event is one earthquake record in the canonical schema. A nil field means
// the agency omitted the value or it did not parse; null is data here, not an
// error. Extra carries source columns outside the canonical set.
type Event struct {
	EventID        *string
	Time           *time.Time
	Latitude       *float64
	Longitude      *float64
	DepthKm        *float64
	Magnitude      *float64
	MagType        *string
	Location       *string
	Province       *string
	District       *string
	Country        *string
	Neighborhood   *string
	RMS            *float64
	IsEventUpdate  *bool
	LastUpdateTime *time.Time
	Extra          map[string]any
}

// Clone returns a copy of e with its own Extra map. Pointer fields still
// reference the same values; replace them instead of writing through them.
func (e Event) Clone() Event {
	out := e
	if e.Extra != nil {
		out.Extra = make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// SetExtra returns a copy of e with the extra column set. A nil value stores
// an explicit null so exports keep the column.
func (e Event) SetExtra(key string, value any) Event {
	out := e.Clone()
	if out.Extra == nil {
		out.Extra = make(map[string]any, 1)
	}
	out.Extra[key] = value
	return out
}

// HasExtra reports whether the extra column is present, even when null.
func (e Event) HasExtra(key string) bool {
	_, ok := e.Extra[key]
	return ok
}

// ExtraFloat reads a numeric extra column. The second result is false when
// the column is absent, null, or not a number.
func (e Event) ExtraFloat(key string) (float64, bool) {
	v, ok := e.Extra[key]
	if !ok || v == nil {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Value returns the event's value for a canonical or extra column name.
// Canonical values come back dereferenced; nil means null.
func (e Event) Value(col string) any {
	switch col {
	case ColEventID:
		return strVal(e.EventID)
	case ColTime:
		return timeVal(e.Time)
	case ColLatitude:
		return floatVal(e.Latitude)
	case ColLongitude:
		return floatVal(e.Longitude)
	case ColDepthKm:
		return floatVal(e.DepthKm)
	case ColMagnitude:
		return floatVal(e.Magnitude)
	case ColMagType:
		return strVal(e.MagType)
	case ColLocation:
		return strVal(e.Location)
	case ColProvince:
		return strVal(e.Province)
	case ColDistrict:
		return strVal(e.District)
	case ColCountry:
		return strVal(e.Country)
	case ColNeighborhood:
		return strVal(e.Neighborhood)
	case ColRMS:
		return floatVal(e.RMS)
	case ColIsEventUpdate:
		return boolVal(e.IsEventUpdate)
	case ColLastUpdateTime:
		return timeVal(e.LastUpdateTime)
	default:
		return e.Extra[col]
	}
}

// MarshalJSON flattens the record into a single object: canonical columns and
// extras side by side, with explicit nulls for missing values. Timestamps use
// RFC 3339 in their stored zone.
func (e Event) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Extra)+15)
	for k, v := range e.Extra {
		m[k] = v
	}
	for _, col := range Columns() {
		m[col] = e.Value(col)
	}
	return json.Marshal(m)
}

// UnmarshalJSON routes through the canonical normalizer, so a saved record
// loads back into the shape it was written from.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = NormalizeRecord(raw, nil)
	return nil
}

func strVal(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatVal(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolVal(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func timeVal(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}
