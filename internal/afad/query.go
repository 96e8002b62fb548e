package afad

import (
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// Sort orders accepted by the filter endpoint.
const (
	OrderTimeDesc  = "timedesc"
	OrderTimeAsc   = "timeasc"
	OrderMagnitude = "magnitude"
	OrderDepth     = "depth"
)

// wallTimeLayout is the zone-free stamp the API expects. The server reads it
// as Istanbul local time.
const wallTimeLayout = "2006-01-02T15:04:05"

// BBox is a latitude/longitude bounding box in degrees.
type BBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Radius is a circular search area: a center plus a distance in kilometers.
type Radius struct {
	Lat float64
	Lon float64
	KM  float64
}

// FilterQuery describes one filter request. Start and End are required and
// sent as Istanbul wall time. BBox and Radius are mutually exclusive.
type FilterQuery struct {
	Start   time.Time
	End     time.Time
	OrderBy string // empty means timedesc
	Limit   int    // 0 means the server default

	MinMag   *float64
	MaxMag   *float64
	MinDepth *float64
	MaxDepth *float64

	BBox   *BBox
	Radius *Radius

	// Extra passes raw query parameters through verbatim; it overrides
	// anything set above.
	Extra map[string]string
}

// params validates the query and renders it as URL parameters.
func (q FilterQuery) params() (url.Values, error) {
	if q.Start.IsZero() || q.End.IsZero() {
		return nil, domain.NewConfigError("filter query needs both start and end")
	}
	if q.Start.After(q.End) {
		return nil, domain.NewConfigError("filter query start %s after end %s",
			formatWallTime(q.Start), formatWallTime(q.End))
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = OrderTimeDesc
	}
	switch orderBy {
	case OrderTimeDesc, OrderTimeAsc, OrderMagnitude, OrderDepth:
	default:
		return nil, domain.NewConfigError("unknown orderby %q", orderBy)
	}

	if q.BBox != nil && q.Radius != nil {
		return nil, domain.NewConfigError("provide either bbox or radius, not both")
	}

	params := url.Values{}
	params.Set("start", formatWallTime(q.Start))
	params.Set("end", formatWallTime(q.End))
	params.Set("orderby", orderBy)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	if q.BBox != nil {
		if err := q.BBox.validate(); err != nil {
			return nil, err
		}
		params.Set("minlat", formatFloat(q.BBox.MinLat))
		params.Set("maxlat", formatFloat(q.BBox.MaxLat))
		params.Set("minlon", formatFloat(q.BBox.MinLon))
		params.Set("maxlon", formatFloat(q.BBox.MaxLon))
	}
	if q.Radius != nil {
		if err := q.Radius.validate(); err != nil {
			return nil, err
		}
		params.Set("lat", formatFloat(q.Radius.Lat))
		params.Set("lon", formatFloat(q.Radius.Lon))
		params.Set("maxrad", formatFloat(q.Radius.KM))
		params.Set("minrad", "0")
	}

	setFloat(params, "minmag", q.MinMag)
	setFloat(params, "maxmag", q.MaxMag)
	setFloat(params, "mindepth", q.MinDepth)
	setFloat(params, "maxdepth", q.MaxDepth)

	for k, v := range q.Extra {
		params.Set(k, v)
	}
	return params, nil
}

func (b BBox) validate() error {
	if b.MinLat < -90 || b.MinLat > 90 || b.MaxLat < -90 || b.MaxLat > 90 {
		return domain.NewConfigError("bbox latitudes must be within [-90, 90]")
	}
	if b.MinLon < -180 || b.MinLon > 180 || b.MaxLon < -180 || b.MaxLon > 180 {
		return domain.NewConfigError("bbox longitudes must be within [-180, 180]")
	}
	if b.MaxLat <= b.MinLat || b.MaxLon <= b.MinLon {
		return domain.NewConfigError("bbox max bounds must exceed min bounds")
	}
	return nil
}

func (r Radius) validate() error {
	if r.Lat < -90 || r.Lat > 90 || r.Lon < -180 || r.Lon > 180 {
		return domain.NewConfigError("radius center must be a valid coordinate")
	}
	if r.KM <= 0 {
		return domain.NewConfigError("radius must be positive, got %v km", r.KM)
	}
	return nil
}

func formatWallTime(t time.Time) string {
	return t.In(domain.Istanbul).Format(wallTimeLayout)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func setFloat(params url.Values, key string, v *float64) {
	if v != nil {
		params.Set(key, formatFloat(*v))
	}
}
