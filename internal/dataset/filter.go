package dataset

import (
	"strings"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// DefaultMagTypes is the allow-list FilterByMagType applies when called with
// no arguments.
var DefaultMagTypes = []string{"Mw", "ML", "Md", "Mb"}

// FilterByDate keeps events whose timestamp lies in [start, end], inclusive
// at both ends. A nil bound leaves that side open; events without a timestamp
// are dropped.
func (d *Dataset) FilterByDate(start, end *time.Time) *Dataset {
	if d.err != nil {
		return d
	}
	if start != nil && end != nil && start.After(*end) {
		return d.fail(domain.NewConfigError("date filter: start %s after end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}

	out := make([]domain.Event, 0, len(d.events))
	for _, e := range d.events {
		if e.Time == nil {
			continue
		}
		if start != nil && e.Time.Before(*start) {
			continue
		}
		if end != nil && e.Time.After(*end) {
			continue
		}
		out = append(out, e)
	}
	return d.with(out)
}

// FilterByMagnitude keeps events with min <= magnitude <= max. Nil bounds
// are open; events without a magnitude are dropped.
func (d *Dataset) FilterByMagnitude(min, max *float64) *Dataset {
	return d.filterNumeric("magnitude", min, max, func(e domain.Event) *float64 {
		return e.Magnitude
	})
}

// FilterByDepth keeps events with min <= depth_km <= max. Nil bounds are
// open; events without a depth are dropped.
func (d *Dataset) FilterByDepth(min, max *float64) *Dataset {
	return d.filterNumeric("depth", min, max, func(e domain.Event) *float64 {
		return e.DepthKm
	})
}

// FilterByMagType keeps events whose magnitude type matches one of the given
// types, compared case-insensitively. With no arguments the default
// allow-list applies. Events without a type are dropped.
func (d *Dataset) FilterByMagType(types ...string) *Dataset {
	if d.err != nil {
		return d
	}
	allowed := types
	if len(allowed) == 0 {
		allowed = DefaultMagTypes
	}

	out := make([]domain.Event, 0, len(d.events))
	for _, e := range d.events {
		if e.MagType == nil {
			continue
		}
		for _, want := range allowed {
			if strings.EqualFold(*e.MagType, want) {
				out = append(out, e)
				break
			}
		}
	}
	return d.with(out)
}

func (d *Dataset) filterNumeric(what string, min, max *float64, value func(domain.Event) *float64) *Dataset {
	if d.err != nil {
		return d
	}
	if min != nil && max != nil && *min > *max {
		return d.fail(domain.NewConfigError("%s filter: min %v greater than max %v", what, *min, *max))
	}

	out := make([]domain.Event, 0, len(d.events))
	for _, e := range d.events {
		v := value(e)
		if v == nil {
			continue
		}
		if min != nil && *v < *min {
			continue
		}
		if max != nil && *v > *max {
			continue
		}
		out = append(out, e)
	}
	return d.with(out)
}
