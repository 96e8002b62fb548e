package domain

import (
	"sort"
	"time"
)

// Aggregation modes accepted by AggregateDaily.
const (
	ModeAllEvents         = "all_events"
	ModeDailyMaxMag       = "daily_max_mag"
	ModeDailyMagThreshold = "daily_mag_threshold"
	ModeDailyEnergySum    = "daily_energy_sum"
	ModeDailyEnergyMax    = "daily_energy_max"
)

// AggregateOptions configures AggregateDaily. The zero Mode means all_events.
type AggregateOptions struct {
	Mode string

	// Threshold is required by daily_mag_threshold and ignored elsewhere.
	Threshold *float64

	// EnergyColumn names the stored per-event energy column the energy modes
	// read. Empty means energy_J. When the column is absent from every event,
	// per-event energy is computed from magnitude with the default
	// coefficients instead.
	EnergyColumn string

	// Start and End clip the day range before bucketing, inclusive at both
	// ends after flooring to Istanbul days. FillEmptyDays pads quiet days in
	// the covered range with zero-count rows.
	Start         *time.Time
	End           *time.Time
	FillEmptyDays bool
}

// DayOf floors t to midnight of its Istanbul calendar day.
func DayOf(t time.Time) time.Time {
	t = t.In(Istanbul)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Istanbul)
}

// AggregateDaily buckets events into Istanbul calendar days and reduces each
// bucket per the configured mode. Rows come back ordered by day ascending,
// with the day at midnight in the time column and the bucket size in an
// event_count extra. Events without a timestamp never reach a bucket.
// all_events returns the input unchanged and ignores the other options.
func AggregateDaily(events []Event, opts AggregateOptions) ([]Event, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeAllEvents
	}
	if mode == ModeAllEvents {
		out := make([]Event, len(events))
		copy(out, events)
		return out, nil
	}

	var threshold float64
	switch mode {
	case ModeDailyMaxMag, ModeDailyEnergySum, ModeDailyEnergyMax:
	case ModeDailyMagThreshold:
		if opts.Threshold == nil {
			return nil, NewConfigError("aggregate mode %s requires a threshold", mode)
		}
		threshold = *opts.Threshold
	default:
		return nil, NewConfigError("unknown aggregate mode %q", mode)
	}

	buckets, days := bucketByDay(events, opts.Start, opts.End)

	energyCol := opts.EnergyColumn
	if energyCol == "" {
		energyCol = ColEnergyJ
	}

	var rows []Event
	switch mode {
	case ModeDailyMaxMag:
		rows = reduceMaxMag(buckets, days, nil)
	case ModeDailyMagThreshold:
		rows = reduceMaxMag(buckets, days, &threshold)
	case ModeDailyEnergySum, ModeDailyEnergyMax:
		rows = reduceEnergy(buckets, days, energyCol, mode == ModeDailyEnergySum)
	}

	if opts.FillEmptyDays {
		hasEnergy := mode == ModeDailyEnergySum || mode == ModeDailyEnergyMax
		for i := 0; !hasEnergy && i < len(rows); i++ {
			hasEnergy = rows[i].HasExtra(ColEnergyJ)
		}
		rows = fillEmptyDays(rows, days, opts.Start, opts.End, hasEnergy)
	}
	return rows, nil
}

// bucketByDay groups timestamped events by Istanbul day, clipped to the
// optional inclusive window, and returns the observed days ascending.
func bucketByDay(events []Event, start, end *time.Time) (map[time.Time][]Event, []time.Time) {
	buckets := make(map[time.Time][]Event)
	for _, e := range events {
		if e.Time == nil {
			continue
		}
		day := DayOf(*e.Time)
		if start != nil && day.Before(DayOf(*start)) {
			continue
		}
		if end != nil && day.After(DayOf(*end)) {
			continue
		}
		buckets[day] = append(buckets[day], e)
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return buckets, days
}

// reduceMaxMag keeps the peak-magnitude event of each day, stamped to
// midnight and annotated with the day's total event count. With a threshold,
// the peak is chosen among qualifying events only while event_count still
// counts the whole day. Ties keep the earliest qualifying event; days with no
// usable magnitude produce no row.
func reduceMaxMag(buckets map[time.Time][]Event, days []time.Time, threshold *float64) []Event {
	rows := make([]Event, 0, len(days))
	for _, day := range days {
		bucket := buckets[day]

		var peak *Event
		for i := range bucket {
			m := bucket[i].Magnitude
			if m == nil {
				continue
			}
			if threshold != nil && *m < *threshold {
				continue
			}
			if peak == nil || *m > *peak.Magnitude {
				peak = &bucket[i]
			}
		}
		if peak == nil {
			continue
		}

		row := peak.SetExtra(ColEventCount, len(bucket))
		d := day
		row.Time = &d
		rows = append(rows, row)
	}
	return rows
}

// reduceEnergy emits one row per day carrying the summed or peak radiated
// energy, the day's max magnitude, and the event count. The result column is
// always energy_J, whatever stored column supplied the values. A sum over a
// day with no usable energy is 0; a max is null.
func reduceEnergy(buckets map[time.Time][]Event, days []time.Time, energyCol string, sum bool) []Event {
	stored := false
	for _, day := range days {
		for _, e := range buckets[day] {
			if e.HasExtra(energyCol) {
				stored = true
				break
			}
		}
		if stored {
			break
		}
	}

	params := DefaultEnergyParams()
	energyOf := func(e Event) (float64, bool) {
		if stored {
			return e.ExtraFloat(energyCol)
		}
		if e.Magnitude == nil {
			return 0, false
		}
		return EnergyJoules(*e.Magnitude, params), true
	}

	rows := make([]Event, 0, len(days))
	for _, day := range days {
		bucket := buckets[day]

		var total float64
		var peak *float64
		var maxMag *float64
		for _, e := range bucket {
			if v, ok := energyOf(e); ok {
				total += v
				if peak == nil || v > *peak {
					val := v
					peak = &val
				}
			}
			if e.Magnitude != nil && (maxMag == nil || *e.Magnitude > *maxMag) {
				maxMag = e.Magnitude
			}
		}

		var energy any
		if sum {
			energy = total
		} else if peak != nil {
			energy = *peak
		}

		d := day
		row := Event{Time: &d, Magnitude: maxMag}
		row = row.SetExtra(ColEnergyJ, energy)
		row = row.SetExtra(ColEventCount, len(bucket))
		rows = append(rows, row)
	}
	return rows
}

// fillEmptyDays pads aggregated rows so every day in the covered range
// appears. Bounds default to the observed day span; with no rows at all the
// range is the single current Istanbul day. Filled rows carry a zero event
// count, zero energy when the result carries an energy column, and nulls
// elsewhere. An inverted range yields no rows.
func fillEmptyDays(rows []Event, days []time.Time, start, end *time.Time, hasEnergy bool) []Event {
	var startDay, endDay time.Time
	if len(days) > 0 {
		startDay, endDay = days[0], days[len(days)-1]
	} else {
		startDay = DayOf(Now())
		endDay = startDay
	}
	if start != nil {
		startDay = DayOf(*start)
	}
	if end != nil {
		endDay = DayOf(*end)
	}
	if endDay.Before(startDay) {
		return []Event{}
	}

	byDay := make(map[time.Time]Event, len(rows))
	for _, r := range rows {
		if r.Time != nil {
			byDay[DayOf(*r.Time)] = r
		}
	}

	out := make([]Event, 0, len(rows))
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		if row, ok := byDay[day]; ok {
			out = append(out, row)
			continue
		}
		d := day
		filler := Event{Time: &d}
		if hasEnergy {
			filler = filler.SetExtra(ColEnergyJ, 0.0)
		}
		filler = filler.SetExtra(ColEventCount, 0)
		out = append(out, filler)
	}
	return out
}
