package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day1 = time.Date(2025, time.August, 1, 0, 0, 0, 0, Istanbul)
	day2 = time.Date(2025, time.August, 2, 0, 0, 0, 0, Istanbul)
	day3 = time.Date(2025, time.August, 3, 0, 0, 0, 0, Istanbul)
	day4 = time.Date(2025, time.August, 4, 0, 0, 0, 0, Istanbul)
)

func quakeAt(ts time.Time, mag *float64) Event {
	return Event{
		EventID:   strPtr(ts.Format("20060102150405")),
		Time:      timePtr(ts),
		Magnitude: mag,
	}
}

func eventCount(t *testing.T, e Event) int {
	t.Helper()
	n, ok := e.ExtraFloat(ColEventCount)
	require.True(t, ok, "row has no event_count")
	return int(n)
}

func TestAggregateDaily_AllEvents(t *testing.T) {
	events := []Event{
		quakeAt(day1.Add(3*time.Hour), floatPtr(2.2)),
		quakeAt(day2.Add(5*time.Hour), nil),
	}

	rows, err := AggregateDaily(events, AggregateOptions{Mode: ModeAllEvents, FillEmptyDays: true})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, *events[0].EventID, *rows[0].EventID)
	assert.Equal(t, *events[1].EventID, *rows[1].EventID)
	assert.False(t, rows[0].HasExtra(ColEventCount), "all_events rows are untouched")
}

func TestAggregateDaily_EmptyModeMeansAllEvents(t *testing.T) {
	rows, err := AggregateDaily([]Event{quakeAt(day1, floatPtr(3.0))}, AggregateOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAggregateDaily_UnknownMode(t *testing.T) {
	_, err := AggregateDaily(nil, AggregateOptions{Mode: "hourly"})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "hourly")
}

func TestAggregateDaily_ThresholdRequired(t *testing.T) {
	_, err := AggregateDaily(nil, AggregateOptions{Mode: ModeDailyMagThreshold})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestAggregateDaily_DailyMaxMag(t *testing.T) {
	peak := quakeAt(day1.Add(14*time.Hour), floatPtr(4.8))
	peak.Province = strPtr(testProvince)

	events := []Event{
		quakeAt(day1.Add(2*time.Hour), floatPtr(2.1)),
		peak,
		quakeAt(day1.Add(20*time.Hour), nil),
		quakeAt(day2.Add(time.Hour), floatPtr(3.3)),
	}

	rows, err := AggregateDaily(events, AggregateOptions{Mode: ModeDailyMaxMag})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	require.NotNil(t, first.Time)
	assert.True(t, first.Time.Equal(day1), "row time is the day at midnight, got %v", first.Time)
	require.NotNil(t, first.Magnitude)
	assert.Equal(t, 4.8, *first.Magnitude)
	require.NotNil(t, first.Province, "peak row keeps its full columns")
	assert.Equal(t, testProvince, *first.Province)
	assert.Equal(t, 3, eventCount(t, first), "count includes the nil-magnitude event")

	second := rows[1]
	assert.True(t, second.Time.Equal(day2))
	assert.Equal(t, 1, eventCount(t, second))
}

func TestAggregateDaily_MaxMagTieKeepsEarliest(t *testing.T) {
	first := quakeAt(day1.Add(time.Hour), floatPtr(4.0))
	second := quakeAt(day1.Add(2*time.Hour), floatPtr(4.0))

	rows, err := AggregateDaily([]Event{first, second}, AggregateOptions{Mode: ModeDailyMaxMag})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, *first.EventID, *rows[0].EventID)
}

func TestAggregateDaily_SkipsUnusableRows(t *testing.T) {
	events := []Event{
		quakeAt(day1.Add(time.Hour), nil),
		{Magnitude: floatPtr(5.0)}, // no timestamp, never bucketed
	}

	rows, err := AggregateDaily(events, AggregateOptions{Mode: ModeDailyMaxMag})
	require.NoError(t, err)
	assert.Empty(t, rows, "days without a usable magnitude emit no row")
}

func TestAggregateDaily_IstanbulDayBoundary(t *testing.T) {
	events := []Event{
		quakeAt(day1.Add(23*time.Hour+30*time.Minute), floatPtr(3.0)),
		quakeAt(day2.Add(30*time.Minute), floatPtr(4.0)),
		// 21:00 UTC on Aug 1 is already Aug 2 in Istanbul.
		quakeAt(time.Date(2025, time.August, 1, 21, 0, 0, 0, time.UTC), floatPtr(5.0)),
	}

	rows, err := AggregateDaily(events, AggregateOptions{Mode: ModeDailyMaxMag})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Time.Equal(day1))
	assert.Equal(t, 1, eventCount(t, rows[0]))
	assert.True(t, rows[1].Time.Equal(day2))
	assert.Equal(t, 2, eventCount(t, rows[1]))
	assert.Equal(t, 5.0, *rows[1].Magnitude)
}

func TestAggregateDaily_Threshold(t *testing.T) {
	events := []Event{
		quakeAt(day1.Add(time.Hour), floatPtr(3.0)),
		quakeAt(day1.Add(2*time.Hour), floatPtr(4.0)),
		quakeAt(day1.Add(3*time.Hour), floatPtr(5.1)),
		quakeAt(day2.Add(time.Hour), floatPtr(2.0)),
	}

	rows, err := AggregateDaily(events, AggregateOptions{
		Mode:      ModeDailyMagThreshold,
		Threshold: floatPtr(4.0),
	})
	require.NoError(t, err)

	require.Len(t, rows, 1, "days with no qualifying event emit no row")
	assert.True(t, rows[0].Time.Equal(day1))
	assert.Equal(t, 5.1, *rows[0].Magnitude)
	assert.Equal(t, 3, eventCount(t, rows[0]), "count covers the whole day, not just qualifiers")
}

func TestAggregateDaily_ThresholdIsInclusive(t *testing.T) {
	rows, err := AggregateDaily(
		[]Event{quakeAt(day1, floatPtr(4.0))},
		AggregateOptions{Mode: ModeDailyMagThreshold, Threshold: floatPtr(4.0)},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestAggregateDaily_EnergySum(t *testing.T) {
	p := DefaultEnergyParams()
	events := []Event{
		quakeAt(day1.Add(time.Hour), floatPtr(4.0)),
		quakeAt(day1.Add(2*time.Hour), floatPtr(5.0)),
		quakeAt(day1.Add(3*time.Hour), nil),
	}

	rows, err := AggregateDaily(events, AggregateOptions{Mode: ModeDailyEnergySum})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	got, ok := row.ExtraFloat(ColEnergyJ)
	require.True(t, ok)
	assert.InEpsilon(t, EnergyJoules(4.0, p)+EnergyJoules(5.0, p), got, 1e-12)
	require.NotNil(t, row.Magnitude)
	assert.Equal(t, 5.0, *row.Magnitude)
	assert.Equal(t, 3, eventCount(t, row))
}

func TestAggregateDaily_EnergySumPrefersStoredColumn(t *testing.T) {
	withEnergy := quakeAt(day1.Add(time.Hour), floatPtr(4.0)).SetExtra(ColEnergyJ, 10.0)
	withoutEnergy := quakeAt(day1.Add(2*time.Hour), floatPtr(5.0))

	rows, err := AggregateDaily([]Event{withEnergy, withoutEnergy}, AggregateOptions{Mode: ModeDailyEnergySum})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got, ok := rows[0].ExtraFloat(ColEnergyJ)
	require.True(t, ok)
	assert.Equal(t, 10.0, got, "stored column wins; rows without it contribute nothing")
}

func TestAggregateDaily_EnergySumEmptyDayIsZero(t *testing.T) {
	rows, err := AggregateDaily(
		[]Event{quakeAt(day1, nil)},
		AggregateOptions{Mode: ModeDailyEnergySum},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got, ok := rows[0].ExtraFloat(ColEnergyJ)
	require.True(t, ok)
	assert.Zero(t, got)
	assert.Nil(t, rows[0].Magnitude)
}

func TestAggregateDaily_EnergyMax(t *testing.T) {
	t.Run("peak energy", func(t *testing.T) {
		events := []Event{
			quakeAt(day1.Add(time.Hour), floatPtr(4.0)),
			quakeAt(day1.Add(2*time.Hour), floatPtr(5.0)),
		}

		rows, err := AggregateDaily(events, AggregateOptions{Mode: ModeDailyEnergyMax})
		require.NoError(t, err)
		require.Len(t, rows, 1)

		got, ok := rows[0].ExtraFloat(ColEnergyJ)
		require.True(t, ok)
		assert.InEpsilon(t, EnergyJoules(5.0, DefaultEnergyParams()), got, 1e-12)
	})

	t.Run("day with no usable energy is null", func(t *testing.T) {
		rows, err := AggregateDaily(
			[]Event{quakeAt(day1, nil)},
			AggregateOptions{Mode: ModeDailyEnergyMax},
		)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.True(t, rows[0].HasExtra(ColEnergyJ))
		_, ok := rows[0].ExtraFloat(ColEnergyJ)
		assert.False(t, ok)
	})
}

func TestAggregateDaily_CustomEnergyColumnStillWritesEnergyJ(t *testing.T) {
	event := quakeAt(day1, floatPtr(4.0)).SetExtra("radiated", 42.0)

	rows, err := AggregateDaily([]Event{event}, AggregateOptions{
		Mode:         ModeDailyEnergySum,
		EnergyColumn: "radiated",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got, ok := rows[0].ExtraFloat(ColEnergyJ)
	require.True(t, ok)
	assert.Equal(t, 42.0, got)
}

func TestAggregateDaily_Window(t *testing.T) {
	events := []Event{
		quakeAt(day1.Add(time.Hour), floatPtr(3.0)),
		quakeAt(day2.Add(time.Hour), floatPtr(4.0)),
		quakeAt(day3.Add(time.Hour), floatPtr(5.0)),
	}

	rows, err := AggregateDaily(events, AggregateOptions{
		Mode:  ModeDailyMaxMag,
		Start: timePtr(day2.Add(15 * time.Hour)), // floors to day2, inclusive
		End:   timePtr(day3),
	})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.True(t, rows[0].Time.Equal(day2))
	assert.True(t, rows[1].Time.Equal(day3))
}

func TestAggregateDaily_FillEmptyDays(t *testing.T) {
	events := []Event{
		quakeAt(day1.Add(time.Hour), floatPtr(4.0)),
		quakeAt(day4.Add(time.Hour), floatPtr(5.0)),
	}

	rows, err := AggregateDaily(events, AggregateOptions{
		Mode:          ModeDailyEnergySum,
		FillEmptyDays: true,
	})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	for i, want := range []time.Time{day1, day2, day3, day4} {
		assert.True(t, rows[i].Time.Equal(want), "row %d: got %v want %v", i, rows[i].Time, want)
	}

	filler := rows[1]
	assert.Equal(t, 0, eventCount(t, filler))
	got, ok := filler.ExtraFloat(ColEnergyJ)
	require.True(t, ok)
	assert.Zero(t, got)
	assert.Nil(t, filler.Magnitude)

	assert.Equal(t, 1, eventCount(t, rows[0]))
}

func TestAggregateDaily_FillHonorsExplicitRange(t *testing.T) {
	rows, err := AggregateDaily(
		[]Event{quakeAt(day2.Add(time.Hour), floatPtr(4.0))},
		AggregateOptions{
			Mode:          ModeDailyMaxMag,
			Start:         timePtr(day1),
			End:           timePtr(day3),
			FillEmptyDays: true,
		},
	)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, 0, eventCount(t, rows[0]))
	assert.Equal(t, 1, eventCount(t, rows[1]))
	assert.Equal(t, 0, eventCount(t, rows[2]))
	assert.False(t, rows[0].HasExtra(ColEnergyJ), "max-mag fill adds no energy column")
}

func TestAggregateDaily_FillEmptyInputUsesClock(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.August, 20, 7, 30, 0, 0, time.UTC)))
	defer SetClock(nil)

	rows, err := AggregateDaily(nil, AggregateOptions{
		Mode:          ModeDailyEnergySum,
		FillEmptyDays: true,
	})
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Time.Equal(time.Date(2025, time.August, 20, 0, 0, 0, 0, Istanbul)))
	assert.Equal(t, 0, eventCount(t, rows[0]))

	got, ok := rows[0].ExtraFloat(ColEnergyJ)
	require.True(t, ok, "energy modes pad energy even with no data")
	assert.Zero(t, got)
}

func TestDayOf(t *testing.T) {
	utc := time.Date(2025, time.August, 1, 22, 15, 0, 0, time.UTC)
	got := DayOf(utc)

	assert.True(t, got.Equal(day2), "22:15 UTC is past midnight in Istanbul")
	assert.Equal(t, Istanbul, got.Location())
}

func TestEnergyRatioSanity(t *testing.T) {
	// Keeps the aggregate arithmetic honest: a magnitude 6 day dwarfs a
	// magnitude 4 day by ~10^10.5 in summed energy.
	small, err := AggregateDaily([]Event{quakeAt(day1, floatPtr(4.0))}, AggregateOptions{Mode: ModeDailyEnergySum})
	require.NoError(t, err)
	large, err := AggregateDaily([]Event{quakeAt(day1, floatPtr(6.0))}, AggregateOptions{Mode: ModeDailyEnergySum})
	require.NoError(t, err)

	a, _ := small[0].ExtraFloat(ColEnergyJ)
	b, _ := large[0].ExtraFloat(ColEnergyJ)
	assert.InEpsilon(t, math.Pow(10, 2*5.24), b/a, 1e-9)
}
