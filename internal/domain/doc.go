// Package domain models earthquake records published by AFAD, the Turkish
// Disaster and Emergency Management Authority.
//
// # Data Source
//
// Records originate from the AFAD event API at https://deprem.afad.gov.tr
// (JSON over HTTPS). Payload key spellings drift between API revisions and
// endpoints: the same field arrives as "eventID" or "id", "lat" or
// "latitude", "type" or "magType". Normalization folds all observed
// spellings onto one canonical fifteen-column schema; see [NormalizeRecord]
// and the alias table in normalize.go.
//
// # AFAD Data Conventions
//
// Timestamps:
//
//	Naive strings such as "2025-08-01T12:04:33" are Europe/Istanbul wall
//	time and are read in that zone. Zoned strings are converted to
//	Istanbul. Istanbul has kept a fixed +03 offset since 2016, so hosts
//	without tzdata fall back to that offset.
//
// Magnitude types:
//
//	"ML" local (Richter), "Mw" moment, "Md" duration, "Mb" body-wave.
//	AFAD mixes types within a feed; filtering by type compares
//	case-insensitively because the casing also drifts ("ml", "ML").
//
// Administrative fields:
//
//	province/district/neighborhood arrive under Turkish keys in some
//	payloads ("il", "ilce", "mahalle"). Offshore events often carry only a
//	free-text location such as "Ege Denizi" with null admin fields.
//
// Null handling:
//
//	A missing, blank, or unparseable value becomes a nil field. Null is
//	data, not an error: the record always survives normalization, and
//	unparseable values are logged at Warn with the offending column and
//	value. Keys outside the canonical set ride along untouched in
//	[Event.Extra] so no upstream data is dropped.
//
// # Radiated Energy
//
// Magnitude converts to radiated energy in joules with
//
//	log10(E) = a + b*M    (defaults a=1.44, b=5.24)
//
// so one magnitude step multiplies energy by 10^b, about 1.7e5 with the
// default coefficients. See [ConvertEnergy].
//
// # Daily Aggregation
//
// Days are Istanbul calendar days: an event at 23:30 and one at 00:30 the
// next wall-clock day land in different buckets even though they are an hour
// apart. Aggregated rows carry the day at midnight in the time column and
// the bucket size in an event_count extra. See [AggregateDaily] for the
// peak-magnitude, threshold, and energy reductions and for quiet-day
// filling.
package domain
