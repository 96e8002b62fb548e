// Package dataset provides a fluent, immutable view over normalized
// earthquake events for batch work: filter, enrich, aggregate, save.
//
// Every operation returns a new Dataset and leaves the receiver untouched,
// so intermediate results can be kept and branched. Configuration mistakes
// (inverted bounds, unknown modes) stick to the chain as its first error:
// later stages pass through unchanged and Err or Save surfaces the error.
package dataset

import (
	"log/slog"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/exporter"
)

// Dataset is an immutable ordered collection of canonical events.
type Dataset struct {
	events []domain.Event
	logger *slog.Logger
	err    error
}

// New wraps already normalized events. The slice is copied. A nil logger
// discards parse warnings from downstream stages.
func New(events []domain.Event, logger *slog.Logger) *Dataset {
	copied := make([]domain.Event, len(events))
	copy(copied, events)
	return &Dataset{events: copied, logger: logger}
}

// FromRecords normalizes raw agency records into a Dataset. An empty input
// yields an empty dataset that still knows the full schema.
func FromRecords(raws []map[string]any, logger *slog.Logger) *Dataset {
	return &Dataset{events: domain.NormalizeBatch(raws, logger), logger: logger}
}

// Err returns the first configuration error recorded by the chain, if any.
func (d *Dataset) Err() error {
	return d.err
}

// Len reports the number of events.
func (d *Dataset) Len() int {
	return len(d.events)
}

// Events returns a copy of the underlying events.
func (d *Dataset) Events() []domain.Event {
	out := make([]domain.Event, len(d.events))
	copy(out, d.events)
	return out
}

// Columns returns the canonical schema followed by the sorted union of extra
// columns observed across events.
func (d *Dataset) Columns() []string {
	return exporter.ExportColumns(d.events)
}

// ConvertEnergy appends the radiated-energy column using the default
// coefficients.
func (d *Dataset) ConvertEnergy() *Dataset {
	return d.ConvertEnergyWith(domain.DefaultEnergyParams())
}

// ConvertEnergyWith appends an energy column with custom coefficients or a
// custom column name.
func (d *Dataset) ConvertEnergyWith(p domain.EnergyParams) *Dataset {
	if d.err != nil {
		return d
	}
	out := make([]domain.Event, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, domain.ConvertEnergy(e, p))
	}
	return d.with(out)
}

// AggregateDaily reduces the dataset to one row per Istanbul calendar day.
// See domain.AggregateDaily for the mode semantics.
func (d *Dataset) AggregateDaily(opts domain.AggregateOptions) *Dataset {
	if d.err != nil {
		return d
	}
	rows, err := domain.AggregateDaily(d.events, opts)
	if err != nil {
		return d.fail(err)
	}
	return d.with(rows)
}

// Save writes the dataset to path as csv, json, or xlsx. A configuration
// error recorded earlier in the chain is returned instead of writing.
func (d *Dataset) Save(path, format string) error {
	if d.err != nil {
		return d.err
	}
	return exporter.Save(path, format, d.events)
}

func (d *Dataset) with(events []domain.Event) *Dataset {
	return &Dataset{events: events, logger: d.logger, err: d.err}
}

func (d *Dataset) fail(err error) *Dataset {
	return &Dataset{events: d.events, logger: d.logger, err: err}
}
