package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// QuakeTransformer implements Transformer using domain normalization with
// optional radiated-energy enrichment.
type QuakeTransformer struct {
	attachEnergy bool
	logger       *slog.Logger
}

// NewTransformer creates a QuakeTransformer. With attachEnergy set, every
// event with a magnitude gets an energy estimate attached.
func NewTransformer(attachEnergy bool, logger *slog.Logger) *QuakeTransformer {
	return &QuakeTransformer{
		attachEnergy: attachEnergy,
		logger:       logger,
	}
}

// Transform normalizes one raw record. Records carrying neither an event id
// nor a time are rejected; anything identifiable passes through, however
// sparse the rest of it is.
func (t *QuakeTransformer) Transform(_ context.Context, raw map[string]any) (domain.Event, error) {
	event := domain.NormalizeRecord(raw, t.logger)
	if event.EventID == nil && event.Time == nil {
		return domain.Event{}, errors.New("record has neither an event id nor a time")
	}

	if t.attachEnergy {
		event = domain.ConvertEnergy(event, domain.DefaultEnergyParams())
	}
	return event, nil
}
