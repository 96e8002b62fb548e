package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/afad"
	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// EventFetcher is the slice of the AFAD client the poller needs.
type EventFetcher interface {
	FetchByFilter(ctx context.Context, q afad.FilterQuery) ([]map[string]any, error)
}

// Poller implements BatchExtractor by polling the AFAD filter endpoint on an
// interval and advancing a checkpoint, so each event is fetched once. All
// state belongs to the single pipeline goroutine; no locking.
type Poller struct {
	fetcher  EventFetcher
	interval time.Duration
	lookback time.Duration
	orderBy  string
	logger   *slog.Logger

	checkpoint time.Time
	lastPoll   time.Time
}

// NewPoller creates a Poller. The first poll covers the trailing lookback
// window; later polls cover everything since the previous checkpoint.
func NewPoller(fetcher EventFetcher, interval, lookback time.Duration, orderBy string, logger *slog.Logger) *Poller {
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		lookback: lookback,
		orderBy:  orderBy,
		logger:   logger,
	}
}

// ExtractBatch waits out the poll interval, then fetches the window from the
// checkpoint to now. The checkpoint only advances after a successful fetch,
// so a failed window is retried whole on the next cycle.
func (p *Poller) ExtractBatch(ctx context.Context, batchSize int) ([]map[string]any, error) {
	if !p.lastPoll.IsZero() {
		wait := p.interval - domain.Now().Sub(p.lastPoll)
		if !sleepWithContext(ctx, wait) {
			return nil, ctx.Err()
		}
	}
	p.lastPoll = domain.Now()

	end := domain.Now().In(domain.Istanbul)
	if p.checkpoint.IsZero() {
		p.checkpoint = end.Add(-p.lookback)
	}
	start := p.checkpoint
	if start.After(end) {
		return []map[string]any{}, nil
	}

	records, err := p.fetcher.FetchByFilter(ctx, afad.FilterQuery{
		Start:   start,
		End:     end,
		OrderBy: p.orderBy,
		Limit:   batchSize,
	})
	if err != nil {
		return nil, err
	}

	// The API treats start and end as inclusive at second granularity, so
	// the next window starts one second past this one.
	if batchSize > 0 && len(records) >= batchSize {
		next := p.nextCheckpoint(records, end)
		p.logger.Warn("fetch hit the batch limit",
			"limit", batchSize,
			"checkpoint", next.Format(time.RFC3339))
		p.checkpoint = next
	} else {
		p.checkpoint = end.Add(time.Second)
	}

	return records, nil
}

// nextCheckpoint picks the checkpoint after a full batch. With ascending
// order the unseen tail of the window stays ahead of the checkpoint: it
// moves to just past the newest returned event. Other orders give no usable
// boundary, so the window advances whole and later events in it are lost.
func (p *Poller) nextCheckpoint(records []map[string]any, end time.Time) time.Time {
	if p.orderBy != afad.OrderTimeAsc {
		return end.Add(time.Second)
	}
	last := domain.NormalizeRecord(records[len(records)-1], nil)
	if last.Time == nil {
		return end.Add(time.Second)
	}
	return last.Time.Add(time.Second)
}
