package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
)

// Fetcher retrieves the current earthquake list from the feed.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.Earthquake, error)
}

// Publisher forwards newly observed earthquakes to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, quakes []domain.Earthquake) error
}

// Snapshot is the refresher's view of the feed at a point in time.
type Snapshot struct {
	Earthquakes []domain.Earthquake
	// FetchedAt is when Earthquakes were retrieved. Zero until the first success.
	FetchedAt time.Time
	// Err is set when the most recent refresh failed. Earthquakes then still
	// hold the last good fetch.
	Err error
}

// Refresher keeps the latest feed snapshot in memory.
type Refresher struct {
	fetcher   Fetcher
	publisher Publisher
	onDemand  bool
	logger    *slog.Logger
	metrics   *observability.Metrics

	refreshMu sync.Mutex
	published map[string]struct{}

	mu   sync.RWMutex
	snap Snapshot

	ready atomic.Bool
}

// New creates a Refresher. publisher may be nil. With onDemand set, every
// Snapshot call refreshes first.
func New(f Fetcher, p Publisher, onDemand bool, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		fetcher:   f,
		publisher: p,
		onDemand:  onDemand,
		logger:    logger,
		metrics:   metrics,
		published: make(map[string]struct{}),
	}
}

// CheckReadiness returns nil once a feed fetch has succeeded.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("earthquake feed has not been fetched yet")
	}
	return nil
}

// Refresh fetches the feed and swaps in the result. On failure the previous
// earthquakes are kept and the error is recorded on the snapshot.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	quakes, err := r.fetcher.Fetch(ctx)
	if err != nil {
		r.mu.Lock()
		r.snap.Err = err
		r.mu.Unlock()
		r.logger.Error("feed refresh failed", "error", err)
		return err
	}

	now := domain.Now()
	r.mu.Lock()
	r.snap = Snapshot{Earthquakes: quakes, FetchedAt: now}
	r.mu.Unlock()

	r.ready.Store(true)
	r.metrics.Earthquakes.Set(float64(len(quakes)))
	r.metrics.FeedLastSuccess.Set(float64(now.Unix()))
	r.logger.Info("feed refreshed", "earthquakes", len(quakes))

	r.publishNew(ctx, quakes)
	return nil
}

// Snapshot returns the current snapshot, refreshing first in on-demand mode.
// A failed on-demand refresh is reported through Snapshot.Err.
func (r *Refresher) Snapshot(ctx context.Context) Snapshot {
	if r.onDemand {
		_ = r.Refresh(ctx)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// publishNew sends earthquakes that were not delivered on an earlier refresh.
// The delivered set is trimmed to the current feed so it cannot outgrow it;
// a failed publish leaves the IDs out of the set so the next refresh retries them.
func (r *Refresher) publishNew(ctx context.Context, quakes []domain.Earthquake) {
	if r.publisher == nil {
		return
	}

	fresh := make([]domain.Earthquake, 0)
	current := make(map[string]struct{}, len(quakes))
	for _, q := range quakes {
		if q.ID == "" {
			continue
		}
		if _, ok := r.published[q.ID]; ok {
			current[q.ID] = struct{}{}
			continue
		}
		fresh = append(fresh, q)
	}

	if len(fresh) > 0 {
		if err := r.publisher.Publish(ctx, fresh); err != nil {
			r.logger.Error("publish earthquakes failed", "error", err, "count", len(fresh))
		} else {
			for _, q := range fresh {
				current[q.ID] = struct{}{}
			}
			r.metrics.EventsPublished.Add(float64(len(fresh)))
			r.logger.Debug("earthquakes published", "count", len(fresh))
		}
	}
	r.published = current
}
