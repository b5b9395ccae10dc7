package schema

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vibecharting/chartsafe/internal/logging"
)

// Discoverer fetches live table schemas from a database backend.
type Discoverer interface {
	DiscoverTables(ctx context.Context) ([]TableSchema, error)
}

// Refresher rebuilds the catalog snapshot on a timer and swaps it atomically.
// A failed refresh keeps the previous snapshot in place: stale-but-safe beats
// unavailable.
type Refresher struct {
	discoverer Discoverer
	denylist   Denylist
	interval   time.Duration
	current    atomic.Pointer[Catalog]
	stop       chan struct{}
	stopped    atomic.Bool
}

// NewRefresher creates a refresher; call Refresh once for the initial
// snapshot, then Start for periodic rebuilds.
func NewRefresher(d Discoverer, denylist Denylist, interval time.Duration) *Refresher {
	r := &Refresher{
		discoverer: d,
		denylist:   denylist,
		interval:   interval,
		stop:       make(chan struct{}),
	}

	// Until the first successful discovery completes, serve a baseline-only
	// snapshot so lookups never hit a nil catalog.
	r.current.Store(NewCatalog(nil, denylist))

	return r
}

// Catalog returns the current snapshot. Safe for concurrent use; callers
// hold a consistent snapshot for the lifetime of a request.
func (r *Refresher) Catalog() *Catalog {
	return r.current.Load()
}

// Refresh rebuilds the snapshot immediately. On discovery failure the
// previous snapshot stays current and the error is returned.
func (r *Refresher) Refresh(ctx context.Context) error {
	tables, err := r.discoverer.DiscoverTables(ctx)
	if err != nil {
		logging.WithError(err).Warn("schema refresh failed, keeping previous snapshot")
		return err
	}

	r.current.Store(NewCatalog(tables, r.denylist))
	logging.WithField("tables", len(tables)).Debug("schema snapshot refreshed")

	return nil
}

// Start launches the periodic refresh loop. It returns immediately; the loop
// runs until Stop is called or ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_ = r.Refresh(ctx)
			case <-r.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the refresh loop. Idempotent.
func (r *Refresher) Stop() {
	if r.stopped.CompareAndSwap(false, true) {
		close(r.stop)
	}
}
