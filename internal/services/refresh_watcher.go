package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"energymix/internal/storage"
	"energymix/pkg/contracts/events"
)

// RefreshBroadcaster is the slice of the WebSocket hub the watcher needs.
type RefreshBroadcaster interface {
	BroadcastUpdate(updateType, subtype, action string, data interface{})
}

// LoadJournal is the slice of the storage layer the watcher polls.
type LoadJournal interface {
	LatestLoad(ctx context.Context) (*storage.LoadRecord, error)
}

// RefreshWatcher notices loader runs and tells connected dashboards to
// re-query. The loader and the server share nothing but the database
// file, so the watcher polls the load journal instead of listening on
// any in-process channel.
type RefreshWatcher struct {
	journal  LoadJournal
	hub      RefreshBroadcaster
	interval time.Duration
	logger   *slog.Logger

	lastLoadID int64
}

// NewRefreshWatcher creates a watcher polling at the given interval.
func NewRefreshWatcher(journal LoadJournal, hub RefreshBroadcaster, interval time.Duration, logger *slog.Logger) *RefreshWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &RefreshWatcher{
		journal:  journal,
		hub:      hub,
		interval: interval,
		logger:   logger.With(slog.String("component", "refresh_watcher")),
	}
}

// Run polls until the context is cancelled. The first observation only
// seeds the baseline; booting next to an already-loaded store must not
// broadcast a refresh nobody needs.
func (w *RefreshWatcher) Run(ctx context.Context) error {
	w.seed(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "refresh watcher started",
		slog.Duration("interval", w.interval),
		slog.Int64("baseline_load_id", w.lastLoadID))

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "refresh watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *RefreshWatcher) seed(ctx context.Context) {
	load, err := w.journal.LatestLoad(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNoLoads) {
			w.logger.WarnContext(ctx, "could not read load journal at startup",
				slog.String("error", err.Error()))
		}
		return
	}
	w.lastLoadID = load.LoadID
}

func (w *RefreshWatcher) poll(ctx context.Context) {
	load, err := w.journal.LatestLoad(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNoLoads) {
			w.logger.WarnContext(ctx, "load journal poll failed",
				slog.String("error", err.Error()))
		}
		return
	}

	if load.LoadID == w.lastLoadID {
		return
	}
	w.lastLoadID = load.LoadID

	w.logger.InfoContext(ctx, "new load detected, broadcasting refresh",
		slog.Int64("load_id", load.LoadID),
		slog.Int("records", load.RecordCount),
		slog.Int("coercion_fallbacks", load.CoercionFallbacks))

	w.hub.BroadcastUpdate(string(events.MessageTypeDataUpdate), "", "refresh", events.DataUpdateEvent{
		LoadID:            load.LoadID,
		LoadedAt:          load.LoadedAt,
		RecordCount:       int64(load.RecordCount),
		CoercionFallbacks: int64(load.CoercionFallbacks),
	})
}
