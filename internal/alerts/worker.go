package alerts

import (
	"context"
	"time"

	"go.uber.org/zap"

	"propertybw/internal/metrics"
	"propertybw/internal/model"
	"propertybw/internal/store"
)

// RoutingKeyNewMatches is the routing key for saved-search match events.
const RoutingKeyNewMatches = "alerts.saved-search.new-matches"

// Event is published when a saved search matches more properties than it
// did on its previous run.
type Event struct {
	DeviceID      string    `json:"device_id"`
	SearchID      string    `json:"search_id"`
	Name          string    `json:"name"`
	Query         string    `json:"query"`
	NewCount      int       `json:"new_count"`
	PreviousCount int       `json:"previous_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// searchRunner is the repository slice the worker needs.
type searchRunner interface {
	ListActive(ctx context.Context, f model.FilterState, sortBy string, limit, offset int) ([]model.Property, int, error)
}

// eventSink is the publisher slice the worker needs.
type eventSink interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Worker periodically re-runs alert-enabled saved searches.
type Worker struct {
	runner   searchRunner
	saved    *store.SavedSearchStore
	sink     eventSink
	interval time.Duration
	runLimit int
	logger   *zap.Logger
}

// NewWorker creates a worker.
func NewWorker(runner searchRunner, saved *store.SavedSearchStore, sink eventSink, interval time.Duration, runLimit int, logger *zap.Logger) *Worker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if runLimit <= 0 {
		runLimit = 200
	}
	return &Worker{
		runner:   runner,
		saved:    saved,
		sink:     sink,
		interval: interval,
		runLimit: runLimit,
		logger:   logger,
	}
}

// Run loops until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("alert worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("alert worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	searches, err := w.saved.AllWithAlerts(ctx)
	if err != nil {
		w.logger.Warn("alert sweep: listing saved searches failed", zap.Error(err))
		return
	}

	for _, ds := range searches {
		if ctx.Err() != nil {
			return
		}
		_, total, err := w.runner.ListActive(ctx, ds.Search.Filters, "newest", w.runLimit, 0)
		if err != nil {
			w.logger.Warn("alert sweep: search run failed",
				zap.String("search_id", ds.Search.ID), zap.Error(err))
			continue
		}

		if total > ds.Search.ResultCount {
			event := Event{
				DeviceID:      ds.DeviceID,
				SearchID:      ds.Search.ID,
				Name:          ds.Search.Name,
				Query:         ds.Search.Query,
				NewCount:      total,
				PreviousCount: ds.Search.ResultCount,
				OccurredAt:    time.Now().UTC(),
			}
			if err := w.sink.Publish(ctx, RoutingKeyNewMatches, event); err != nil {
				w.logger.Warn("alert publish failed",
					zap.String("search_id", ds.Search.ID), zap.Error(err))
				continue
			}
			metrics.AlertEventsTotal.Inc()
		}
		w.saved.RecordRun(ctx, ds.DeviceID, ds.Search.ID, total)
	}
}
