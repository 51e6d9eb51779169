package worker // import "github.com/yomu-app/yomu/worker"

import (
	"time"

	"go.uber.org/zap"

	"github.com/yomu-app/yomu/config"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/store"
)

// RetentionWorker prunes expired view events on a fixed interval.
type RetentionWorker struct {
	store *store.Store
	stop  chan struct{}
}

func NewRetentionWorker(store *store.Store) *RetentionWorker {
	return &RetentionWorker{
		store: store,
		stop:  make(chan struct{}),
	}
}

// Run blocks until Stop is called. Meant to run in its own goroutine.
func (w *RetentionWorker) Run() {
	interval := time.Duration(config.Opts.RetentionSweepInterval) * time.Minute
	log.Info("Retention worker is running",
		zap.Int("retention_days", config.Opts.ViewRetentionDays),
		zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep()
		case <-w.stop:
			return
		}
	}
}

func (w *RetentionWorker) Stop() {
	close(w.stop)
}

// Sweep removes view events older than the retention window.
func (w *RetentionWorker) Sweep() {
	retentionDays := config.Opts.ViewRetentionDays
	if retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Unix()

	for _, kind := range []model.ViewKind{model.ViewManga, model.ViewChapter} {
		removed, err := w.store.PruneViewsOlderThan(kind, cutoff)
		if err != nil {
			log.Error("Error pruning views", zap.Error(err), zap.String("kind", string(kind)))
			continue
		}
		if removed > 0 {
			log.Info("Pruned expired views",
				zap.String("kind", string(kind)),
				zap.Int64("removed", removed))
		}
	}
}
