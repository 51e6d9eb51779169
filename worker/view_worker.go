package worker // import "github.com/yomu-app/yomu/worker"

import (
	"go.uber.org/zap"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/store"
)

// ViewRecordPool queues view events so the insert never runs on the
// request path.
type ViewRecordPool struct {
	queue chan model.ViewJob
}

// NewViewRecordPool creates a pool of background view-recording workers.
func NewViewRecordPool(store *store.Store, size int) *ViewRecordPool {
	pool := &ViewRecordPool{
		queue: make(chan model.ViewJob, 128),
	}

	for i := 0; i < size; i++ {
		worker := &ViewRecordWorker{id: i, store: store}
		go worker.Run(pool.queue)
	}

	return pool
}

func (p *ViewRecordPool) GetQueue() chan model.ViewJob {
	return p.queue
}

// Implement WorkPool interface
func (p *ViewRecordPool) Push(job model.ViewJob) {
	// Drop the event when the queue is saturated, a lost view is
	// cheaper than a blocked request.
	select {
	case p.queue <- job:
	default:
		log.Warn("View queue is full, dropping event", zap.String("slug", job.Slug))
	}
}

type ViewRecordWorker struct {
	id    int
	store *store.Store
}

// Run resolves slugs and appends view events.
func (w *ViewRecordWorker) Run(c <-chan model.ViewJob) {
	log.Debug("ViewRecordWorker is running", zap.Int("worker_id", w.id))

	for job := range c {
		log.Debug("Job received by worker",
			zap.Int("worker_id", w.id),
			zap.String("kind", string(job.Kind)),
			zap.String("slug", job.Slug))

		targetID, ok := w.resolveTarget(job)
		if !ok {
			continue
		}

		view := &model.View{
			Kind:     job.Kind,
			TargetID: targetID,
			UserID:   job.UserID,
			IPHash:   job.IPHash,
			ViewedTs: job.ViewedTs,
		}
		if err := w.store.AddView(view); err != nil {
			log.Error("Error recording view", zap.Error(err), zap.String("slug", job.Slug))
		}
	}
}

func (w *ViewRecordWorker) resolveTarget(job model.ViewJob) (int32, bool) {
	switch job.Kind {
	case model.ViewChapter:
		chapter, err := w.store.GetChapter(&model.FindChapter{Slug: &job.Slug})
		if err != nil {
			log.Error("Error resolving chapter slug", zap.Error(err), zap.String("slug", job.Slug))
			return 0, false
		}
		if chapter == nil {
			return 0, false
		}
		return chapter.ID, true
	default:
		manga, err := w.store.GetManga(&model.FindManga{Slug: &job.Slug})
		if err != nil {
			log.Error("Error resolving manga slug", zap.Error(err), zap.String("slug", job.Slug))
			return 0, false
		}
		if manga == nil {
			return 0, false
		}
		return manga.ID, true
	}
}
