package middleware // import "github.com/yomu-app/yomu/middleware"

import (
	"net/http"
	"time"

	"github.com/yomu-app/yomu/http/request"
	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/util"
	"github.com/yomu-app/yomu/worker"
)

// ViewTracker queues a view event for GET requests on a tracked route.
// The event is recorded off the request path, a failed insert never
// fails the request.
type ViewTracker struct {
	pool   worker.WorkPool
	kind   model.ViewKind
	param  string
	ipSalt string
}

func NewViewTracker(pool worker.WorkPool, kind model.ViewKind, param, ipSalt string) *ViewTracker {
	return &ViewTracker{pool: pool, kind: kind, param: param, ipSalt: ipSalt}
}

func (t *ViewTracker) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if slug := request.RouteStringParam(r, t.param); slug != "" {
				job := model.ViewJob{
					Kind:     t.kind,
					Slug:     slug,
					IPHash:   util.HashClientIP(request.ClientIP(r), t.ipSalt),
					ViewedTs: time.Now().Unix(),
				}
				if userID := request.GetUserID(r); userID != 0 {
					job.UserID = &userID
				}
				t.pool.Push(job)
			}
		}
		next.ServeHTTP(w, r)
	})
}
