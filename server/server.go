package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	v1 "github.com/yomu-app/yomu/api/v1"
	"github.com/yomu-app/yomu/config"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/store"
	"github.com/yomu-app/yomu/version"
	"github.com/yomu-app/yomu/worker"
)

// StartServer starts the HTTP server in its own goroutine and returns it
// so the caller can shut it down.
func StartServer(store *store.Store, viewPool worker.WorkPool) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Opts.Host, config.Opts.Port),
		Handler:      setupHandler(store, viewPool),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	return server
}

// Shutdown drains in-flight requests, bounded by the given timeout.
func Shutdown(server *http.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
}

func setupHandler(store *store.Store, viewPool worker.WorkPool) http.Handler {
	router := mux.NewRouter()

	v1.Server(router, store, viewPool)

	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(); err != nil {
			http.Error(w, "Database Connection Error", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}).Name("healthcheck")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(version.GetCurrentVersion()))
	}).Name("version")

	return router
}
