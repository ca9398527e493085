// Package api assembles the HTTP surface over the lifecycle manager.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"boardd/pkg/api/handlers"
	"boardd/pkg/lifecycle"
	"boardd/pkg/logger"
	"boardd/pkg/utils"
)

// Handler builds the router with all board routes, health and metrics.
func Handler(m *lifecycle.Manager) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := m.Ping(req.Context()); err != nil {
			utils.JSONError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	handlers.RegisterThreads(r, m)
	handlers.RegisterPosts(r, m)
	handlers.RegisterReactions(r, m)

	return logRequests(r)
}

// logRequests logs method, path and outcome status for every request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Debug("http_request", "method", r.Method, "path", r.URL.Path, "status", sw.status)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
