package http

import (
	"net/http"
	"time"

	"github.com/outlayhq/outlay/internal/store"
	"github.com/outlayhq/outlay/pkg/httpx"
	"github.com/outlayhq/outlay/pkg/slogx"
)

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// LivezHandler always reports ok while the process is running.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler reports ready only when the store answers a ping.
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := st.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Error("readiness ping failed", "err", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
