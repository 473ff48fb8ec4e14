// Package httpserver exposes the health check and Prometheus metrics.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/version"
)

const pingTimeout = 5 * time.Second

// Pinger checks the database connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health is the /healthz response body.
type Health struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	DB        struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
	} `json:"db"`
}

// NewRouter returns the router serving /healthz and /metrics.
func NewRouter(db Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthCheck(db))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func healthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		health := Health{Status: "ok", Version: version.Current(), Timestamp: time.Now().UTC()}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Health check database ping failed", "error", err)
			health.Status = "degraded"
			health.DB.Status = "error"
			health.DB.Message = "Database ping failed"
			status = http.StatusServiceUnavailable
		} else {
			health.DB.Status = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(health); err != nil {
			logger.Error("Failed to encode health response", "error", err)
		}
	}
}
