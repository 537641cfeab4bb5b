package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/platform/metrics"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/platform/middleware"
)

// Registrar is anything that can mount routes on the shared router; each
// vertical's handler implements it.
type Registrar interface {
	Register(r chi.Router)
}

// Health reports readiness of an infrastructure dependency.
type Health func() error

// Config carries everything the router needs wired in.
type Config struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Handlers []Registrar
	// Checks run on /healthz; any failure flips the response to 503.
	Checks map[string]Health
}

// NewRouter assembles the full middleware chain and mounts every vertical.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/healthz", handleHealth(cfg.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range cfg.Handlers {
		h.Register(r)
	}
	return r
}

func handleHealth(checks map[string]Health) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := make(map[string]string, len(checks)+1)
		for name, check := range checks {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body[name] = "down"
				continue
			}
			body[name] = "up"
		}
		if status == http.StatusOK {
			body["status"] = "ok"
		} else {
			body["status"] = "degraded"
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
