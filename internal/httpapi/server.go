// Package httpapi exposes the probe, scheduler and stats operations
// over HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apimw "github.com/neosoob/clash-test/internal/httpapi/middleware"
	"github.com/neosoob/clash-test/internal/logstore"
	"github.com/neosoob/clash-test/internal/scheduler"
)

// Options carries the deployment knobs the router needs.
type Options struct {
	// ReadOnly refuses every mutating operation with a fixed error
	// while still serving status, stats and log reads.
	ReadOnly bool
	// ExposeRawLog mounts GET /api/log. Off means the route does not
	// exist at all.
	ExposeRawLog bool
	// DefaultIntervalSeconds is used when a start request carries no
	// usable interval.
	DefaultIntervalSeconds int

	RateLimitPerMin int
	RateLimitBurst  int
}

type Server struct {
	Logger    *zap.Logger
	Store     logstore.Store
	Scheduler *scheduler.Scheduler
	Opts      Options
}

func NewServer(l *zap.Logger, store logstore.Store, sched *scheduler.Scheduler, opts Options) *Server {
	if opts.DefaultIntervalSeconds < scheduler.MinIntervalSeconds {
		opts.DefaultIntervalSeconds = scheduler.DefaultIntervalSeconds
	}
	return &Server{Logger: l, Store: store, Scheduler: sched, Opts: opts}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(apimw.RateLimit(s.Opts.RateLimitPerMin, s.Opts.RateLimitBurst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(apimw.ReadOnly(s.Opts.ReadOnly))
		r.Post("/api/test", s.handleManualTest)
		r.Post("/api/test/auto", s.handleAutoTestOnce)
		r.Post("/api/auto/start", s.handleAutoStart)
		r.Post("/api/auto/stop", s.handleAutoStop)
	})

	r.Get("/api/auto/status", s.handleAutoStatus)
	r.Get("/api/stats", s.handleStats)
	if s.Opts.ExposeRawLog {
		r.Get("/api/log", s.handleLog)
	}

	return r
}
