// Package scheduler owns the background probe loop: at most one loop
// runs at a time, started and stopped through the API.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/neosoob/clash-test/internal/domain"
	"github.com/neosoob/clash-test/internal/logstore"
	"github.com/neosoob/clash-test/internal/metrics"
	"github.com/neosoob/clash-test/internal/probe"
)

const (
	DefaultIntervalSeconds = 30
	MinIntervalSeconds     = 1
	// MaxIntervalSeconds caps the loop period at one year. The cap
	// keeps the seconds-to-time.Duration conversion far away from
	// int64 overflow, which would panic the ticker.
	MaxIntervalSeconds = 365 * 24 * 60 * 60
)

// Status is a point-in-time read of the loop state. IntervalSeconds
// keeps its last configured value even while stopped.
type Status struct {
	Running         bool `json:"running"`
	IntervalSeconds int  `json:"interval_seconds"`
}

// StartResult reports what Start did. LastResult is set only when a
// fresh loop was launched with an initial probe.
type StartResult struct {
	AlreadyRunning  bool
	IntervalSeconds int
	LastResult      *domain.Record
}

// Scheduler runs probes against one target, either on demand through
// RunOnce or periodically through the loop controlled by Start/Stop.
// One mutex guards the running flag, the interval and loop creation,
// so concurrent Start calls can never race two loops into existence.
type Scheduler struct {
	log     *zap.Logger
	checker probe.Checker
	store   logstore.Store
	target  string

	mu       sync.Mutex
	running  bool
	interval int
	stopCh   chan struct{}
}

func New(log *zap.Logger, checker probe.Checker, store logstore.Store, target string, defaultIntervalSeconds int) *Scheduler {
	if defaultIntervalSeconds < MinIntervalSeconds {
		defaultIntervalSeconds = DefaultIntervalSeconds
	}
	if defaultIntervalSeconds > MaxIntervalSeconds {
		defaultIntervalSeconds = MaxIntervalSeconds
	}
	return &Scheduler{
		log:      log,
		checker:  checker,
		store:    store,
		target:   target,
		interval: defaultIntervalSeconds,
	}
}

// RunOnce performs one probe and appends the outcome. Both the manual
// API path and the background loop funnel through here; a store write
// failure is the only error it can return.
func (s *Scheduler) RunOnce(ctx context.Context, mode domain.Mode) (domain.Record, error) {
	out := s.checker.Check(ctx, s.target)
	ts, err := s.store.Append(ctx, mode, out.Status, out.LatencyMS, out.Detail)
	if err != nil {
		return domain.Record{}, err
	}
	metrics.ObserveProbe(mode, out.Status, out.LatencyMS)

	fields := []zap.Field{
		zap.String("mode", string(mode)),
		zap.String("status", string(out.Status)),
		zap.String("detail", out.Detail),
	}
	if out.LatencyMS != nil {
		fields = append(fields, zap.Float64("latency_ms", *out.LatencyMS))
	}
	s.log.Info("probe_logged", fields...)

	return domain.Record{
		Timestamp: ts,
		Mode:      mode,
		Status:    out.Status,
		LatencyMS: out.LatencyMS,
		Detail:    out.Detail,
	}, nil
}

// Start launches the repeating loop unless one is already active.
// The interval is clamped into [MinIntervalSeconds, MaxIntervalSeconds].
// When a loop is already running the call is a no-op: the existing
// loop keeps its interval and no probe is made. Otherwise a fresh loop
// starts and, when runInitialProbe is set, one immediate auto probe
// runs synchronously before returning. The returned error only ever
// reflects that initial probe's store write; the loop itself is
// already up.
func (s *Scheduler) Start(ctx context.Context, intervalSeconds int, runInitialProbe bool) (StartResult, error) {
	if intervalSeconds < MinIntervalSeconds {
		intervalSeconds = MinIntervalSeconds
	}
	if intervalSeconds > MaxIntervalSeconds {
		intervalSeconds = MaxIntervalSeconds
	}

	s.mu.Lock()
	if s.running {
		iv := s.interval
		s.mu.Unlock()
		s.log.Info("auto_loop_already_running", zap.Int("interval_seconds", iv))
		return StartResult{AlreadyRunning: true, IntervalSeconds: iv}, nil
	}
	s.running = true
	s.interval = intervalSeconds
	s.stopCh = make(chan struct{})
	// The gauge write shares the mutex with the state flip so a racing
	// Stop cannot end up overwritten by a stale value.
	metrics.SetSchedulerRunning(true)
	go s.loop(time.Duration(intervalSeconds)*time.Second, s.stopCh)
	s.mu.Unlock()

	s.log.Info("auto_loop_started", zap.Int("interval_seconds", intervalSeconds))

	res := StartResult{IntervalSeconds: intervalSeconds}
	if runInitialProbe {
		rec, err := s.RunOnce(ctx, domain.ModeAuto)
		if err != nil {
			return res, err
		}
		res.LastResult = &rec
	}
	return res, nil
}

// Stop signals the loop to exit at its next wake check and reports
// whether a loop was active. It does not wait for an in-flight probe.
// Safe to call repeatedly.
func (s *Scheduler) Stop() (wasRunning bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	close(s.stopCh)
	s.stopCh = nil
	s.running = false
	metrics.SetSchedulerRunning(false)
	s.log.Info("auto_loop_stop_requested")
	return true
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Running: s.running, IntervalSeconds: s.interval}
}

func (s *Scheduler) loop(interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			s.log.Info("auto_loop_stopped")
			return
		case <-t.C:
			// A stop that raced the tick wins; never probe after stop.
			select {
			case <-stop:
				s.log.Info("auto_loop_stopped")
				return
			default:
			}
			if _, err := s.RunOnce(context.Background(), domain.ModeAuto); err != nil {
				s.log.Warn("auto_probe_append_failed", zap.Error(err))
			}
		}
	}
}
