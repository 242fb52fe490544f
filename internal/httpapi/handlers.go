package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neosoob/clash-test/internal/domain"
	"github.com/neosoob/clash-test/internal/stats"
)

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("write_response_failed", zap.Error(err))
	}
}

func (s *Server) handleManualTest(w http.ResponseWriter, r *http.Request) {
	s.runProbe(w, r, domain.ModeManual)
}

func (s *Server) handleAutoTestOnce(w http.ResponseWriter, r *http.Request) {
	s.runProbe(w, r, domain.ModeAuto)
}

// runProbe performs one probe and echoes the appended record. A failed
// probe is a normal 200 response; only a store write failure is an
// error to the client.
func (s *Server) runProbe(w http.ResponseWriter, r *http.Request, mode domain.Mode) {
	rec, err := s.Scheduler.RunOnce(r.Context(), mode)
	if err != nil {
		s.Logger.Error("probe_record_failed", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not record probe"})
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAutoStart(w http.ResponseWriter, r *http.Request) {
	interval := parseInterval(r.Body, s.Opts.DefaultIntervalSeconds)

	res, err := s.Scheduler.Start(r.Context(), interval, true)
	if err != nil {
		s.Logger.Error("initial_probe_record_failed", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not record probe"})
		return
	}
	if res.AlreadyRunning {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"running":          true,
			"interval_seconds": res.IntervalSeconds,
			"message":          "auto test already running",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running":          true,
		"interval_seconds": res.IntervalSeconds,
		"last_result":      res.LastResult,
	})
}

func (s *Server) handleAutoStop(w http.ResponseWriter, r *http.Request) {
	wasRunning := s.Scheduler.Stop()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running": false,
		"stopped": wasRunning,
	})
}

func (s *Server) handleAutoStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Scheduler.Status())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records, err := s.Store.ReadAll(r.Context())
	if err != nil {
		s.Logger.Error("stats_read_failed", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read log"})
		return
	}
	s.writeJSON(w, http.StatusOK, stats.Compute(records, time.Now()))
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	content, err := s.Store.ReadRaw(r.Context())
	if err != nil {
		s.Logger.Error("log_read_failed", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read log"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

// parseInterval pulls interval_seconds out of the request body,
// tolerating numbers, numeric strings, a missing field, or no body at
// all. Anything unusable falls back to the default instead of failing
// the request.
func parseInterval(body io.Reader, def int) int {
	var payload map[string]any
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return def
	}
	v, ok := payload["interval_seconds"]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return def
}
