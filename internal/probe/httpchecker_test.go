package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/neosoob/clash-test/internal/domain"
)

func TestHTTPChecker_Status200(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if out.Status != domain.StatusSuccess {
		t.Fatalf("want success, got %+v", out)
	}
	if out.Detail != "HTTP 200" {
		t.Fatalf("want detail HTTP 200, got %q", out.Detail)
	}
	if out.LatencyMS == nil || *out.LatencyMS < 0 {
		t.Fatalf("latency should be a non-negative value, got %v", out.LatencyMS)
	}
}

func TestHTTPChecker_Status204(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if out.Status != domain.StatusSuccess {
		t.Fatalf("204 should count as reachable, got %+v", out)
	}
	if out.Detail != "HTTP 204" {
		t.Fatalf("want detail HTTP 204, got %q", out.Detail)
	}
}

func TestHTTPChecker_Status500KeepsLatency(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if out.Status != domain.StatusFailed {
		t.Fatalf("want failure, got %+v", out)
	}
	if out.Detail != "HTTP 500" {
		t.Fatalf("want detail HTTP 500, got %q", out.Detail)
	}
	if out.LatencyMS == nil {
		t.Fatalf("completed exchange must keep its latency")
	}
}

func TestHTTPChecker_TimeoutHasNoLatency(t *testing.T) {
	// Server sleeps longer than the client timeout.
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(50 * time.Millisecond)
	out := chk.Check(context.Background(), s.URL)
	if out.Status != domain.StatusFailed {
		t.Fatalf("want failure due to timeout, got %+v", out)
	}
	if out.LatencyMS != nil {
		t.Fatalf("incomplete exchange must not report latency, got %v", *out.LatencyMS)
	}
	if out.Detail == "" {
		t.Fatalf("want non-empty error detail")
	}
}

func TestHTTPChecker_ConnectionRefused(t *testing.T) {
	// Grab a port and close the listener so nothing answers.
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := s.URL
	s.Close()

	chk := NewHTTPChecker(time.Second)
	out := chk.Check(context.Background(), url)
	if out.Status != domain.StatusFailed || out.LatencyMS != nil {
		t.Fatalf("refused connection should fail without latency, got %+v", out)
	}
}
