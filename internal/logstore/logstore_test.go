package logstore_test

import (
	"testing"

	"github.com/neosoob/clash-test/internal/domain"
	"github.com/neosoob/clash-test/internal/logstore"
	"github.com/neosoob/clash-test/internal/logstore/file"
	"github.com/neosoob/clash-test/internal/logstore/memory"
	pg "github.com/neosoob/clash-test/internal/logstore/postgres"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ logstore.Store = memory.New()
	var _ logstore.Store = file.New("connectivity_log.txt")
	var _ logstore.Store = (*pg.Store)(nil)
}

func TestFormatLine(t *testing.T) {
	lat := 4.5
	line := logstore.FormatLine(domain.Record{
		Timestamp: "2024-03-01 08:00:00",
		Mode:      domain.ModeAuto,
		Status:    domain.StatusSuccess,
		LatencyMS: &lat,
		Detail:    "HTTP 200",
	})
	if line != "2024-03-01 08:00:00\tauto\tsuccess\t4.50\tHTTP 200" {
		t.Fatalf("unexpected line: %q", line)
	}

	line = logstore.FormatLine(domain.Record{
		Timestamp: "2024-03-01 08:01:00",
		Mode:      domain.ModeManual,
		Status:    domain.StatusFailed,
		LatencyMS: nil,
		Detail:    "dial\ttcp: i/o timeout",
	})
	if line != "2024-03-01 08:01:00\tmanual\tfailed\t\tdial tcp: i/o timeout" {
		t.Fatalf("unexpected failed line: %q", line)
	}
}

func TestParseLine(t *testing.T) {
	r, ok := logstore.ParseLine("2024-03-01 08:00:00\tauto\tsuccess\t4.50\tHTTP 200")
	if !ok {
		t.Fatalf("expected line to parse")
	}
	if r.Timestamp != "2024-03-01 08:00:00" || r.Mode != domain.ModeAuto || r.Status != domain.StatusSuccess {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.LatencyMS == nil || *r.LatencyMS != 4.5 {
		t.Fatalf("unexpected latency: %v", r.LatencyMS)
	}

	if _, ok := logstore.ParseLine("too\tfew\tfields"); ok {
		t.Fatalf("short line must be rejected")
	}

	// Unknown mode falls back to manual; junk latency falls back to nil.
	r, ok = logstore.ParseLine("2024-03-01 08:02:00\tcron\tfailed\tfast\toops")
	if !ok {
		t.Fatalf("five-field line must parse")
	}
	if r.Mode != domain.ModeManual {
		t.Fatalf("unknown mode should default to manual, got %q", r.Mode)
	}
	if r.LatencyMS != nil {
		t.Fatalf("junk latency should be nil, got %v", *r.LatencyMS)
	}

	// Extra fields beyond the fifth are dropped.
	r, _ = logstore.ParseLine("2024-03-01 08:03:00\tauto\tsuccess\t1.00\tfirst\tsecond")
	if r.Detail != "first" {
		t.Fatalf("detail should be the fifth field only, got %q", r.Detail)
	}
}
