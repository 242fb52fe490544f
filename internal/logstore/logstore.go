// Package logstore defines the append-only probe log port and the
// tab-separated line format shared by its adapters.
package logstore

import (
	"context"
	"strings"

	"github.com/neosoob/clash-test/internal/domain"
)

// Header is the fixed first line of the persisted store.
const Header = "timestamp\tmode\tstatus\tlatency_ms\tdetail"

// Store is the port for the probe log; adapters exist for the flat
// file, memory and postgres.
type Store interface {
	// Append stamps the current local time, sanitizes detail and writes
	// one record to the end of the store. It returns the timestamp string
	// used, so callers can echo it to clients. Safe for concurrent use.
	Append(ctx context.Context, mode domain.Mode, status domain.Status, latencyMS *float64, detail string) (string, error)

	// ReadAll replays every stored record in append order. An absent
	// store yields an empty slice, not an error.
	ReadAll(ctx context.Context) ([]domain.Record, error)

	// ReadRaw returns the literal store content for diagnostic export;
	// empty string if the store holds no records yet.
	ReadRaw(ctx context.Context) (string, error)
}

// FormatLine renders one record as a store line, without the trailing
// newline. Detail is sanitized so the line stays single-line and
// five-field.
func FormatLine(r domain.Record) string {
	return strings.Join([]string{
		r.Timestamp,
		string(r.Mode),
		string(r.Status),
		domain.FormatLatency(r.LatencyMS),
		domain.SanitizeDetail(r.Detail),
	}, "\t")
}

// ParseLine splits one store line on tabs. Lines with fewer than five
// fields are corrupt and reported with ok=false; extra fields beyond
// the fifth are dropped. A non-numeric latency field parses to nil.
func ParseLine(line string) (r domain.Record, ok bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 5 {
		return domain.Record{}, false
	}
	return domain.Record{
		Timestamp: parts[0],
		Mode:      domain.ParseMode(parts[1]),
		Status:    domain.Status(parts[2]),
		LatencyMS: domain.ParseLatency(parts[3]),
		Detail:    parts[4],
	}, true
}
