// Package stats turns the ordered probe record sequence into the
// aggregated connectivity report served by the API. Everything here is
// a pure function of the records and the query time; nothing is cached.
package stats

import (
	"math"
	"strings"
	"time"

	"github.com/neosoob/clash-test/internal/domain"
)

const (
	hourLayout  = "2006-01-02 15"
	recentLimit = 50
	// Shown for last_failed_time when no probe has ever failed.
	noFailurePlaceholder = "-"
)

// Counts is one all-time rollup bucket.
type Counts struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// WindowBucket is one hour inside a fixed rolling window.
type WindowBucket struct {
	Success          int     `json:"success"`
	Failed           int     `json:"failed"`
	ConnectivityRate float64 `json:"connectivity_rate"`
}

// Summary holds the headline counters and streak metrics.
type Summary struct {
	Total          int      `json:"total"`
	Success        int      `json:"success"`
	Failed         int      `json:"failed"`
	SuccessRate    float64  `json:"success_rate"`
	AvgLatencyMS   *float64 `json:"avg_latency_ms"`
	LastTestStatus string   `json:"last_test_status,omitempty"`
	LastTestTime   string   `json:"last_test_time,omitempty"`
	LastFailedTime string   `json:"last_failed_time"`

	// SustainedConnectivityMinutes is how long the connection has been
	// healthy since the most recent failure. Present only when the
	// latest record is a success and at least one failure exists.
	SustainedConnectivityMinutes *float64 `json:"sustained_connectivity_minutes,omitempty"`

	// ConsecutiveFailedMinutes is the length of the trailing failed
	// run. Present only when the latest record is a failure; a single
	// trailing failure reads as 0.
	ConsecutiveFailedMinutes *float64 `json:"consecutive_failed_minutes,omitempty"`
}

// Snapshot is the full stats response body.
type Snapshot struct {
	Summary   Summary                 `json:"summary"`
	Hourly    map[string]Counts       `json:"hourly"`
	Hourly24  map[string]WindowBucket `json:"hourly_24"`
	Hourly48  map[string]WindowBucket `json:"hourly_48"`
	Daily     map[string]Counts       `json:"daily"`
	ModeCount map[string]int          `json:"mode_count"`
	Recent    []domain.Record         `json:"recent"`
}

// Compute aggregates the record sequence as of now. Records must be in
// append order; the last element is treated as the latest probe.
// Malformed timestamps degrade the affected bucket or streak field,
// never the whole snapshot.
func Compute(records []domain.Record, now time.Time) Snapshot {
	return Snapshot{
		Summary:   summarize(records),
		Hourly:    bucketBy(records, hourPrefix),
		Hourly24:  window(records, now, 24),
		Hourly48:  window(records, now, 48),
		Daily:     bucketBy(records, dayPrefix),
		ModeCount: countModes(records),
		Recent:    lastN(records, recentLimit),
	}
}

func summarize(records []domain.Record) Summary {
	total := len(records)
	success := 0
	for _, r := range records {
		if r.Status == domain.StatusSuccess {
			success++
		}
	}
	failed := total - success

	sm := Summary{
		Total:          total,
		Success:        success,
		Failed:         failed,
		LastFailedTime: noFailurePlaceholder,
	}
	if total > 0 {
		sm.SuccessRate = round2(float64(success) / float64(total) * 100)
	}

	var latSum float64
	latN := 0
	for _, r := range records {
		if r.LatencyMS != nil {
			latSum += *r.LatencyMS
			latN++
		}
	}
	if latN > 0 {
		v := round2(latSum / float64(latN))
		sm.AvgLatencyMS = &v
	}

	if total == 0 {
		return sm
	}

	latest := records[total-1]
	sm.LastTestStatus = string(latest.Status)
	sm.LastTestTime = latest.Timestamp

	lastFailed := -1
	for i := total - 1; i >= 0; i-- {
		if records[i].Status != domain.StatusSuccess {
			lastFailed = i
			break
		}
	}
	if lastFailed >= 0 {
		sm.LastFailedTime = timeOfDay(records[lastFailed].Timestamp)
	}

	if latest.Status == domain.StatusSuccess {
		if lastFailed >= 0 {
			sm.SustainedConnectivityMinutes = minutesBetween(records[lastFailed].Timestamp, latest.Timestamp)
		}
	} else {
		runStart := total - 1
		for runStart > 0 && records[runStart-1].Status != domain.StatusSuccess {
			runStart--
		}
		sm.ConsecutiveFailedMinutes = minutesBetween(records[runStart].Timestamp, latest.Timestamp)
	}
	return sm
}

// minutesBetween returns the elapsed minutes from a to b, clamped at
// zero and rounded to one decimal. Unparseable input yields nil.
func minutesBetween(a, b string) *float64 {
	ta, errA := time.ParseInLocation(domain.TimeLayout, a, time.Local)
	tb, errB := time.ParseInLocation(domain.TimeLayout, b, time.Local)
	if errA != nil || errB != nil {
		return nil
	}
	mins := tb.Sub(ta).Minutes()
	if mins < 0 {
		mins = 0
	}
	v := round1(mins)
	return &v
}

func bucketBy(records []domain.Record, keyFn func(string) string) map[string]Counts {
	out := make(map[string]Counts)
	for _, r := range records {
		key := keyFn(r.Timestamp)
		c := out[key]
		if r.Status == domain.StatusSuccess {
			c.Success++
		} else {
			c.Failed++
		}
		out[key] = c
	}
	return out
}

// window builds the fixed rolling view: one pre-zeroed bucket per hour,
// anchored at the current hour and reaching back hours-1 more. Records
// outside the window, including ones stamped after the current hour,
// fall through the map lookup and are ignored.
func window(records []domain.Record, now time.Time, hours int) map[string]WindowBucket {
	// The anchor is rebuilt DST-free: labels are plain wall-clock
	// strings, and stepping back one hour must always yield a distinct
	// label, even across a fall-back where a zoned clock repeats an hour.
	anchor := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, time.UTC)
	out := make(map[string]WindowBucket, hours)
	for i := 0; i < hours; i++ {
		out[anchor.Add(-time.Duration(i)*time.Hour).Format(hourLayout)] = WindowBucket{}
	}
	for _, r := range records {
		key := hourPrefix(r.Timestamp)
		b, ok := out[key]
		if !ok {
			continue
		}
		if r.Status == domain.StatusSuccess {
			b.Success++
		} else {
			b.Failed++
		}
		out[key] = b
	}
	for key, b := range out {
		if total := b.Success + b.Failed; total > 0 {
			b.ConnectivityRate = round2(float64(b.Success) / float64(total) * 100)
			out[key] = b
		}
	}
	return out
}

func countModes(records []domain.Record) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		out[string(domain.ParseMode(string(r.Mode)))]++
	}
	return out
}

func lastN(records []domain.Record, n int) []domain.Record {
	start := 0
	if len(records) > n {
		start = len(records) - n
	}
	out := make([]domain.Record, len(records)-start)
	copy(out, records[start:])
	return out
}

func hourPrefix(ts string) string {
	if len(ts) < 13 {
		return ts
	}
	return ts[:13]
}

func dayPrefix(ts string) string {
	if len(ts) < 10 {
		return ts
	}
	return ts[:10]
}

// timeOfDay strips the date part of a record timestamp.
func timeOfDay(ts string) string {
	if _, rest, ok := strings.Cut(ts, " "); ok {
		return rest
	}
	return ts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
