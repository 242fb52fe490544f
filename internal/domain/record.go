package domain

import "strconv"

// TimeLayout is the wall-clock format every log timestamp uses.
// Local time, second precision.
const TimeLayout = "2006-01-02 15:04:05"

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type Mode string

const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
)

// ParseMode maps a raw mode field to a known mode. Anything unrecognized
// counts as manual.
func ParseMode(s string) Mode {
	if Mode(s) == ModeAuto {
		return ModeAuto
	}
	return ModeManual
}

// Record is one persisted probe outcome. LatencyMS is nil when the probe
// never completed (timeout, refused connection, DNS failure).
type Record struct {
	Timestamp string   `json:"timestamp"`
	Mode      Mode     `json:"mode"`
	Status    Status   `json:"status"`
	LatencyMS *float64 `json:"latency_ms"`
	Detail    string   `json:"detail"`
}

// SanitizeDetail makes a detail string safe for the tab-separated line
// format by turning tabs and newlines into spaces.
func SanitizeDetail(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\t', '\n':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// FormatLatency renders latency for persistence: two decimals, or the
// empty string when the probe never completed.
func FormatLatency(latencyMS *float64) string {
	if latencyMS == nil {
		return ""
	}
	return strconv.FormatFloat(*latencyMS, 'f', 2, 64)
}

// ParseLatency is the inverse of FormatLatency. An empty or non-numeric
// field parses to nil rather than an error.
func ParseLatency(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
