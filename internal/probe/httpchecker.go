package probe

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/neosoob/clash-test/internal/domain"
)

// DefaultTimeout bounds a single probe exchange.
const DefaultTimeout = 5 * time.Second

// HTTPChecker probes a URL with a plain GET. A target is reachable when
// the exchange completes with 200 or 204; generate_204-style endpoints
// answer with the latter.
type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) Outcome {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Outcome{Status: domain.StatusFailed, Detail: err.Error()}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return Outcome{Status: domain.StatusFailed, Detail: err.Error()}
	}
	defer resp.Body.Close()

	latency := math.Round(time.Since(start).Seconds()*1000*100) / 100 // ms, 2 decimals
	out := Outcome{
		Status:    domain.StatusFailed,
		LatencyMS: &latency,
		Detail:    fmt.Sprintf("HTTP %d", resp.StatusCode),
	}
	if accepted(resp.StatusCode) {
		out.Status = domain.StatusSuccess
	}
	return out
}

func accepted(code int) bool {
	return code == http.StatusOK || code == http.StatusNoContent
}
