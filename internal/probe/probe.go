package probe

import (
	"context"

	"github.com/neosoob/clash-test/internal/domain"
)

// Outcome is the classified result of a single reachability probe.
//
// LatencyMS is measured from just before the request is issued until a
// response or failure comes back. It is nil only when the exchange never
// completed (timeout, refused connection, DNS failure); a completed
// non-accepted response still carries its latency.
type Outcome struct {
	Status    domain.Status
	LatencyMS *float64
	Detail    string
}

// Checker performs one probe against a target URL. Retrying and
// periodicity belong to the scheduler, never to the checker.
type Checker interface {
	Check(ctx context.Context, target string) Outcome
}
