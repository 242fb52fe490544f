// Package memory keeps probe records in process memory. It backs tests
// and deployments that run without a log file path.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/neosoob/clash-test/internal/domain"
	"github.com/neosoob/clash-test/internal/logstore"
)

var _ logstore.Store = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	records []domain.Record
	now     func() time.Time
}

func New() *Store {
	return &Store{
		records: make([]domain.Record, 0, 128),
		now:     time.Now,
	}
}

func (m *Store) Append(ctx context.Context, mode domain.Mode, status domain.Status, latencyMS *float64, detail string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := m.now().Format(domain.TimeLayout)
	m.records = append(m.records, domain.Record{
		Timestamp: ts,
		Mode:      mode,
		Status:    status,
		LatencyMS: latencyMS,
		Detail:    domain.SanitizeDetail(detail),
	})
	return ts, nil
}

func (m *Store) ReadAll(ctx context.Context) ([]domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

// ReadRaw renders the records in store line format. Mirrors the file
// adapter: no records means no store yet, so empty string.
func (m *Store) ReadRaw(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.records) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString(logstore.Header + "\n")
	for _, r := range m.records {
		b.WriteString(logstore.FormatLine(r) + "\n")
	}
	return b.String(), nil
}
