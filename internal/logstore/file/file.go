// Package file persists probe records as tab-separated lines in a
// single append-only text file.
package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/neosoob/clash-test/internal/domain"
	"github.com/neosoob/clash-test/internal/logstore"
)

var _ logstore.Store = (*Store)(nil)

// Store appends to one flat file. The mutex keeps the header check and
// the line write atomic across the manual request path and the
// background loop, so two first-ever appends cannot both write the
// header and concurrent writers cannot interleave partial lines.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Append(ctx context.Context, mode domain.Mode, status domain.Status, latencyMS *float64, detail string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat log: %w", err)
	}
	if info.Size() == 0 {
		if _, err := f.WriteString(logstore.Header + "\n"); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	ts := s.now().Format(domain.TimeLayout)
	line := logstore.FormatLine(domain.Record{
		Timestamp: ts,
		Mode:      mode,
		Status:    status,
		LatencyMS: latencyMS,
		Detail:    detail,
	})
	if _, err := f.WriteString(line + "\n"); err != nil {
		return "", fmt.Errorf("append record: %w", err)
	}
	return ts, nil
}

func (s *Store) ReadAll(ctx context.Context) ([]domain.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var out []domain.Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for sc.Scan() {
		if first {
			// Header row.
			first = false
			continue
		}
		if r, ok := logstore.ParseLine(sc.Text()); ok {
			out = append(out, r)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return out, nil
}

func (s *Store) ReadRaw(ctx context.Context) (string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read log: %w", err)
	}
	return string(b), nil
}
