// Package postgres stores probe records in a Postgres table, for
// deployments that want the log on a shared database instead of a
// local file.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/neosoob/clash-test/internal/domain"
	"github.com/neosoob/clash-test/internal/logstore"
)

var _ logstore.Store = (*Store)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS probe_log (
  id         BIGSERIAL PRIMARY KEY,
  ts         TEXT NOT NULL,
  mode       TEXT NOT NULL,
  status     TEXT NOT NULL,
  latency_ms DOUBLE PRECISION NULL,
  detail     TEXT NOT NULL DEFAULT ''
);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
	now  func() time.Time
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log, now: time.Now}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the probe_log table if it does not exist yet,
// so a fresh database works without a separate migration step.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, mode domain.Mode, status domain.Status, latencyMS *float64, detail string) (string, error) {
	ts := s.now().Format(domain.TimeLayout)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO probe_log (ts, mode, status, latency_ms, detail)
		 VALUES ($1, $2, $3, $4, $5)`,
		ts, string(mode), string(status), latencyMS, domain.SanitizeDetail(detail),
	)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	return ts, nil
}

func (s *Store) ReadAll(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ts, mode, status, latency_ms, detail
		   FROM probe_log
		  ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var (
			ts, mode, status, detail string
			latency                  sql.NullFloat64
		)
		if err := rows.Scan(&ts, &mode, &status, &latency, &detail); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		var latPtr *float64
		if latency.Valid {
			v := latency.Float64
			latPtr = &v
		}

		out = append(out, domain.Record{
			Timestamp: ts,
			Mode:      domain.ParseMode(mode),
			Status:    domain.Status(status),
			LatencyMS: latPtr,
			Detail:    detail,
		})
	}
	return out, rows.Err()
}

// ReadRaw renders the table back into store line format so the export
// endpoint behaves the same on every adapter.
func (s *Store) ReadRaw(ctx context.Context) (string, error) {
	recs, err := s.ReadAll(ctx)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString(logstore.Header + "\n")
	for _, r := range recs {
		b.WriteString(logstore.FormatLine(r) + "\n")
	}
	return b.String(), nil
}
