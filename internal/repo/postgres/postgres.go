package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/sitechecker/internal/domain"
	"github.com/hamed0406/sitechecker/internal/repo"
)

var _ repo.RunStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

// Schema is applied by EnsureSchema; every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
  id          TEXT PRIMARY KEY,
  started_at  TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
  id          BIGSERIAL PRIMARY KEY,
  run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  url         TEXT NOT NULL,
  status_code INTEGER NULL,
  error       TEXT NULL,
  elapsed_ms  BIGINT NOT NULL,
  observed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
  url          TEXT PRIMARY KEY,
  last_state   BOOLEAN NOT NULL,
  last_sent_at TIMESTAMPTZ NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs (finished_at DESC);
CREATE INDEX IF NOT EXISTS idx_outcomes_run     ON outcomes (run_id, id);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
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
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ---- RunStore ----

func (s *Store) SaveRun(ctx context.Context, r *repo.Run) error {
	if r.ID == "" {
		r.ID = makeID()
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO runs (id, started_at, finished_at) VALUES ($1, $2, $3)`,
			r.ID, r.StartedAt, r.FinishedAt,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		b := &pgx.Batch{}
		for _, o := range r.Outcomes {
			var status *int32
			var errText *string
			if o.OK() {
				v := int32(o.StatusCode)
				status = &v
			} else {
				v := o.Error
				errText = &v
			}
			b.Queue(
				`INSERT INTO outcomes (run_id, url, status_code, error, elapsed_ms, observed_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				r.ID, o.URL, status, errText, o.Elapsed.Milliseconds(), o.ObservedAt,
			)
		}
		if b.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("insert outcomes: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug("run_saved", zap.String("run_id", r.ID), zap.Int("outcomes", len(r.Outcomes)))
	return nil
}

// LatestRun returns nil, nil when no run was archived yet.
func (s *Store) LatestRun(ctx context.Context) (*repo.Run, error) {
	var r repo.Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, started_at, finished_at
		   FROM runs
		  ORDER BY finished_at DESC, id DESC
		  LIMIT 1`).Scan(&r.ID, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest run: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT url, status_code, error, elapsed_ms, observed_at
		   FROM outcomes
		  WHERE run_id = $1
		  ORDER BY id`, r.ID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			url        string
			statusNull sql.NullInt32
			errNull    sql.NullString
			elapsedMS  int64
			observedAt time.Time
		)
		if err := rows.Scan(&url, &statusNull, &errNull, &elapsedMS, &observedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		elapsed := time.Duration(elapsedMS) * time.Millisecond
		if statusNull.Valid {
			r.Outcomes = append(r.Outcomes, domain.Succeeded(url, uint16(statusNull.Int32), elapsed, observedAt))
		} else {
			r.Outcomes = append(r.Outcomes, domain.Failed(url, errNull.String, elapsed, observedAt))
		}
	}
	return &r, rows.Err()
}

// ID format: 20060102Thhmmss.nnnnnnnnn
func makeID() string {
	now := time.Now().UTC()
	return now.Format("20060102T150405.") + fmt.Sprintf("%09d", now.Nanosecond())
}
