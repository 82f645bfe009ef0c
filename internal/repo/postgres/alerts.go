package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/sitechecker/internal/repo"
)

func (s *Store) Get(ctx context.Context, url string) (*repo.AlertRecord, error) {
	const q = `SELECT last_state, last_sent_at FROM alerts WHERE url=$1`
	var r repo.AlertRecord
	r.URL = url
	var lastSent *time.Time
	err := s.pool.QueryRow(ctx, q, url).Scan(&r.LastState, &lastSent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	r.LastSentAt = lastSent
	return &r, nil
}

func (s *Store) Set(ctx context.Context, url string, lastState bool, sentAt time.Time) error {
	const q = `
		INSERT INTO alerts (url, last_state, last_sent_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (url)
		DO UPDATE SET last_state=EXCLUDED.last_state, last_sent_at=EXCLUDED.last_sent_at
	`
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	_, err := s.pool.Exec(ctx, q, url, lastState, ts)
	return err
}
