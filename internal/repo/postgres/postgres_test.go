//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/hamed0406/sitechecker/internal/domain"
	"github.com/hamed0406/sitechecker/internal/repo"
)

func TestPostgresStore_SaveRun_LatestRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	run := &repo.Run{
		StartedAt:  now.Add(-time.Second),
		FinishedAt: now,
		Outcomes: []domain.CheckOutcome{
			domain.Succeeded("http://ok.test", 200, 120*time.Millisecond, now),
			domain.Failed("http://fail.test", "Request error: timeout", 5*time.Second, now),
		},
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if run.ID == "" {
		t.Fatalf("expected run ID to be set")
	}

	got, err := store.LatestRun(ctx)
	if err != nil || got == nil {
		t.Fatalf("LatestRun: %+v err=%v", got, err)
	}
	if got.ID != run.ID {
		t.Fatalf("want run %s, got %s", run.ID, got.ID)
	}
	if len(got.Outcomes) != 2 {
		t.Fatalf("want 2 outcomes, got %d", len(got.Outcomes))
	}
	if !got.Outcomes[0].OK() || got.Outcomes[0].StatusCode != 200 {
		t.Fatalf("first outcome wrong: %+v", got.Outcomes[0])
	}
	if got.Outcomes[1].OK() || got.Outcomes[1].Error != "Request error: timeout" {
		t.Fatalf("second outcome wrong: %+v", got.Outcomes[1])
	}
	if got.Outcomes[0].Elapsed != 120*time.Millisecond {
		t.Fatalf("elapsed not kept: %s", got.Outcomes[0].Elapsed)
	}
}
