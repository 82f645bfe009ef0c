//go:build integration

package postgres

// go test -tags=integration ./internal/repo/postgres -run AlertsCRUD -count=1

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL empty")
	}
	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return store
}

func TestAlertsCRUD(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	url := "https://alerts-crud.example/" + makeID()

	// none yet
	rec, err := store.Get(ctx, url)
	if err != nil || rec != nil {
		t.Fatalf("expected nil, got %+v err=%v", rec, err)
	}

	// set (no sent time)
	if err := store.Set(ctx, url, false, time.Time{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	rec, err = store.Get(ctx, url)
	if err != nil || rec == nil || rec.LastSentAt != nil || rec.LastState != false {
		t.Fatalf("unexpected: %+v err=%v", rec, err)
	}

	// set with sent time
	now := time.Now()
	if err := store.Set(ctx, url, true, now); err != nil {
		t.Fatalf("set2: %v", err)
	}
	rec, err = store.Get(ctx, url)
	if err != nil || rec == nil || rec.LastSentAt == nil || rec.LastState != true {
		t.Fatalf("unexpected2: %+v err=%v", rec, err)
	}
}
