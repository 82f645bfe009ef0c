package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func factoryOf(c Checker) Factory {
	return func(time.Duration) (Checker, error) { return c, nil }
}

func TestPolicyRun_AlwaysFailingMakesRetriesPlusOneAttempts(t *testing.T) {
	f := &fakeChecker{results: failing(10)}
	p := Policy{Timeout: time.Second, Retries: 3}
	out := p.Run(context.Background(), factoryOf(f), "http://fail.test")
	if out.OK() {
		t.Fatalf("want failed outcome, got %+v", out)
	}
	if f.calls != 4 {
		t.Fatalf("want 4 attempts, got %d", f.calls)
	}
	if out.URL != "http://fail.test" || out.Error != "connection refused" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestPolicyRun_StopsAtFirstResponse(t *testing.T) {
	f := &fakeChecker{results: []CheckResult{
		{Message: "timeout"},
		{Message: "timeout"},
		{Reached: true, StatusCode: 404, Message: "404 Not Found"},
	}}
	p := Policy{Timeout: time.Second, Retries: 5}
	out := p.Run(context.Background(), factoryOf(f), "http://flaky.test")
	if !out.OK() || out.StatusCode != 404 {
		t.Fatalf("want 404 outcome, got %+v", out)
	}
	if f.calls != 3 {
		t.Fatalf("want 3 attempts, got %d", f.calls)
	}
}

func TestPolicyRun_FactoryErrorSkipsAttempts(t *testing.T) {
	calls := 0
	bad := func(time.Duration) (Checker, error) {
		calls++
		return nil, errors.New("bad timeout")
	}
	p := Policy{Timeout: time.Second, Retries: 2}
	out := p.Run(context.Background(), bad, "http://x.test")
	if out.OK() {
		t.Fatalf("want failed outcome, got %+v", out)
	}
	if !strings.Contains(out.Error, "Failed to create HTTP client") {
		t.Fatalf("unexpected error text: %q", out.Error)
	}
	if out.Elapsed != 0 {
		t.Fatalf("want zero elapsed, got %s", out.Elapsed)
	}
	if calls != 1 {
		t.Fatalf("factory should be called once, got %d", calls)
	}
}

func TestPolicyRun_ElapsedIsCumulative(t *testing.T) {
	f := &fakeChecker{results: failing(3)}
	p := Policy{Timeout: time.Second, Retries: 2, Backoff: 30 * time.Millisecond}
	before := time.Now().UTC()
	out := p.Run(context.Background(), factoryOf(f), "http://fail.test")
	if out.Elapsed < 60*time.Millisecond {
		t.Fatalf("elapsed should include both backoffs, got %s", out.Elapsed)
	}
	if out.ObservedAt.Before(before.Add(out.Elapsed)) {
		t.Fatalf("timestamp %s should be taken after the last attempt", out.ObservedAt)
	}
}

func TestCheck_OKAndTimeout(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	got := Check(context.Background(), ok.URL, time.Second, 1)
	if !got.OK() || got.StatusCode != 200 {
		t.Fatalf("want 200, got %+v", got)
	}

	start := time.Now()
	bad := Check(context.Background(), slow.URL, 50*time.Millisecond, 1)
	if bad.OK() || bad.Error == "" {
		t.Fatalf("want timeout error, got %+v", bad)
	}
	// two 50ms attempts plus one 100ms backoff
	if d := time.Since(start); d < 200*time.Millisecond {
		t.Fatalf("want two attempts with backoff, took %s", d)
	}
}

func TestCheck_InvalidTimeoutIsRecordedNotFatal(t *testing.T) {
	out := Check(context.Background(), "http://x.test", 0, 3)
	if out.OK() || out.Elapsed != 0 {
		t.Fatalf("want zero-elapsed failure, got %+v", out)
	}
}
