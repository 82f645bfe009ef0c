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

func newChecker(t *testing.T, timeout time.Duration) *HTTPChecker {
	t.Helper()
	chk, err := NewHTTPChecker(timeout)
	if err != nil {
		t.Fatalf("NewHTTPChecker: %v", err)
	}
	return chk
}

func TestHTTPChecker_StatusOK(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("want GET, got %s", r.Method)
		}
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	out := newChecker(t, 2*time.Second).Check(context.Background(), s.URL)
	if !out.Reached {
		t.Fatalf("want reached, got %+v", out)
	}
	if out.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", out.StatusCode)
	}
	if !strings.HasPrefix(out.Message, "200") {
		t.Fatalf("want message to start with 200, got %q", out.Message)
	}
	if out.Attempts != 1 {
		t.Fatalf("want 1 attempt, got %d", out.Attempts)
	}
}

func TestHTTPChecker_Status500StillReached(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer s.Close()

	out := newChecker(t, 2*time.Second).Check(context.Background(), s.URL)
	if !out.Reached {
		t.Fatalf("5xx is a response, want reached: %+v", out)
	}
	if out.StatusCode != 500 {
		t.Fatalf("want status 500, got %d", out.StatusCode)
	}
}

func TestHTTPChecker_TimeoutSetsStatusZero(t *testing.T) {
	// Server sleeps longer than client timeout
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	out := newChecker(t, 50*time.Millisecond).Check(context.Background(), s.URL)
	if out.Reached {
		t.Fatalf("want failure due to timeout, got %+v", out)
	}
	if out.StatusCode != 0 {
		t.Fatalf("want status 0 on transport error, got %d", out.StatusCode)
	}
	if out.Message == "" {
		t.Fatalf("want non-empty error message")
	}
}

func TestHTTPChecker_MalformedURLFailsAtRequestTime(t *testing.T) {
	out := newChecker(t, time.Second).Check(context.Background(), "http://[::1")
	if out.Reached || out.Message == "" {
		t.Fatalf("want request error, got %+v", out)
	}
}

func TestNewHTTPChecker_RejectsNonPositiveTimeout(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		if _, err := NewHTTPChecker(d); !errors.Is(err, ErrInvalidTimeout) {
			t.Fatalf("timeout %s: want ErrInvalidTimeout, got %v", d, err)
		}
	}
}
