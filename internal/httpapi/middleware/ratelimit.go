package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket holds the tokens left for one client; it refills continuously.
type bucket struct {
	tokens float64
	seen   time.Time
}

type clientLimiter struct {
	perSec float64
	burst  float64
	idle   time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*bucket
	swept   time.Time
}

func newClientLimiter(perMin, burst int, idle time.Duration) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		perSec:  float64(perMin) / 60,
		burst:   float64(burst),
		idle:    idle,
		now:     time.Now,
		clients: make(map[string]*bucket),
	}
}

func (l *clientLimiter) allow(client string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	b := l.clients[client]
	if b == nil {
		b = &bucket{tokens: l.burst, seen: now}
		l.clients[client] = b
	}
	b.tokens = min(l.burst, b.tokens+now.Sub(b.seen).Seconds()*l.perSec)
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops clients idle for longer than l.idle. Caller holds l.mu.
func (l *clientLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < l.idle {
		return
	}
	for k, b := range l.clients {
		if now.Sub(b.seen) > l.idle {
			delete(l.clients, k)
		}
	}
	l.swept = now
}

// RateLimit admits at most perMin requests a minute per client IP, with
// bursts of up to burst. perMin <= 0 disables it.
// RateLimit(30, 5) => 30 check runs/min, 5 back to back.
func RateLimit(perMin, burst int) func(http.Handler) http.Handler {
	if perMin <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := newClientLimiter(perMin, burst, 10*time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// first hop of X-Forwarded-For when behind a proxy
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
