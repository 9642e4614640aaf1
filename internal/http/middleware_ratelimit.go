package httpx

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter table; idle entries are pruned past it.
const maxTrackedClients = 10_000

// RateLimiter hands out a token bucket per client IP.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per client with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
	}
}

// Allow reports whether the client may proceed now.
func (rl *RateLimiter) Allow(client string) bool {
	now := time.Now()

	rl.mu.RLock()
	cl, ok := rl.limiters[client]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		if cl, ok = rl.limiters[client]; !ok {
			if len(rl.limiters) >= maxTrackedClients {
				rl.pruneLocked(now)
			}
			cl = &clientLimiter{lim: rate.NewLimiter(rl.limit, rl.burst)}
			rl.limiters[client] = cl
		}
		rl.mu.Unlock()
	}

	rl.mu.Lock()
	cl.lastSeen = now
	rl.mu.Unlock()
	return cl.lim.AllowN(now, 1)
}

func (rl *RateLimiter) pruneLocked(now time.Time) {
	for k, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) > rl.idle {
			delete(rl.limiters, k)
		}
	}
}

// Middleware rejects clients over their budget with 429. htmx callers also
// get a toast.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.Allow(ClientIP(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", "1")
			if IsHTMX(r) {
				HTMX(w).Toast(MsgTooManyRequests, ToastError)
			}
			http.Error(w, MsgTooManyRequests, http.StatusTooManyRequests)
		})
	}
}

// ClientIP picks the most plausible client address: X-Real-IP, then the first
// parseable X-Forwarded-For entry, then the peer address. Headers are only as
// trustworthy as the proxy in front of the portal.
func ClientIP(r *http.Request) string {
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for part := range strings.SplitSeq(v, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
