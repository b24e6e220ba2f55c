package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters for an endpoint class.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Common rate limit profiles.
var (
	// StrictLimit for credential endpoints (brute force prevention).
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit for authenticated mutating operations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit for authenticated reads and health checks.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

// limiterPool tracks one token bucket per key. Idle entries are evicted
// lazily so the map does not grow without bound.
type limiterPool struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	entries map[string]*poolEntry
	swept   time.Time
}

type poolEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const poolSweepInterval = 10 * time.Minute

func newLimiterPool(cfg RateLimitConfig) *limiterPool {
	return &limiterPool{
		cfg:     cfg,
		entries: make(map[string]*poolEntry),
		swept:   time.Now(),
	}
}

func (p *limiterPool) allow(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if now.Sub(p.swept) > poolSweepInterval {
		for k, e := range p.entries {
			if now.Sub(e.lastSeen) > poolSweepInterval {
				delete(p.entries, k)
			}
		}
		p.swept = now
	}

	e, ok := p.entries[key]
	if !ok {
		limit := rate.Limit(float64(p.cfg.RequestsPerWindow) / p.cfg.Window.Seconds())
		e = &poolEntry{limiter: rate.NewLimiter(limit, p.cfg.Burst)}
		p.entries[key] = e
	}
	e.lastSeen = now

	return e.limiter.Allow()
}

// RateLimitByIP limits requests per client IP. Used on unauthenticated
// endpoints where the IP is the only identity available.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	pool := newLimiterPool(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !pool.allow(clientIP(r)) {
				writeRateLimited(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByUser limits requests per authenticated user. Must run after
// AuthnMiddleware; falls back to the client IP for anonymous requests.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	pool := newLimiterPool(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := UserIDFromContext(r.Context())
			if key == "" {
				key = clientIP(r)
			}
			if !pool.allow(key) {
				writeRateLimited(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "60")
	WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
}
