package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
)

// RateLimiter provides a per-IP token bucket rate limiter.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // tokens per interval
	interval time.Duration // refill interval
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens     int
	lastRefill time.Time // advances by whole intervals only
	lastSeen   time.Time
}

// NewRateLimiter creates a rate limiter allowing `rate` requests per `interval`.
// Call Close to stop the background sweep.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// sweep drops visitors idle for five minutes.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > 5*time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the background sweep. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

// Allow checks if a request from the given IP is allowed.
// PRE: ip is non-empty
// POST: Returns true if within rate limit, false if exceeded
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastRefill: now, lastSeen: now}
		return true
	}

	if intervals := now.Sub(v.lastRefill) / rl.interval; intervals > 0 {
		v.tokens += int(intervals) * rl.rate
		if v.tokens > rl.rate {
			v.tokens = rl.rate
		}
		v.lastRefill = v.lastRefill.Add(intervals * rl.interval)
	}
	v.lastSeen = now

	if v.tokens <= 0 {
		slog.Warn("rate_limit_exceeded", "ip", ip)
		return false
	}
	v.tokens--
	return true
}

// RateLimit returns middleware that limits requests per IP.
// A nil limiter disables limiting.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the remote host without its port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders adds OWASP recommended headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; img-src 'self'; form-action 'self'; frame-ancestors 'none'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CSRFOptions configures the CSRF middleware.
type CSRFOptions struct {
	// Secure marks the cookie Secure and enforces TLS origin checks.
	Secure bool
	// TrustedOrigins are host[:port] values accepted as cross-origin form sources.
	TrustedOrigins []string
}

// CSRF returns a handler that protects form submissions against CSRF attacks.
// authKey must be 32 bytes.
// JSON API requests (Content-Type: application/json) are exempted.
func CSRF(authKey []byte, opts CSRFOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		protected := csrf.Protect(
			authKey,
			csrf.Secure(opts.Secure),
			csrf.Path("/"),
			csrf.TrustedOrigins(opts.TrustedOrigins),
			csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
		)(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				next.ServeHTTP(w, r)
				return
			}
			if !opts.Secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	slog.Warn("csrf_rejected", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
}

// Chain wraps h with each middleware in turn.
// The first middleware wraps h directly; the last one sees the request first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
