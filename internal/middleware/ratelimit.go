package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimitMiddleware implements fixed-window rate limiting per client IP.
// State is in-process; the catalog runs as a single instance.
func RateLimitMiddleware(config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	var mu sync.Mutex
	windows := make(map[string]*rateWindow)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				clientID = host
			}

			now := time.Now()

			mu.Lock()
			win, ok := windows[clientID]
			if !ok || now.After(win.resetAt) {
				win = &rateWindow{resetAt: now.Add(config.Window)}
				windows[clientID] = win
			}
			win.count++
			count := win.count
			resetAt := win.resetAt
			mu.Unlock()

			if count > config.RequestsPerWindow {
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				retryAfter := int(time.Until(resetAt).Seconds()) + 1
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			remaining := config.RequestsPerWindow - count
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}
