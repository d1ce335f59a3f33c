package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// clientTTL bounds how long an idle client keeps its token bucket. Entries
// older than this are dropped on the next sweep, keeping the client map from
// growing without bound.
const clientTTL = 10 * time.Minute

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters tracks one token bucket per client, evicting idle entries.
type clientLimiters struct {
	mu        sync.Mutex
	config    RateLimitConfig
	ttl       time.Duration
	clients   map[string]*clientEntry
	lastSweep time.Time
}

func newClientLimiters(config RateLimitConfig, ttl time.Duration) *clientLimiters {
	return &clientLimiters{
		config:  config,
		ttl:     ttl,
		clients: make(map[string]*clientEntry),
	}
}

// get returns the client's limiter, creating it on first sight and refreshing
// its idle clock. At most one sweep per ttl interval runs here.
func (c *clientLimiters) get(clientID string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= c.ttl {
		c.sweepLocked(now)
		c.lastSweep = now
	}

	entry, ok := c.clients[clientID]
	if !ok {
		entry = &clientEntry{
			limiter: rate.NewLimiter(rate.Limit(c.config.RequestsPerSecond), c.config.Burst),
		}
		c.clients[clientID] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (c *clientLimiters) sweepLocked(now time.Time) {
	for id, entry := range c.clients {
		if now.Sub(entry.lastSeen) >= c.ttl {
			delete(c.clients, id)
		}
	}
}

// RateLimitMiddleware implements per-client rate limiting with in-process
// token buckets keyed by remote address. Idle clients are evicted after
// clientTTL.
func RateLimitMiddleware(config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	limiters := newClientLimiters(config, clientTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.RemoteAddr

			limiter := limiters.get(clientID, time.Now())
			if !limiter.Allow() {
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Float64("limit_rps", config.RequestsPerSecond),
				)
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Burst))
				w.Header().Set("X-RateLimit-Remaining", "0")
				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
