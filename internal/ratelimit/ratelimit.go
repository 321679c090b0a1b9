package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter tracks and enforces per-client request rate limits using
// sliding minute and hour windows
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	enabled           bool

	// Request tracking per client key
	clients   map[string]*window
	rejected  int64
	lastSweep time.Time
	mu        sync.Mutex
	now       func() time.Time
}

// sweepInterval is how often AllowRequest drops clients with no request in
// the last hour
const sweepInterval = time.Minute

type window struct {
	minute []time.Time
	hour   []time.Time
}

// NewRateLimiter creates a new rate limiter with the given limits.
// A zero hourly limit disables the hour window.
func NewRateLimiter(requestsPerMinute, requestsPerHour int, enabled bool) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		enabled:           enabled,
		clients:           make(map[string]*window),
		now:               time.Now,
	}
}

// AllowRequest checks if a request from key is allowed based on rate limits
// Returns true if allowed, false if rate limit exceeded
func (rl *RateLimiter) AllowRequest(key string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}

	w, ok := rl.clients[key]
	if !ok {
		w = &window{}
		rl.clients[key] = w
	}
	w.cleanup(now)

	// Check limits
	if rl.requestsPerMinute > 0 && len(w.minute) >= rl.requestsPerMinute {
		rl.rejected++
		return false
	}
	if rl.requestsPerHour > 0 && len(w.hour) >= rl.requestsPerHour {
		rl.rejected++
		return false
	}

	// Record the request
	w.minute = append(w.minute, now)
	w.hour = append(w.hour, now)
	return true
}

// sweep forgets idle clients so the map stays bounded by the clients seen
// in the last hour. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, w := range rl.clients {
		w.cleanup(now)
		if len(w.hour) == 0 {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

// cleanup removes expired entries from the time windows
func (w *window) cleanup(now time.Time) {
	w.minute = filterTimes(w.minute, now.Add(-time.Minute))
	w.hour = filterTimes(w.hour, now.Add(-time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// Middleware rejects requests over the limit with 429, keyed by client IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.AllowRequest(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please try again later.",
			})
			return
		}
		c.Next()
	}
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	stats := Stats{
		Enabled:          true,
		LimitPerMinute:   rl.requestsPerMinute,
		LimitPerHour:     rl.requestsPerHour,
		RejectedRequests: rl.rejected,
	}
	for key, w := range rl.clients {
		w.cleanup(now)
		if len(w.hour) == 0 {
			delete(rl.clients, key)
			continue
		}
		stats.TrackedClients++
		stats.RequestsLastMinute += len(w.minute)
		stats.RequestsLastHour += len(w.hour)
	}
	return stats
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled            bool  `json:"enabled"`
	TrackedClients     int   `json:"tracked_clients"`
	RequestsLastMinute int   `json:"requests_last_minute"`
	RequestsLastHour   int   `json:"requests_last_hour"`
	LimitPerMinute     int   `json:"limit_per_minute"`
	LimitPerHour       int   `json:"limit_per_hour"`
	RejectedRequests   int64 `json:"rejected_requests"`
}

// Reset clears all tracked requests (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.clients = make(map[string]*window)
	rl.rejected = 0
}
