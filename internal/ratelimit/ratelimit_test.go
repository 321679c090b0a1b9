package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowRequestPerMinute(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, 0, true)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.AllowRequest("a"))
	assert.True(t, rl.AllowRequest("a"))
	assert.False(t, rl.AllowRequest("a"))
	assert.True(t, rl.AllowRequest("b"), "limits are per client")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.AllowRequest("a"))
}

func TestAllowRequestPerHour(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, 3, true)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		require.True(t, rl.AllowRequest("a"))
		now = now.Add(2 * time.Minute)
	}
	assert.False(t, rl.AllowRequest("a"))

	stats := rl.GetStats()
	assert.Equal(t, 1, stats.TrackedClients)
	assert.Equal(t, 3, stats.RequestsLastHour)
	assert.Equal(t, int64(1), stats.RejectedRequests)

	rl.Reset()
	assert.True(t, rl.AllowRequest("a"))
}

func TestAllowRequestForgetsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, 100, true)
	rl.now = func() time.Time { return now }

	for i := 0; i < 500; i++ {
		require.True(t, rl.AllowRequest(fmt.Sprintf("10.0.%d.%d", i/256, i%256)))
	}
	assert.Len(t, rl.clients, 500)

	now = now.Add(61 * time.Minute)
	assert.True(t, rl.AllowRequest("10.9.9.9"))
	assert.Len(t, rl.clients, 1)
}

func TestDisabledLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 1, false)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.AllowRequest("a"))
	}
	assert.False(t, rl.GetStats().Enabled)
}

func TestMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 0, true)

	r := gin.New()
	r.POST("/schedule", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/schedule", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/schedule", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Too many requests, please try again later."}`, w.Body.String())
}
