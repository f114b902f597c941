package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, cfg *Config) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRateLimiter(rdb, cfg)
}

func TestIsAllowedEnforcesLimit(t *testing.T) {
	rl := newLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, SubmitRequests: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeSubmit)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeSubmit)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	// other clients and buckets are independent
	res, err = rl.IsAllowed(ctx, "10.0.0.2", RateLimitTypeSubmit)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestIsAllowedWhitelistAndDisabled(t *testing.T) {
	rl := newLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, DefaultRequests: 0, WhitelistedIPs: []string{"127.0.0.1"}})
	res, err := rl.IsAllowed(context.Background(), "127.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	off := newLimiter(t, &Config{Enabled: false, WindowDuration: time.Minute})
	res, err = off.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestGetRateLimitType(t *testing.T) {
	assert.Equal(t, RateLimitTypeHealth, getRateLimitType("/health"))
	assert.Equal(t, RateLimitTypeLookup, getRateLimitType("/api/v1/reservation/passengers/:index/document"))
	assert.Equal(t, RateLimitTypeSubmit, getRateLimitType("/api/v1/reservation/submit"))
	assert.Equal(t, RateLimitTypeSession, getRateLimitType("/api/v1/reservation/session"))
	assert.Equal(t, RateLimitTypeTicket, getRateLimitType("/api/v1/tickets/:reservationId"))
	assert.Equal(t, RateLimitTypeDefault, getRateLimitType("/api/v1/other"))
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := newLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, HealthRequests: 1})

	r := gin.New()
	r.Use(Middleware(rl))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
