package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/ludoteca-console/internal/config"
)

type countingLimiter struct {
	capacity int64
	taken    map[string]int64
	err      error
}

func (l *countingLimiter) Take(_ context.Context, key string) (Decision, error) {
	if l.err != nil {
		return Decision{}, l.err
	}
	if l.taken == nil {
		l.taken = map[string]int64{}
	}
	if l.taken[key] >= l.capacity {
		return Decision{RetryAfter: 1500 * time.Millisecond}, nil
	}
	l.taken[key]++
	return Decision{Allowed: true, Remaining: l.capacity - l.taken[key]}, nil
}

func newLimitedEcho(cfg config.RateLimitConfig, l Limiter) *echo.Echo {
	e := echo.New()
	g := e.Group("/api", RateLimit(cfg, l))
	g.GET("/games", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	g.GET("/clients", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func get(e *echo.Echo, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func Test_RateLimit_RejectsWhenBucketEmpty(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 2, KeyStrategy: "ip", Prefix: "rl"}
	e := newLimitedEcho(cfg, &countingLimiter{capacity: 2})

	first := get(e, "/api/games", "10.0.0.1")
	get(e, "/api/clients", "10.0.0.1")
	third := get(e, "/api/games", "10.0.0.1")
	other := get(e, "/api/games", "10.0.0.2")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "2", third.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, other.Code)
}

func Test_RateLimit_FailsOpen(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	e := newLimitedEcho(cfg, &countingLimiter{err: errors.New("redis down")})

	assert.Equal(t, http.StatusOK, get(e, "/api/games", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get(e, "/api/games", "10.0.0.1").Code)
}

func Test_RateLimit_DisabledOrNilLimiterPassesThrough(t *testing.T) {
	limited := &countingLimiter{capacity: 0}

	e := newLimitedEcho(config.RateLimitConfig{Enabled: false}, limited)
	assert.Equal(t, http.StatusOK, get(e, "/api/games", "10.0.0.1").Code)

	e = newLimitedEcho(config.RateLimitConfig{Enabled: true}, nil)
	assert.Equal(t, http.StatusOK, get(e, "/api/games", "10.0.0.1").Code)
}

func Test_RateKey_Strategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/loans/7", nil)
	req.Header.Set(echo.HeaderXRealIP, "192.168.1.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/loans/:id")

	assert.Equal(t, "rl:ip:192.168.1.9", RateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:route:DELETE /api/loans/:id", RateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "route"}, c))
	assert.Equal(t, "rl:ip:192.168.1.9:route:DELETE /api/loans/:id", RateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c))
}
