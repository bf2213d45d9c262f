package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/strikeit/strikeit-api/internal/config"
)

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/cart")
	c.Set(ContextUserID, uint64(5))

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.1"},
		{"user", "rl:user:5"},
		{"route", "rl:route:GET /cart"},
		{"ip_user", "rl:ip:10.0.0.1:user:5"},
		{"", "rl:ip:10.0.0.1:user:5:route:GET /cart"},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			assert.Equal(t, tt.want, rateKey(config.RateLimitConfig{KeyStrategy: tt.strategy, Prefix: "rl"}, c))
		})
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		RateLimit(cfg, unreachableRedis(t), zaptest.NewLogger(t)))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestRateLimit_DisabledIsPassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		RateLimit(config.RateLimitConfig{Enabled: false}, nil, zaptest.NewLogger(t)))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
