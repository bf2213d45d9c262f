package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/strikeit/strikeit-api/internal/config"
)

// unreachableRedis returns a client whose every command fails fast.
func unreachableRedis(t *testing.T) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPackResponse(t *testing.T) {
	h := http.Header{}
	h.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bs, err := packResponse(http.StatusOK, h, []byte(`{"data":[]}`))
	require.NoError(t, err)

	status, header, body, ok := unpackResponse(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, header.Get(echo.HeaderContentType))
	assert.Equal(t, `{"data":[]}`, string(body))

	_, _, _, ok = unpackResponse(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = unpackResponse([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok, "header length beyond payload")
}

func TestResponseCacheKey(t *testing.T) {
	e := echo.New()
	key := func(strategy, target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/locations/:id")
		return responseCacheKey(config.CacheConfig{KeyStrategy: strategy, Prefix: "strikeit:cache"}, c)
	}

	assert.NotEqual(t, key("route_query", "/locations/1"), key("route_query", "/locations/2"))
	assert.NotEqual(t, key("route_query", "/locations/1?a=1"), key("route_query", "/locations/1?a=2"))
	assert.Equal(t, key("route", "/locations/1"), key("route", "/locations/2"))
	assert.Contains(t, key("", "/locations/1"), "strikeit:cache:")
}

func TestBodyRecorderTruncates(t *testing.T) {
	rec := &bodyRecorder{ResponseWriter: httptest.NewRecorder(), limit: 4}
	_, _ = rec.Write([]byte("abc"))
	assert.False(t, rec.truncated)
	_, _ = rec.Write([]byte("de"))
	assert.True(t, rec.truncated)
	assert.Equal(t, "abc", rec.buf.String())
}

func TestResponseCache_RedisDownPassesThrough(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "t"}
	e := echo.New()
	calls := 0
	e.GET("/products", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"data": []string{}})
	}, ResponseCache(cfg, unreachableRedis(t), zaptest.NewLogger(t)))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
}

func TestResponseCache_SkipsAuthenticated(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "t"}
	e := echo.New()
	e.GET("/products", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, ResponseCache(cfg, unreachableRedis(t), zaptest.NewLogger(t)))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer x")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
