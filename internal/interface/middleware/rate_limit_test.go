package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(rdb, max, window, keyFn, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func hit(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.1.2.3:4000"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksOverMax(t *testing.T) {
	rdb, _ := newTestRedis(t)
	r := limitedRouter(rdb, 3, time.Minute, KeyByIP())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "/ping").Code, "request %d should pass", i+1)
	}
	w := hit(r, "/ping")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimitSetsHeaders(t *testing.T) {
	rdb, _ := newTestRedis(t)
	r := limitedRouter(rdb, 5, time.Minute, KeyByIP())

	w := hit(r, "/ping")
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitWindowResets(t *testing.T) {
	rdb, mr := newTestRedis(t)
	r := limitedRouter(rdb, 1, time.Minute, KeyByIP())

	assert.Equal(t, http.StatusOK, hit(r, "/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "/ping").Code)

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, hit(r, "/ping").Code)
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	r := limitedRouter(nil, 1, time.Minute, KeyByIP())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "/ping").Code)
	}
}

func TestRateLimitKeyByUserFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, _ := newTestRedis(t)

	r := gin.New()
	r.GET("/ping", asUser("u1"), RateLimit(rdb, 1, time.Minute, KeyByUserID(), nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusOK, hit(r, "/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "/ping").Code)
}
