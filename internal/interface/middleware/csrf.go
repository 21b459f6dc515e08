package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/davitren/storefront/pkg/helpers"
	"github.com/davitren/storefront/pkg/response"
)

const csrfHeader = "X-CSRF-Token"

const csrfTTL = 24 * time.Hour

// IssueCSRF returns a handler that mints an anti-forgery token for the
// authenticated session and stores it in redis. Clients echo it back in
// the X-CSRF-Token header on every mutating request.
func IssueCSRF(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("userID")
		if uid == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		token, err := helpers.GenerateToken(32)
		if err != nil {
			response.AbortError(c, http.StatusInternalServerError, "token generation failed", nil)
			return
		}
		if err := rdb.Set(c.Request.Context(), helpers.CSRFKey(uid), token, csrfTTL).Err(); err != nil {
			response.AbortError(c, http.StatusInternalServerError, "token store failed", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"csrf_token": token}, "csrf token", nil)
	}
}

// RequireCSRF rejects mutating requests whose X-CSRF-Token header does not
// match the token stored for the session. Safe methods pass through.
func RequireCSRF(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		uid := c.GetString("userID")
		if uid == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		sent := c.GetHeader(csrfHeader)
		if sent == "" {
			response.AbortError(c, http.StatusForbidden, "missing csrf token", nil)
			return
		}
		stored, err := rdb.Get(c.Request.Context(), helpers.CSRFKey(uid)).Result()
		if err != nil || stored == "" {
			response.AbortError(c, http.StatusForbidden, "invalid csrf token", nil)
			return
		}
		if subtle.ConstantTimeCompare([]byte(sent), []byte(stored)) != 1 {
			response.AbortError(c, http.StatusForbidden, "invalid csrf token", nil)
			return
		}
		c.Next()
	}
}
