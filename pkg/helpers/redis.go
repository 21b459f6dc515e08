package helpers

import (
	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client. Redis backs the session
// store, anti-forgery tokens, and rate limiting.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// SessionKey is the redis hash key holding a logged-in user's session.
func SessionKey(userID string) string {
	return "user:session:" + userID
}

// CSRFKey holds the anti-forgery token issued to a session.
func CSRFKey(userID string) string {
	return "user:csrf:" + userID
}
