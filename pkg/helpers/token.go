package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateToken returns n cryptographically random bytes encoded URL-safe.
// Used for password-reset tokens and anti-forgery tokens.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
