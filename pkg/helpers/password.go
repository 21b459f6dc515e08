package helpers

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades hash speed for brute-force resistance. 12 keeps a
// single hash under ~300ms on current hardware.
const bcryptCost = 12

// HashPassword hashes a plain text password with bcrypt. The result is
// salted and one-way.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword reports whether plain matches the bcrypt hash.
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
