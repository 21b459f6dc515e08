package entity

import (
	"time"
)

// User is the aggregate root for the account domain. The cart lives inside
// this aggregate: cart items belong to exactly one user and are loaded and
// persisted through the user repository side of the store.
//
// Passwords are stored as bcrypt hashes in PasswordHash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string

	// ResetToken and ResetTokenExpiresAt are always set together and
	// cleared together. A token is valid only while now < expiry.
	ResetToken          *string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is one (product, quantity) pair in a user's cart. A cart holds at
// most one item per product; re-adding a product increments Quantity.
type CartItem struct {
	ProductID string
	Quantity  int
}
