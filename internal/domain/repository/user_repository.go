package repository

import (
	"context"
	"time"

	"github.com/davitren/storefront/internal/domain/entity"
)

// UserRepository defines the persistence contract for accounts, including
// the password-reset token lifecycle.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// SetResetToken stores token and expiry together on the account.
	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	// GetByResetToken returns the account holding token, but only while
	// now is before the stored expiry.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	// RedeemResetToken sets the new password hash and clears both token
	// fields in a single write.
	RedeemResetToken(ctx context.Context, userID, passwordHash string) error
}
