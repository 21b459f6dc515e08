package repository

import (
	"context"

	"github.com/davitren/storefront/internal/domain/entity"
)

// CartRepository persists the cart embedded in the user aggregate. Every
// mutation is durable; there is no in-memory cart state across requests.
type CartRepository interface {
	// AddItem inserts a (user, product) row with quantity 1, or increments
	// the quantity when the product is already in the cart.
	AddItem(ctx context.Context, userID, productID string) error
	// RemoveItem deletes the entry for productID. Removing a product that
	// is not in the cart is a no-op success.
	RemoveItem(ctx context.Context, userID, productID string) error
	// Clear empties the cart. Called after a successful checkout.
	Clear(ctx context.Context, userID string) error
	Items(ctx context.Context, userID string) ([]entity.CartItem, error)
}
