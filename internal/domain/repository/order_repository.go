package repository

import (
	"context"

	"github.com/davitren/storefront/internal/domain/entity"
)

// OrderRepository persists immutable orders. There is no update or delete:
// orders are write-once.
type OrderRepository interface {
	// Create stores the order and all of its snapshot items atomically.
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
}
