package repository

import (
	"context"

	"github.com/davitren/storefront/internal/domain/entity"
)

// ProductRepository defines catalog persistence. Listing methods take an
// (offset, limit) window computed by the shared pagination helper.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	// Delete removes the product only when ownerID matches.
	Delete(ctx context.Context, id, ownerID string) error

	List(ctx context.Context, offset, limit int) ([]entity.Product, error)
	Count(ctx context.Context) (int, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]entity.Product, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}
