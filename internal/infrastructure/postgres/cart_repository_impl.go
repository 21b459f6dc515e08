package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/internal/domain/repository"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// AddItem upserts on (user_id, product_id) so a cart never holds two rows
// for the same product.
func (r *CartRepository) AddItem(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + 1
	`, userID, productID)
	return err
}

func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID string) error {
	// Zero rows affected means the product was not in the cart, which is
	// a no-op success.
	_, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	return err
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items WHERE user_id = $1
	`, userID)
	return err
}

func (r *CartRepository) Items(ctx context.Context, userID string) ([]entity.CartItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.CartItem
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

var _ repository.CartRepository = (*CartRepository)(nil)
