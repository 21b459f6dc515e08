package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/internal/domain/repository"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order header and every snapshot item inside one
// transaction so an order can never exist half-written.
func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, user_email, total)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, o.UserID, o.UserEmail, o.Total)
	if err := row.Scan(&o.ID, &o.CreatedAt); err != nil {
		return err
	}

	for i, it := range o.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, position, product_id, title, price, description, image_url, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, o.ID, i, it.ProductID, it.Title, it.Price, it.Description, it.ImageURL, it.Quantity)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o := &entity.Order{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, user_email, total, created_at
		FROM orders
		WHERE id = $1
	`, id)
	if err := row.Scan(&o.ID, &o.UserID, &o.UserEmail, &o.Total, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, user_email, total, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		o := entity.Order{}
		if err := rows.Scan(&o.ID, &o.UserID, &o.UserEmail, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *OrderRepository) itemsFor(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, title, price, description, image_url, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		it := entity.OrderItem{}
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Price, &it.Description, &it.ImageURL, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
