package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/internal/domain/repository"
	"github.com/davitren/storefront/pkg/apperr"
)

// CartLine is a cart entry resolved to full current product data for
// display. Checkout resolves its own lines again at order time.
type CartLine struct {
	Product  entity.Product
	Quantity int
}

// CartView is the cart page payload: resolved lines plus the display total
// computed from current product prices.
type CartView struct {
	Lines []CartLine
	Total decimal.Decimal
}

// CartService mutates the durable per-account cart. Every operation
// persists immediately; no cart state lives in memory between requests.
type CartService struct {
	Carts    repository.CartRepository
	Products repository.ProductRepository
	Logger   *logrus.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *logrus.Logger) *CartService {
	return &CartService{Carts: carts, Products: products, Logger: logger}
}

// Add puts one unit of the product into the cart: an existing entry is
// incremented, otherwise a fresh entry with quantity 1 appears.
func (s *CartService) Add(ctx context.Context, userID, productID string) error {
	if _, err := s.Products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("product not found")
		}
		return apperr.Internal(err)
	}
	if err := s.Carts.AddItem(ctx, userID, productID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Remove drops the product's entry. Removing a product that is not in the
// cart succeeds without effect.
func (s *CartService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.Carts.RemoveItem(ctx, userID, productID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Clear empties the cart. Called only after a successful checkout.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.Carts.Clear(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// View resolves every cart entry to current product data and sums
// quantity x price. Entries whose product has been deleted since being
// added are shown no longer resolvable; they are skipped for display but
// still fail checkout.
func (s *CartService) View(ctx context.Context, userID string) (*CartView, error) {
	items, err := s.Carts.Items(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	view := &CartView{Lines: []CartLine{}, Total: decimal.Zero}
	for _, it := range items {
		p, err := s.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				if s.Logger != nil {
					s.Logger.WithField("product_id", it.ProductID).Warn("cart references deleted product")
				}
				continue
			}
			return nil, apperr.Internal(err)
		}
		view.Lines = append(view.Lines, CartLine{Product: *p, Quantity: it.Quantity})
		view.Total = view.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return view, nil
}
