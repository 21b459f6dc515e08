package application

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/internal/domain/repository"
	"github.com/davitren/storefront/internal/invoice"
	"github.com/davitren/storefront/pkg/apperr"
)

// OrderService turns carts into immutable orders and renders their
// invoices. Orders store copies of product data, so nothing here ever
// reads live prices after checkout.
type OrderService struct {
	Orders     repository.OrderRepository
	Carts      repository.CartRepository
	Products   repository.ProductRepository
	Users      repository.UserRepository
	Logger     *logrus.Logger
	InvoiceDir string
}

func NewOrderService(orders repository.OrderRepository, carts repository.CartRepository, products repository.ProductRepository, users repository.UserRepository, logger *logrus.Logger, invoiceDir string) *OrderService {
	return &OrderService{
		Orders:     orders,
		Carts:      carts,
		Products:   products,
		Users:      users,
		Logger:     logger,
		InvoiceDir: invoiceDir,
	}
}

// Checkout snapshots the cart into a new order and then clears the cart.
// Every cart entry is resolved to full current product data and copied by
// value. If any referenced product no longer exists the whole checkout
// fails and the cart is left untouched.
func (s *OrderService) Checkout(ctx context.Context, userID string) (*entity.Order, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	items, err := s.Carts.Items(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(items) == 0 {
		return nil, apperr.Validation("cart is empty", nil)
	}

	o := &entity.Order{
		UserID:    u.ID,
		UserEmail: u.Email,
		Items:     make([]entity.OrderItem, 0, len(items)),
	}
	for _, it := range items {
		p, err := s.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.NotFound("a product in your cart no longer exists")
			}
			return nil, apperr.Internal(err)
		}
		o.Items = append(o.Items, entity.OrderItem{
			ProductID:   p.ID,
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Quantity:    it.Quantity,
		})
	}
	o.Total = o.ComputeTotal()

	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.Carts.Clear(ctx, userID); err != nil {
		// The order exists; a stale cart is recoverable, losing the
		// order is not.
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("order_id", o.ID).Error("cart clear after checkout failed")
		}
	}
	return o, nil
}

// ListForUser returns the requester's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]entity.Order, error) {
	orders, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// Get returns one order, only to its owner.
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("no order found")
		}
		return nil, apperr.Internal(err)
	}
	if o.UserID != userID {
		return nil, apperr.Forbidden("unauthorized")
	}
	return o, nil
}

// InvoiceOrder runs the existence and ownership checks for an invoice
// request. Handlers must call this before streaming a single byte.
func (s *OrderService) InvoiceOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	return s.Get(ctx, userID, orderID)
}

// InvoiceSink is the durable file half of an invoice render, opened before
// the handler commits any response byte so a file-creation failure can
// still produce a proper error response.
type InvoiceSink struct {
	file *os.File
	path string
}

// PrepareInvoice creates the invoice directory and file. Handlers call it
// before writing headers; a failure here must fail the whole request.
func (s *OrderService) PrepareInvoice(o *entity.Order) (*InvoiceSink, error) {
	if err := os.MkdirAll(s.InvoiceDir, 0o755); err != nil {
		return nil, apperr.Internal(err)
	}
	path := filepath.Join(s.InvoiceDir, invoice.FileName(o.ID))
	f, err := os.Create(path)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &InvoiceSink{file: f, path: path}, nil
}

// WriteInvoice renders the order's PDF once, feeding the prepared invoice
// file and w (the HTTP response) from the same pass. If either sink fails
// the whole write fails, and the partial invoice file is removed.
func (s *OrderService) WriteInvoice(o *entity.Order, sink *InvoiceSink, w io.Writer) error {
	if err := invoice.Render(o, io.MultiWriter(sink.file, w)); err != nil {
		_ = sink.file.Close()
		_ = os.Remove(sink.path)
		return apperr.Internal(err)
	}
	if err := sink.file.Close(); err != nil {
		_ = os.Remove(sink.path)
		return apperr.Internal(err)
	}
	return nil
}
