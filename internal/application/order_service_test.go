package application

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/internal/invoice"
	"github.com/davitren/storefront/pkg/apperr"
)

type orderFixture struct {
	users    *fakeUserRepo
	products *fakeProductRepo
	carts    *fakeCartRepo
	orders   *fakeOrderRepo
	svc      *OrderService
	user     *entity.User
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		users:    newFakeUserRepo(),
		products: newFakeProductRepo(),
		carts:    newFakeCartRepo(),
		orders:   newFakeOrderRepo(),
	}
	f.svc = NewOrderService(f.orders, f.carts, f.products, f.users, nil, t.TempDir())
	f.user = &entity.User{Email: "buyer@example.com", Name: "Buyer"}
	require.NoError(t, f.users.Create(context.Background(), f.user))
	return f
}

func TestCheckoutSnapshotsCartAndClearsIt(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	book := seedProduct(t, f.products, "Book", "12.50", "owner-1")
	pen := seedProduct(t, f.products, "Pen", "7.99", "owner-1")
	require.NoError(t, f.carts.AddItem(ctx, f.user.ID, book.ID))
	require.NoError(t, f.carts.AddItem(ctx, f.user.ID, book.ID))
	require.NoError(t, f.carts.AddItem(ctx, f.user.ID, pen.ID))

	o, err := f.svc.Checkout(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, f.user.Email, o.UserEmail)
	require.Len(t, o.Items, 2)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("32.99")), "got %s", o.Total)

	items, err := f.carts.Items(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, items, "cart must be empty after checkout")
}

func TestOrderSnapshotSurvivesProductEdits(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	p := seedProduct(t, f.products, "Book", "12.50", "owner-1")
	require.NoError(t, f.carts.AddItem(ctx, f.user.ID, p.ID))

	o, err := f.svc.Checkout(ctx, f.user.ID)
	require.NoError(t, err)

	// Edit and then delete the product after checkout.
	p.Title = "Renamed"
	p.Price = decimal.RequireFromString("99.99")
	require.NoError(t, f.products.Update(ctx, p))
	require.NoError(t, f.products.Delete(ctx, p.ID, "owner-1"))

	got, err := f.svc.Get(ctx, f.user.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book", got.Items[0].Title)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("12.50")))
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.user.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCheckoutFailsWhenCartProductDeleted(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	keep := seedProduct(t, f.products, "Keep", "5.00", "owner-1")
	gone := seedProduct(t, f.products, "Gone", "9.00", "owner-1")
	require.NoError(t, f.carts.AddItem(ctx, f.user.ID, keep.ID))
	require.NoError(t, f.carts.AddItem(ctx, f.user.ID, gone.ID))
	require.NoError(t, f.products.Delete(ctx, gone.ID, "owner-1"))

	_, err := f.svc.Checkout(ctx, f.user.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	// The failed checkout must not create an order or touch the cart.
	orders, err := f.svc.ListForUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	items, err := f.carts.Items(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGetOrderOwnership(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	p := seedProduct(t, f.products, "Book", "12.50", "owner-1")
	require.NoError(t, f.carts.AddItem(ctx, f.user.ID, p.ID))
	o, err := f.svc.Checkout(ctx, f.user.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, "someone-else", o.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.svc.Get(ctx, f.user.ID, "missing")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestWriteInvoiceWritesFileAndStream(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	p := seedProduct(t, f.products, "Book", "12.50", "owner-1")
	require.NoError(t, f.carts.AddItem(ctx, f.user.ID, p.ID))
	o, err := f.svc.Checkout(ctx, f.user.ID)
	require.NoError(t, err)

	sink, err := f.svc.PrepareInvoice(o)
	require.NoError(t, err)
	var stream bytes.Buffer
	require.NoError(t, f.svc.WriteInvoice(o, sink, &stream))

	path := filepath.Join(f.svc.InvoiceDir, invoice.FileName(o.ID))
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, onDisk, stream.Bytes(), "stored invoice and streamed invoice must be the same bytes")
	assert.Contains(t, stream.String(), "Book - 1 x $12.50")
}

func TestPrepareInvoiceFailsWhenDirUnwritable(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	p := seedProduct(t, f.products, "Book", "12.50", "owner-1")
	require.NoError(t, f.carts.AddItem(ctx, f.user.ID, p.ID))
	o, err := f.svc.Checkout(ctx, f.user.ID)
	require.NoError(t, err)

	// A regular file blocking the invoice directory path makes MkdirAll
	// fail, so the sink must fail before any response byte is committed.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	f.svc.InvoiceDir = filepath.Join(blocker, "invoices")

	sink, err := f.svc.PrepareInvoice(o)
	require.Error(t, err)
	assert.Nil(t, sink)
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
}
