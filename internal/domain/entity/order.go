package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable snapshot of a cart at checkout time. Items copy the
// full product fields as they were at that moment, so later product edits or
// deletes never change historical orders. Orders are created once and never
// mutated or deleted by the application.
type Order struct {
	ID        string
	UserID    string
	UserEmail string
	Total     decimal.Decimal
	Items     []OrderItem
	CreatedAt time.Time
}

// OrderItem is a by-value copy of one cart line: every product field at
// purchase time plus the quantity.
type OrderItem struct {
	ProductID   string
	Title       string
	Price       decimal.Decimal
	Description string
	ImageURL    string
	Quantity    int
}

// ItemTotal returns quantity x unit price for a single line.
func (i OrderItem) ItemTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums quantity x unit price over the stored items. Invoice
// rendering uses this, never live product prices.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.ItemTotal())
	}
	return total
}
