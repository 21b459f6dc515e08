package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. OwnerID references the account that created
// it; only the owner may edit or delete it.
type Product struct {
	ID          string
	Title       string
	Price       decimal.Decimal
	Description string
	ImageURL    string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
