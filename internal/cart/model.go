package cart

import (
	"github.com/shopspring/decimal"
	"github.com/teslo-shop/storefront/pkg/enums"
)

// LineItem is a product variant placed in the cart. The JSON shape matches what the
// storefront persists under the `cart` key.
type LineItem struct {
	ProductID string          `json:"_id" validate:"required"`
	Slug      string          `json:"slug"`
	Size      enums.Size      `json:"size" validate:"required"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Gender    string          `json:"gender,omitempty"`
}

// Key returns the identity used when matching lines.
func (li LineItem) Key() Key {
	return Key{ProductID: li.ProductID, Size: li.Size}
}

// Key identifies a line by product and size. Title, price and image never take part.
type Key struct {
	ProductID string     `json:"_id" validate:"required"`
	Size      enums.Size `json:"size" validate:"required"`
}

type Totals struct {
	ItemCount int             `json:"numberOfItems"`
	Subtotal  decimal.Decimal `json:"subTotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// ShippingAddress is the order destination. Every field except Address2 is mandatory.
type ShippingAddress struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Address2  string `json:"address2,omitempty"`
	Zip       string `json:"zip" validate:"required"`
	City      string `json:"city" validate:"required"`
	Country   string `json:"country" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

// Complete reports whether all mandatory fields carry a value.
func (a *ShippingAddress) Complete() bool {
	if a == nil {
		return false
	}
	for _, v := range []string{a.FirstName, a.LastName, a.Address, a.Zip, a.City, a.Country, a.Phone} {
		if v == "" {
			return false
		}
	}
	return true
}

// Snapshot is the cart aggregate at one point in time. Loaded separates "not hydrated yet"
// from "hydrated and empty".
type Snapshot struct {
	Loaded          bool             `json:"isLoaded"`
	Items           []LineItem       `json:"cart"`
	Totals          Totals           `json:"totals"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
}

// Empty reports whether the snapshot holds no line items.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

func (s Snapshot) clone() Snapshot {
	next := s
	next.Items = make([]LineItem, len(s.Items))
	copy(next.Items, s.Items)
	if s.ShippingAddress != nil {
		addr := *s.ShippingAddress
		next.ShippingAddress = &addr
	}
	return next
}
