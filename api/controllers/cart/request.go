package cart

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/teslo-shop/storefront/internal/cart"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
)

type addItemRequest struct {
	ProductID string          `json:"_id" validate:"required"`
	Slug      string          `json:"slug"`
	Size      string          `json:"size" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Gender    string          `json:"gender"`
}

func (r addItemRequest) toLineItem() (cartsvc.LineItem, error) {
	size, err := enums.ParseSize(r.Size)
	if err != nil {
		return cartsvc.LineItem{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size").
			WithDetails(map[string]string{"size": "is invalid"})
	}
	if r.Price.IsNegative() {
		return cartsvc.LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid price").
			WithDetails(map[string]string{"price": "must be at least 0"})
	}
	return cartsvc.LineItem{
		ProductID: r.ProductID,
		Slug:      r.Slug,
		Size:      size,
		Title:     r.Title,
		Image:     r.Image,
		Price:     r.Price,
		Quantity:  r.Quantity,
		Gender:    r.Gender,
	}, nil
}

// Quantity is a pointer so a missing field is rejected instead of decoding to 0,
// which would remove the line.
type setQuantityRequest struct {
	ProductID string `json:"_id" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

func parseKey(productID, rawSize string) (cartsvc.Key, error) {
	size, err := enums.ParseSize(rawSize)
	if err != nil {
		return cartsvc.Key{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size").
			WithDetails(map[string]string{"size": "is invalid"})
	}
	return cartsvc.Key{ProductID: productID, Size: size}, nil
}
