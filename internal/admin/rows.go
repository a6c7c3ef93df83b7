package admin

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teslo-shop/storefront/pkg/backend"
	"github.com/teslo-shop/storefront/pkg/enums"
)

// Actor is the signed-in admin requesting a view.
type Actor struct {
	UserID string
	Email  string
	Name   string
	Token  string
}

type OrderRow struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	NoProducts int             `json:"noProducts"`
	IsPaid     bool            `json:"isPaid"`
	CreatedAt  *time.Time      `json:"createdAt,omitempty"`
}

type ProductRow struct {
	ID      string          `json:"id"`
	Img     string          `json:"img"`
	Title   string          `json:"title"`
	Gender  string          `json:"gender"`
	Type    string          `json:"type"`
	InStock int             `json:"inStock"`
	Price   decimal.Decimal `json:"price"`
	Sizes   string          `json:"sizes"`
	Slug    string          `json:"slug"`
}

type UserRow struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  enums.Role `json:"role"`
}

// orderRow projects an order. Owner details come from the populated user document;
// when the backend only sent the id, the requesting admin's identity is shown.
func orderRow(order backend.Order, actor Actor) OrderRow {
	email, name := actor.Email, actor.Name
	if order.User.Populated() {
		email, name = order.User.Email, order.User.Name
	}
	return OrderRow{
		ID:         order.ID,
		Email:      email,
		Name:       name,
		Total:      order.Total,
		NoProducts: order.NumberOfItems,
		IsPaid:     order.IsPaid,
		CreatedAt:  order.CreatedAt,
	}
}

// productRow uses the second image as the thumbnail, which is the catalog's
// cropped variant.
func productRow(p backend.Product) ProductRow {
	img := ""
	switch {
	case len(p.Images) > 1:
		img = p.Images[1]
	case len(p.Images) == 1:
		img = p.Images[0]
	}
	return ProductRow{
		ID:      p.ID,
		Img:     img,
		Title:   p.Title,
		Gender:  p.Gender,
		Type:    p.Type,
		InStock: p.InStock,
		Price:   p.Price,
		Sizes:   strings.Join(p.Sizes, ", "),
		Slug:    p.Slug,
	}
}

func userRow(u backend.User) UserRow {
	return UserRow{ID: u.ID, Email: u.Email, Name: u.Name, Role: enums.Role(u.Role)}
}

func cloneUsers(rows []UserRow) []UserRow {
	if rows == nil {
		return nil
	}
	out := make([]UserRow, len(rows))
	copy(out, rows)
	return out
}
