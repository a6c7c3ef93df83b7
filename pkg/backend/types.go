package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one purchased line as stored by the backend.
type OrderItem struct {
	ProductID string          `json:"_id"`
	Title     string          `json:"title"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Size      string          `json:"size"`
	Gender    string          `json:"gender,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// ShippingAddress is the destination recorded on an order.
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	Address2  string `json:"address2,omitempty"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// OrderOwner is the account an order belongs to. The backend sends either the
// bare account id or the populated user document.
type OrderOwner struct {
	ID    string `json:"_id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

func (o *OrderOwner) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = OrderOwner{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*o = OrderOwner{ID: id}
		return nil
	}
	type plain OrderOwner
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode order owner: %w", err)
	}
	*o = OrderOwner(p)
	return nil
}

// Populated reports whether the backend embedded the user document.
func (o OrderOwner) Populated() bool {
	return o.Email != "" || o.Name != ""
}

// Order is a placed order as returned by the backend.
type Order struct {
	ID              string          `json:"_id"`
	User            OrderOwner      `json:"user"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	NumberOfItems   int             `json:"numberOfItems"`
	SubTotal        decimal.Decimal `json:"subTotal"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	TransactionID   string          `json:"transactionId,omitempty"`
	CreatedAt       *time.Time      `json:"createdAt,omitempty"`
}

// Product is a catalog entry as returned by the admin products endpoint.
type Product struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Images      []string        `json:"images"`
	InStock     int             `json:"inStock"`
	Price       decimal.Decimal `json:"price"`
	Sizes       []string        `json:"sizes"`
	Slug        string          `json:"slug"`
	Tags        []string        `json:"tags,omitempty"`
	Type        string          `json:"type"`
	Gender      string          `json:"gender"`
}

// User is an account as returned by the admin users endpoint.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// PayOrderRequest is the body of POST /order/pays.
type PayOrderRequest struct {
	TransactionID string `json:"transactionId"`
	OrderID       string `json:"orderId"`
}

// UpdateRoleRequest is the body of PUT /admin/users. The field name is the backend's.
type UpdateRoleRequest struct {
	UserID string `json:"userId"`
	Rol    string `json:"rol"`
}

// Ack is the {ok, message} reply used by the write endpoints.
type Ack struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type orderEnvelope struct {
	Ack
	Order *Order `json:"order,omitempty"`
}

type ordersEnvelope struct {
	Ack
	Orders []Order `json:"orders"`
}

type productsEnvelope struct {
	Ack
	Products []Product `json:"products"`
}

type usersEnvelope struct {
	Ack
	Users []User `json:"users"`
}
