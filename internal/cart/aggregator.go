package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultMaxQuantity bounds a single line when no limit is configured.
const DefaultMaxQuantity = 10

// Aggregator reduces cart commands into snapshots. It holds no state of its own.
type Aggregator struct {
	TaxRate     decimal.Decimal
	MaxQuantity int
}

// NewAggregator returns an aggregator for the configured tax rate and per-line limit.
func NewAggregator(taxRate decimal.Decimal, maxQuantity int) Aggregator {
	if maxQuantity <= 0 {
		maxQuantity = DefaultMaxQuantity
	}
	return Aggregator{TaxRate: taxRate, MaxQuantity: maxQuantity}
}

// Reduce applies cmd to current and returns the next snapshot. current is never modified.
// Whenever the item collection changes the totals are recomputed in the same call.
func (a Aggregator) Reduce(current Snapshot, cmd Command) Snapshot {
	next := current.clone()

	switch c := cmd.(type) {
	case Load:
		next.Loaded = true
		next.Items = make([]LineItem, 0, len(c.Items))
		for _, item := range c.Items {
			if item.Quantity < 1 {
				continue
			}
			next.Items = append(next.Items, item)
		}
	case AddLineItem:
		item := c.Item
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if idx := indexOf(next.Items, item.Key()); idx >= 0 {
			next.Items[idx].Quantity += item.Quantity
		} else {
			next.Items = append(next.Items, item)
		}
	case SetQuantity:
		idx := indexOf(next.Items, c.Key)
		if idx < 0 {
			return next
		}
		switch {
		case c.Quantity <= 0:
			next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
		case c.Quantity > a.maxQuantity():
			next.Items[idx].Quantity = a.maxQuantity()
		default:
			next.Items[idx].Quantity = c.Quantity
		}
	case RemoveLineItem:
		idx := indexOf(next.Items, c.Key)
		if idx < 0 {
			return next
		}
		next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	case RecomputeTotals:
	case SetShippingAddress:
		addr := c.Address
		next.ShippingAddress = &addr
		return next
	default:
		panic(fmt.Sprintf("cart: unhandled command %T", cmd))
	}

	next.Totals = a.Totals(next.Items)
	return next
}

// Totals derives the order totals from items. All four values are computed together.
func (a Aggregator) Totals(items []LineItem) Totals {
	var totals Totals
	subtotal := decimal.Zero
	for _, item := range items {
		totals.ItemCount += item.Quantity
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	tax := subtotal.Mul(a.TaxRate)
	totals.Subtotal = subtotal
	totals.Tax = tax
	totals.Total = subtotal.Add(tax)
	return totals
}

func (a Aggregator) maxQuantity() int {
	if a.MaxQuantity <= 0 {
		return DefaultMaxQuantity
	}
	return a.MaxQuantity
}

func indexOf(items []LineItem, key Key) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}
