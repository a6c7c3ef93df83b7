package cart

// Command is a cart transition. The set of variants is closed: only this package can
// implement it.
type Command interface {
	Name() string
	command()
}

// Load replaces the item collection with what was read from storage.
type Load struct {
	Items []LineItem
}

// AddLineItem appends a line or merges its quantity into an existing one.
type AddLineItem struct {
	Item LineItem
}

// SetQuantity replaces the quantity of one line.
type SetQuantity struct {
	Key      Key
	Quantity int
}

// RemoveLineItem drops a line. Removing an absent line is a no-op.
type RemoveLineItem struct {
	Key Key
}

type RecomputeTotals struct{}

// SetShippingAddress replaces the shipping address wholesale.
type SetShippingAddress struct {
	Address ShippingAddress
}

func (Load) Name() string               { return "load" }
func (AddLineItem) Name() string        { return "add_line_item" }
func (SetQuantity) Name() string        { return "set_quantity" }
func (RemoveLineItem) Name() string     { return "remove_line_item" }
func (RecomputeTotals) Name() string    { return "recompute_totals" }
func (SetShippingAddress) Name() string { return "set_shipping_address" }

func (Load) command()               {}
func (AddLineItem) command()        {}
func (SetQuantity) command()        {}
func (RemoveLineItem) command()     {}
func (RecomputeTotals) command()    {}
func (SetShippingAddress) command() {}

// changesItems reports whether the command may alter the item collection as an explicit
// user action, which allows an empty collection to be persisted.
func changesItems(cmd Command) bool {
	switch cmd.(type) {
	case AddLineItem, SetQuantity, RemoveLineItem:
		return true
	default:
		return false
	}
}
