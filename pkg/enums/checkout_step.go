package enums

import "fmt"

// CheckoutStep is a position in the checkout flow. Steps only move forward.
type CheckoutStep string

const (
	CheckoutStepCart    CheckoutStep = "cart"
	CheckoutStepAddress CheckoutStep = "address"
	CheckoutStepSummary CheckoutStep = "summary"
	CheckoutStepPaid    CheckoutStep = "paid"
)

var checkoutStepOrder = []CheckoutStep{
	CheckoutStepCart,
	CheckoutStepAddress,
	CheckoutStepSummary,
	CheckoutStepPaid,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	return c.index() >= 0
}

// Next returns the step that follows c, or false when c is terminal.
func (c CheckoutStep) Next() (CheckoutStep, bool) {
	i := c.index()
	if i < 0 || i == len(checkoutStepOrder)-1 {
		return "", false
	}
	return checkoutStepOrder[i+1], true
}

func (c CheckoutStep) index() int {
	for i, candidate := range checkoutStepOrder {
		if candidate == c {
			return i
		}
	}
	return -1
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range checkoutStepOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
