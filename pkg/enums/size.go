package enums

import (
	"fmt"
	"strings"
)

// Size is a garment size offered by the catalog.
type Size string

const (
	SizeXS   Size = "XS"
	SizeS    Size = "S"
	SizeM    Size = "M"
	SizeL    Size = "L"
	SizeXL   Size = "XL"
	SizeXXL  Size = "XXL"
	SizeXXXL Size = "XXXL"
)

var validSizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL}

// String implements fmt.Stringer.
func (s Size) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Size.
func (s Size) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the position of the size from smallest to largest, or -1 when unknown.
func (s Size) Rank() int {
	for i, candidate := range validSizes {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseSize converts raw input into a Size. Matching is case-insensitive.
func ParseSize(value string) (Size, error) {
	normalized := Size(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid size %q", value)
}
