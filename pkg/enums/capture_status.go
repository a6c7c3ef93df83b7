package enums

import (
	"fmt"
	"strings"
)

// CaptureStatus is the status reported by the payment widget or provider for a capture.
type CaptureStatus string

const (
	CaptureStatusCompleted CaptureStatus = "COMPLETED"
	CaptureStatusApproved  CaptureStatus = "APPROVED"
	CaptureStatusPending   CaptureStatus = "PENDING"
	CaptureStatusCanceled  CaptureStatus = "CANCELED"
	CaptureStatusFailed    CaptureStatus = "FAILED"
)

var validCaptureStatuses = []CaptureStatus{
	CaptureStatusCompleted,
	CaptureStatusApproved,
	CaptureStatusPending,
	CaptureStatusCanceled,
	CaptureStatusFailed,
}

// String implements fmt.Stringer.
func (c CaptureStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CaptureStatus.
func (c CaptureStatus) IsValid() bool {
	for _, candidate := range validCaptureStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsCompleted reports whether funds were captured.
func (c CaptureStatus) IsCompleted() bool {
	return c == CaptureStatusCompleted
}

// ParseCaptureStatus converts raw input into a CaptureStatus. Matching is case-insensitive.
func ParseCaptureStatus(value string) (CaptureStatus, error) {
	normalized := CaptureStatus(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid capture status %q", value)
}
