package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teslo-shop/storefront/pkg/backend"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/metrics"
	"github.com/teslo-shop/storefront/pkg/pubsub"
)

// EventOrderPaid is published once the backend accepted a payment.
const EventOrderPaid = "order.paid"

const (
	outcomePaid         = "paid"
	outcomeNotCompleted = "not_completed"
	outcomeInFlight     = "in_flight"
	outcomeVerifyFailed = "verification_failed"
	outcomeBackendError = "backend_failed"
	outcomeInvalid      = "invalid"
)

// Capture is what the payment widget reported after approval.
type Capture struct {
	TransactionID string `json:"transactionId" validate:"required"`
	Status        string `json:"status" validate:"required"`
}

// Receipt describes an accepted payment.
type Receipt struct {
	OrderID       string              `json:"orderId"`
	TransactionID string              `json:"transactionId"`
	Status        enums.CaptureStatus `json:"status"`
	Message       string              `json:"message,omitempty"`
	EventID       string              `json:"eventId,omitempty"`
}

// PaymentVerifier re-reads a capture from the payment provider.
type PaymentVerifier interface {
	VerifyCapture(ctx context.Context, paymentID string) (enums.CaptureStatus, error)
}

// OrderPayer marks an order as paid on the shop backend.
type OrderPayer interface {
	PayOrder(ctx context.Context, token string, req backend.PayOrderRequest) (backend.Ack, error)
}

// EventPublisher publishes order events.
type EventPublisher interface {
	Publish(ctx context.Context, event pubsub.Event) (string, error)
}

// OrderPaidEvent is the payload of EventOrderPaid.
type OrderPaidEvent struct {
	OrderID       string    `json:"orderId"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId,omitempty"`
	PaidAt        time.Time `json:"paidAt"`
}

// Service confirms payment captures.
type Service interface {
	Confirm(ctx context.Context, token, userID, orderID string, capture Capture) (Receipt, error)
}

// ServiceParams configures the confirmation pipeline. Verifier and Events are optional.
type ServiceParams struct {
	Payer    OrderPayer
	Guard    InFlightGuard
	Verifier PaymentVerifier
	Events   EventPublisher
	Metrics  *metrics.Storefront
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	payer    OrderPayer
	guard    InFlightGuard
	verifier PaymentVerifier
	events   EventPublisher
	metrics  *metrics.Storefront
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Payer == nil {
		return nil, fmt.Errorf("order payer required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("in-flight guard required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		payer:    params.Payer,
		guard:    params.Guard,
		verifier: params.Verifier,
		events:   params.Events,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Confirm forwards a completed capture to the backend. Any failure leaves the order
// unpaid and can be retried; nothing is retried automatically.
func (s *service) Confirm(ctx context.Context, token, userID, orderID string, capture Capture) (Receipt, error) {
	orderID = strings.TrimSpace(orderID)
	transactionID := strings.TrimSpace(capture.TransactionID)
	if orderID == "" || transactionID == "" {
		s.metrics.IncPaymentConfirmation(outcomeInvalid)
		return Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "order id and transaction id are required")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":       orderID,
		"transaction_id": transactionID,
	})

	status, err := enums.ParseCaptureStatus(capture.Status)
	if err != nil || !status.IsCompleted() {
		s.metrics.IncPaymentConfirmation(outcomeNotCompleted)
		s.logg.Warn(s.logg.WithField(ctx, "status", capture.Status), "payment capture not completed")
		return Receipt{}, notCompleted(capture.Status)
	}

	release, ok, err := s.guard.Acquire(ctx, orderID)
	if err != nil {
		s.metrics.IncPaymentConfirmation(outcomeBackendError)
		return Receipt{}, err
	}
	if !ok {
		s.metrics.IncPaymentConfirmation(outcomeInFlight)
		return Receipt{}, pkgerrors.New(pkgerrors.CodeConflict, "payment confirmation already in progress").
			WithDetails(map[string]any{"orderId": orderID})
	}
	defer release()

	if s.verifier != nil {
		verified, err := s.verifier.VerifyCapture(ctx, transactionID)
		if err != nil {
			s.metrics.IncPaymentConfirmation(outcomeVerifyFailed)
			s.logg.Error(ctx, "payment provider verification failed", err)
			return Receipt{}, err
		}
		if !verified.IsCompleted() {
			s.metrics.IncPaymentConfirmation(outcomeNotCompleted)
			return Receipt{}, notCompleted(verified.String())
		}
	}

	ack, err := s.payer.PayOrder(ctx, token, backend.PayOrderRequest{
		TransactionID: transactionID,
		OrderID:       orderID,
	})
	if err != nil {
		s.metrics.IncPaymentConfirmation(outcomeBackendError)
		s.logg.Error(ctx, "backend rejected payment confirmation", err)
		return Receipt{}, err
	}

	receipt := Receipt{
		OrderID:       orderID,
		TransactionID: transactionID,
		Status:        enums.CaptureStatusCompleted,
		Message:       ack.Message,
	}
	receipt.EventID = s.publishPaid(ctx, userID, receipt)

	s.metrics.IncPaymentConfirmation(outcomePaid)
	s.logg.Info(ctx, "order paid")
	return receipt, nil
}

func (s *service) publishPaid(ctx context.Context, userID string, receipt Receipt) string {
	if s.events == nil {
		return ""
	}
	id, err := s.events.Publish(ctx, pubsub.Event{
		Type:        EventOrderPaid,
		AggregateID: receipt.OrderID,
		Payload: OrderPaidEvent{
			OrderID:       receipt.OrderID,
			TransactionID: receipt.TransactionID,
			UserID:        userID,
			PaidAt:        s.now().UTC(),
		},
	})
	if err != nil {
		s.logg.Error(ctx, "publish order paid event", err)
		return ""
	}
	return id
}

func notCompleted(status string) error {
	return pkgerrors.New(pkgerrors.CodePaymentNotCompleted, "payment was not completed").
		WithDetails(map[string]any{"status": status})
}
