package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teslo-shop/storefront/pkg/backend"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/pubsub"
)

type stubPayer struct {
	mu     sync.Mutex
	calls  []backend.PayOrderRequest
	ack    backend.Ack
	err    error
	block  chan struct{}
	called chan struct{}
}

func (p *stubPayer) PayOrder(ctx context.Context, token string, req backend.PayOrderRequest) (backend.Ack, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()
	if p.called != nil {
		p.called <- struct{}{}
	}
	if p.block != nil {
		<-p.block
	}
	return p.ack, p.err
}

type stubVerifier struct {
	status enums.CaptureStatus
	err    error
	calls  int
}

func (v *stubVerifier) VerifyCapture(ctx context.Context, paymentID string) (enums.CaptureStatus, error) {
	v.calls++
	return v.status, v.err
}

type stubEvents struct {
	events []pubsub.Event
	err    error
}

func (e *stubEvents) Publish(ctx context.Context, event pubsub.Event) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.events = append(e.events, event)
	return "msg-1", nil
}

func newService(t *testing.T, params ServiceParams) Service {
	t.Helper()
	if params.Guard == nil {
		params.Guard = NewLocalGuard()
	}
	params.Logger = logger.Nop()
	params.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func completed() Capture {
	return Capture{TransactionID: "txn-1", Status: "COMPLETED"}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(ServiceParams{Guard: NewLocalGuard(), Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without payer")
	}
	if _, err := NewService(ServiceParams{Payer: &stubPayer{}, Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without guard")
	}
}

func TestConfirmRejectsNonCompletedStatus(t *testing.T) {
	payer := &stubPayer{ack: backend.Ack{OK: true}}
	svc := newService(t, ServiceParams{Payer: payer})

	for _, status := range []string{"PENDING", "APPROVED", "", "weird"} {
		_, err := svc.Confirm(context.Background(), "tok", "u1", "order-1", Capture{TransactionID: "txn-1", Status: status})
		if !pkgerrors.IsCode(err, pkgerrors.CodePaymentNotCompleted) {
			t.Fatalf("status %q: expected payment not completed, got %v", status, err)
		}
	}
	if len(payer.calls) != 0 {
		t.Fatalf("backend must not be called, got %d calls", len(payer.calls))
	}
}

func TestConfirmRequiresIdentifiers(t *testing.T) {
	svc := newService(t, ServiceParams{Payer: &stubPayer{}})
	_, err := svc.Confirm(context.Background(), "tok", "u1", " ", completed())
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmSuccessPublishesEvent(t *testing.T) {
	payer := &stubPayer{ack: backend.Ack{OK: true, Message: "Orden pagada"}}
	verifier := &stubVerifier{status: enums.CaptureStatusCompleted}
	events := &stubEvents{}
	svc := newService(t, ServiceParams{Payer: payer, Verifier: verifier, Events: events})

	receipt, err := svc.Confirm(context.Background(), "tok", "u1", "order-1", completed())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if receipt.Status != enums.CaptureStatusCompleted || receipt.Message != "Orden pagada" || receipt.EventID != "msg-1" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if len(payer.calls) != 1 || payer.calls[0].OrderID != "order-1" || payer.calls[0].TransactionID != "txn-1" {
		t.Fatalf("unexpected backend calls %+v", payer.calls)
	}
	if verifier.calls != 1 {
		t.Fatalf("expected one verification, got %d", verifier.calls)
	}
	if len(events.events) != 1 || events.events[0].Type != EventOrderPaid || events.events[0].AggregateID != "order-1" {
		t.Fatalf("unexpected events %+v", events.events)
	}
}

func TestConfirmVerifierMismatchStopsBeforeBackend(t *testing.T) {
	payer := &stubPayer{ack: backend.Ack{OK: true}}
	svc := newService(t, ServiceParams{Payer: payer, Verifier: &stubVerifier{status: enums.CaptureStatusPending}})

	_, err := svc.Confirm(context.Background(), "tok", "u1", "order-1", completed())
	if !pkgerrors.IsCode(err, pkgerrors.CodePaymentNotCompleted) {
		t.Fatalf("expected payment not completed, got %v", err)
	}
	if len(payer.calls) != 0 {
		t.Fatal("backend must not be called when the provider disagrees")
	}
}

func TestConfirmBackendFailureReleasesGuard(t *testing.T) {
	payer := &stubPayer{err: pkgerrors.New(pkgerrors.CodeDependency, "Orden no se pudo pagar")}
	guard := NewLocalGuard()
	svc := newService(t, ServiceParams{Payer: payer, Guard: guard})

	_, err := svc.Confirm(context.Background(), "tok", "u1", "order-1", completed())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}

	payer.err = nil
	payer.ack = backend.Ack{OK: true}
	if _, err := svc.Confirm(context.Background(), "tok", "u1", "order-1", completed()); err != nil {
		t.Fatalf("retry after failure should succeed, got %v", err)
	}
}

func TestConfirmPublishFailureIsBestEffort(t *testing.T) {
	payer := &stubPayer{ack: backend.Ack{OK: true}}
	svc := newService(t, ServiceParams{Payer: payer, Events: &stubEvents{err: errors.New("topic gone")}})

	receipt, err := svc.Confirm(context.Background(), "tok", "u1", "order-1", completed())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if receipt.EventID != "" {
		t.Fatalf("expected no event id, got %q", receipt.EventID)
	}
}

func TestConfirmRejectsConcurrentAttempt(t *testing.T) {
	payer := &stubPayer{ack: backend.Ack{OK: true}, block: make(chan struct{}), called: make(chan struct{}, 1)}
	svc := newService(t, ServiceParams{Payer: payer})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Confirm(context.Background(), "tok", "u1", "order-1", completed())
		done <- err
	}()
	<-payer.called

	_, err := svc.Confirm(context.Background(), "tok", "u1", "order-1", completed())
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for concurrent attempt, got %v", err)
	}

	close(payer.block)
	if err := <-done; err != nil {
		t.Fatalf("first confirmation: %v", err)
	}
}
