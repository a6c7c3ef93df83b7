package square

import (
	"context"
	"errors"
	"net/http"
	"testing"

	sq "github.com/square/square-go-sdk"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"

	"github.com/teslo-shop/storefront/pkg/config"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
)

type fakePayments struct {
	resp *sq.GetPaymentResponse
	err  error
	got  string
}

func (f *fakePayments) Get(ctx context.Context, request *sq.GetPaymentsRequest, opts ...sqoption.RequestOption) (*sq.GetPaymentResponse, error) {
	f.got = request.PaymentID
	return f.resp, f.err
}

func strPtr(v string) *string { return &v }

func TestVerifyCaptureReturnsStatus(t *testing.T) {
	fake := &fakePayments{resp: &sq.GetPaymentResponse{Payment: &sq.Payment{ID: strPtr("pay-1"), Status: strPtr("COMPLETED")}}}
	c := &Client{payments: fake, logger: logger.Nop()}

	status, err := c.VerifyCapture(context.Background(), " pay-1 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != enums.CaptureStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", status)
	}
	if fake.got != "pay-1" {
		t.Fatalf("expected trimmed payment id, got %q", fake.got)
	}
}

func TestVerifyCaptureRejectsEmptyID(t *testing.T) {
	c := &Client{payments: &fakePayments{}, logger: logger.Nop()}
	_, err := c.VerifyCapture(context.Background(), "  ")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVerifyCaptureMapsNotFound(t *testing.T) {
	payload := `{"errors":[{"category":"INVALID_REQUEST_ERROR","code":"NOT_FOUND"}]}`
	fake := &fakePayments{err: sqcore.NewAPIError(http.StatusNotFound, errors.New(payload))}
	c := &Client{payments: fake, logger: logger.Nop()}

	_, err := c.VerifyCapture(context.Background(), "missing")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClassifySquareFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want pkgerrors.Code
	}{
		{"auth category", sqcore.NewAPIError(http.StatusForbidden, errors.New(`{"errors":[{"category":"AUTHENTICATION_ERROR","code":"FORBIDDEN"}]}`)), pkgerrors.CodeDependency},
		{"unauthorized status", sqcore.NewAPIError(http.StatusUnauthorized, errors.New("nope")), pkgerrors.CodeDependency},
		{"bad request", sqcore.NewAPIError(http.StatusBadRequest, errors.New(`{"errors":[{"category":"INVALID_REQUEST_ERROR","code":"BAD_REQUEST"}]}`)), pkgerrors.CodeValidation},
		{"server error", sqcore.NewAPIError(http.StatusBadGateway, errors.New("upstream")), pkgerrors.CodeDependency},
		{"transport", errors.New("dial tcp: timeout"), pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.SquareConfig{AccessToken: "tok"}, nil); err == nil {
		t.Fatal("expected logger requirement")
	}
	if _, err := NewClient(ctx, config.SquareConfig{}, logger.Nop()); err == nil {
		t.Fatal("expected access token requirement")
	}
	if _, err := NewClient(ctx, config.SquareConfig{AccessToken: "tok", Env: "staging"}, logger.Nop()); err == nil {
		t.Fatal("expected invalid env error")
	}
	c, err := NewClient(ctx, config.SquareConfig{AccessToken: "tok", Env: "Production"}, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Environment() != "production" {
		t.Fatalf("unexpected env %q", c.Environment())
	}
}
