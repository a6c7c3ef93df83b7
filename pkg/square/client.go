package square

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"

	"github.com/teslo-shop/storefront/pkg/config"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errAccessTokenRequired = errors.New("square access token is required")
	errInvalidSquareEnv    = fmt.Errorf("square environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired      = errors.New("square logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://connect.squareupsandbox.com",
	productionEnv: "https://connect.squareup.com",
}

type paymentsAPI interface {
	Get(ctx context.Context, request *sq.GetPaymentsRequest, opts ...sqoption.RequestOption) (*sq.GetPaymentResponse, error)
}

// Client verifies payment captures against the Square Payments API.
type Client struct {
	payments    paymentsAPI
	environment string
	logger      *logger.Logger
}

// NewClient initializes the Square wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.SquareConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}
	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}

	sdk := sqclient.NewClient(
		sqoption.WithBaseURL(baseURLs[env]),
		sqoption.WithToken(accessToken),
	)

	logg.Info(logg.WithField(ctx, "square_env", env), "square client initialized")
	return &Client{payments: sdk.Payments, environment: env, logger: logg}, nil
}

// Environment reports the normalized Square environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// VerifyCapture fetches the payment and reports its capture status.
func (c *Client) VerifyCapture(ctx context.Context, paymentID string) (enums.CaptureStatus, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	ctx = c.logger.WithField(ctx, "square_payment_id", paymentID)
	c.logger.Debug(ctx, "square.get_payment")

	resp, err := c.payments.Get(ctx, &sq.GetPaymentsRequest{PaymentID: paymentID})
	if err != nil {
		mapped := pkgerrors.Wrap(classify(err), err, "square get payment failed")
		c.logger.Error(ctx, "square.get_payment_failed", mapped)
		return "", mapped
	}

	payment := resp.GetPayment()
	if payment == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "square get payment returned no payment")
	}
	raw := stringValue(payment.GetStatus())
	c.logger.Debug(c.logger.WithField(ctx, "square_status", raw), "square.get_payment_done")

	status, err := enums.ParseCaptureStatus(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "square returned an unknown payment status")
	}
	return status, nil
}

// classify maps a Square SDK failure onto storefront codes. A rejected merchant
// credential is our misconfiguration rather than the shopper's, so it stays DEPENDENCY.
func classify(err error) pkgerrors.Code {
	var apiErr *sqcore.APIError
	if !errors.As(err, &apiErr) || authRejected(apiErr) {
		return pkgerrors.CodeDependency
	}
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	}
	return pkgerrors.CodeDependency
}

func authRejected(apiErr *sqcore.APIError) bool {
	if apiErr.StatusCode == http.StatusUnauthorized {
		return true
	}
	inner := apiErr.Unwrap()
	if inner == nil {
		return false
	}
	var body struct {
		Errors []*sq.Error `json:"errors"`
	}
	if json.Unmarshal([]byte(inner.Error()), &body) != nil {
		return false
	}
	for _, e := range body.Errors {
		if e != nil && e.Category == sq.ErrorCategoryAuthenticationError {
			return true
		}
	}
	return false
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidSquareEnv
	}
}
