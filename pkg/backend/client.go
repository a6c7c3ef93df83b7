// Package backend is the HTTP client for the remote shop REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teslo-shop/storefront/pkg/config"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
)

const (
	defaultTimeout      = 10 * time.Second
	adminTokenHeader    = "x-token"
	authorizationHeader = "Authorization"
)

const errorBodyReadLimit int64 = 1024

var (
	errBaseURLRequired = errors.New("backend base url is required")
	// ErrOrderNotFound is returned when the backend answers {ok:false} for an order lookup.
	ErrOrderNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
)

// Observer receives one observation per backend request.
type Observer interface {
	ObserveBackend(op string, status int, duration time.Duration)
}

// Client wraps the backend endpoints the storefront consumes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	observer   Observer
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithObserver records request metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient builds the backend client from configuration.
func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// GetOrder fetches one order on behalf of the session owner.
// An {ok:false} reply yields ErrOrderNotFound.
func (c *Client) GetOrder(ctx context.Context, token, orderID string) (*Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var env orderEnvelope
	path := "orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, "get_order", http.MethodGet, path, bearer(token), nil, &env); err != nil {
		return nil, err
	}
	if !env.OK || env.Order == nil {
		return nil, ErrOrderNotFound
	}
	return env.Order, nil
}

// PayOrder forwards a verified capture to the backend.
func (c *Client) PayOrder(ctx context.Context, token string, req PayOrderRequest) (Ack, error) {
	var ack Ack
	if err := c.do(ctx, "pay_order", http.MethodPost, "order/pays", bearer(token), req, &ack); err != nil {
		return Ack{}, err
	}
	if !ack.OK {
		msg := ack.Message
		if msg == "" {
			msg = "backend rejected the payment"
		}
		return ack, pkgerrors.New(pkgerrors.CodeDependency, msg).WithDetails(map[string]any{"orderId": req.OrderID})
	}
	return ack, nil
}

// AdminOrders lists every order.
func (c *Client) AdminOrders(ctx context.Context, token string) ([]Order, error) {
	var env ordersEnvelope
	if err := c.do(ctx, "admin_orders", http.MethodGet, "admin/orders", adminToken(token), nil, &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

// AdminProducts lists every product.
func (c *Client) AdminProducts(ctx context.Context, token string) ([]Product, error) {
	var env productsEnvelope
	if err := c.do(ctx, "admin_products", http.MethodGet, "admin/products", adminToken(token), nil, &env); err != nil {
		return nil, err
	}
	return env.Products, nil
}

// AdminUsers lists every account.
func (c *Client) AdminUsers(ctx context.Context, token string) ([]User, error) {
	var env usersEnvelope
	if err := c.do(ctx, "admin_users", http.MethodGet, "admin/users", adminToken(token), nil, &env); err != nil {
		return nil, err
	}
	return env.Users, nil
}

// UpdateUserRole changes one account's role.
func (c *Client) UpdateUserRole(ctx context.Context, token string, req UpdateRoleRequest) error {
	var reply struct {
		OK      *bool  `json:"ok"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, "update_user_role", http.MethodPut, "admin/users", adminToken(token), req, &reply); err != nil {
		return err
	}
	if reply.OK != nil && !*reply.OK {
		msg := reply.Message
		if msg == "" {
			msg = "backend rejected the role update"
		}
		return pkgerrors.New(pkgerrors.CodeDependency, msg)
	}
	return nil
}

type headerFunc func(http.Header)

func bearer(token string) headerFunc {
	return func(h http.Header) {
		if token = strings.TrimSpace(token); token != "" {
			h.Set(authorizationHeader, "Bearer "+token)
			h.Set(adminTokenHeader, token)
		}
	}
}

func adminToken(token string) headerFunc {
	return func(h http.Header) {
		if token = strings.TrimSpace(token); token != "" {
			h.Set(adminTokenHeader, token)
		}
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, headers headerFunc, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("marshal %s request", op))
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", op))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if headers != nil {
		headers(httpReq.Header)
	}

	started := c.now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(op, 0, started)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()
	c.observe(op, resp.StatusCode, started)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(
			pkgerrors.CodeForStatus(resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			fmt.Sprintf("%s request failed", op),
		).WithDetails(map[string]any{"message": backendMessage(msg)})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
	}
	return nil
}

func (c *Client) observe(op string, status int, started time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackend(op, status, c.now().Sub(started))
}

// backendMessage extracts the {message} field of an error body when present.
func backendMessage(body []byte) string {
	var ack Ack
	if err := json.Unmarshal(body, &ack); err == nil && ack.Message != "" {
		return ack.Message
	}
	return strings.TrimSpace(string(body))
}
