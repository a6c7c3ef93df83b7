package orders

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/teslo-shop/storefront/pkg/backend"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
)

const (
	PathLogin   = "/auth/login"
	PathHistory = "/orders/history"
	PathHome    = "/"
)

// Session identifies the signed-in user viewing an order.
type Session struct {
	UserID string
	Token  string
}

// Decision is either a redirect or an order to render. Exactly one of RedirectTo and
// Order is set.
type Decision struct {
	RedirectTo string
	Order      *backend.Order
}

// Redirect reports whether the decision sends the browser elsewhere.
func (d Decision) Redirect() bool {
	return d.RedirectTo != ""
}

func redirect(to string) Decision {
	return Decision{RedirectTo: to}
}

func render(order *backend.Order) Decision {
	return Decision{Order: order}
}

// LoginRedirect returns the login path carrying the order to come back to.
func LoginRedirect(orderID string) string {
	return PathLogin + "?p=" + url.QueryEscape(orderID)
}

type orderFetcher interface {
	GetOrder(ctx context.Context, token, orderID string) (*backend.Order, error)
}

// Service decides what a browser sees for an order page.
type Service interface {
	View(ctx context.Context, session *Session, orderID string) (Decision, error)
}

type service struct {
	orders orderFetcher
	logg   *logger.Logger
}

func NewService(orders orderFetcher, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order fetcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: orders, logg: logg}, nil
}

// View never fails for backend problems; those become redirects. An error is only
// returned for a missing order id.
func (s *service) View(ctx context.Context, session *Session, orderID string) (Decision, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if session == nil || strings.TrimSpace(session.UserID) == "" {
		return redirect(LoginRedirect(orderID)), nil
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": orderID, "user_id": session.UserID})

	order, err := s.orders.GetOrder(ctx, session.Token, orderID)
	if err != nil {
		switch {
		// only an {ok:false} body means "not yours or gone"; an HTTP 404 is a request failure
		case errors.Is(err, backend.ErrOrderNotFound):
			return redirect(PathHistory), nil
		case pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized):
			return redirect(LoginRedirect(orderID)), nil
		default:
			s.logg.Error(ctx, "order lookup failed", err)
			return redirect(PathHome), nil
		}
	}
	if order.User.ID != session.UserID {
		s.logg.Warn(ctx, "order requested by a different user")
		return redirect(PathHistory), nil
	}
	return render(order), nil
}
