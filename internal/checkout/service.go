package checkout

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/teslo-shop/storefront/internal/cart"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/storage"
)

// AddressForm is the payload submitted from the address step. Country falls back to the
// configured default when omitted.
type AddressForm struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Address2  string `json:"address2"`
	Zip       string `json:"zip" validate:"required"`
	City      string `json:"city" validate:"required"`
	Country   string `json:"country"`
	Phone     string `json:"phone" validate:"required"`
}

func (f AddressForm) normalized(defaultCountry string) cart.ShippingAddress {
	country := strings.TrimSpace(f.Country)
	if country == "" {
		country = defaultCountry
	}
	return cart.ShippingAddress{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Address:   strings.TrimSpace(f.Address),
		Address2:  strings.TrimSpace(f.Address2),
		Zip:       strings.TrimSpace(f.Zip),
		City:      strings.TrimSpace(f.City),
		Country:   strings.ToUpper(country),
		Phone:     strings.TrimSpace(f.Phone),
	}
}

// Result is the checkout position after an operation together with the cart it saw.
type Result struct {
	Step     enums.CheckoutStep `json:"step"`
	Snapshot cart.Snapshot      `json:"cart"`
}

// Service gates movement through cart -> address -> summary -> paid.
type Service interface {
	Advance(snap cart.Snapshot, from enums.CheckoutStep) (enums.CheckoutStep, error)
	SubmitAddress(ctx context.Context, kv storage.Store, form AddressForm) (Result, error)
	Summary(ctx context.Context, kv storage.Store) (Result, error)
}

type service struct {
	carts          cart.Service
	validate       *validator.Validate
	defaultCountry string
	logg           *logger.Logger
}

// NewService builds the checkout flow on top of the cart service.
func NewService(carts cart.Service, defaultCountry string, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	defaultCountry = strings.ToUpper(strings.TrimSpace(defaultCountry))
	if defaultCountry == "" {
		return nil, fmt.Errorf("default country required")
	}
	return &service{
		carts:          carts,
		validate:       newValidator(),
		defaultCountry: defaultCountry,
		logg:           logg,
	}, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Advance returns the step after from when the snapshot allows it. Summary -> Paid only
// happens through a confirmed payment, never through Advance.
func (s *service) Advance(snap cart.Snapshot, from enums.CheckoutStep) (enums.CheckoutStep, error) {
	switch from {
	case enums.CheckoutStepCart:
		if err := requireCart(snap); err != nil {
			return from, err
		}
	case enums.CheckoutStepAddress:
		if err := s.validateAddress(snap.ShippingAddress); err != nil {
			return from, err
		}
		if err := requireCart(snap); err != nil {
			return from, err
		}
	case enums.CheckoutStepSummary:
		return from, pkgerrors.New(pkgerrors.CodeStateConflict, "payment confirmation required")
	case enums.CheckoutStepPaid:
		return from, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already completed")
	default:
		return from, pkgerrors.New(pkgerrors.CodeValidation, "unknown checkout step").
			WithDetails(map[string]any{"step": from.String()})
	}
	next, _ := from.Next()
	return next, nil
}

// SubmitAddress validates the form, stores it on the cart and moves to the summary step.
// On validation failure, or when there is nothing to review, nothing is written and the
// step stays at address.
func (s *service) SubmitAddress(ctx context.Context, kv storage.Store, form AddressForm) (Result, error) {
	addr := form.normalized(s.defaultCountry)

	snap, err := s.carts.Hydrate(ctx, kv)
	if err != nil {
		return Result{Step: enums.CheckoutStepAddress}, err
	}
	if err := s.validateAddress(&addr); err != nil {
		return Result{Step: enums.CheckoutStepAddress, Snapshot: snap}, err
	}
	if err := requireCart(snap); err != nil {
		return Result{Step: enums.CheckoutStepAddress, Snapshot: snap}, err
	}

	snap, err = s.carts.Dispatch(ctx, kv, snap, cart.SetShippingAddress{Address: addr})
	if err != nil {
		return Result{Step: enums.CheckoutStepAddress, Snapshot: snap}, err
	}

	step, err := s.Advance(snap, enums.CheckoutStepAddress)
	if err != nil {
		return Result{Step: step, Snapshot: snap}, err
	}
	s.logg.Info(s.logg.WithField(ctx, "country", addr.Country), "shipping address submitted")
	return Result{Step: step, Snapshot: snap}, nil
}

// Summary returns the hydrated cart when it can be reviewed.
func (s *service) Summary(ctx context.Context, kv storage.Store) (Result, error) {
	snap, err := s.carts.Hydrate(ctx, kv)
	if err != nil {
		return Result{Step: enums.CheckoutStepCart}, err
	}
	if err := requireCart(snap); err != nil {
		return Result{Step: enums.CheckoutStepCart, Snapshot: snap}, err
	}
	return Result{Step: enums.CheckoutStepSummary, Snapshot: snap}, nil
}

func requireCart(snap cart.Snapshot) error {
	if !snap.Loaded {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart has not been loaded")
	}
	if snap.Empty() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	return nil
}

func (s *service) validateAddress(addr *cart.ShippingAddress) error {
	if addr == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "shipping address required")
	}
	if err := s.validate.Struct(addr); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			details := map[string]string{}
			for _, fieldErr := range errs {
				details[fieldErr.Field()] = "is required"
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete").WithDetails(details)
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "shipping address incomplete")
	}
	return nil
}
