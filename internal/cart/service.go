package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/metrics"
	"github.com/teslo-shop/storefront/pkg/storage"
	"go.uber.org/multierr"
)

// Service owns the cart side effects: hydration from storage and persistence after each
// transition. The reduction itself is delegated to the Aggregator.
type Service interface {
	Hydrate(ctx context.Context, kv storage.Store) (Snapshot, error)
	Dispatch(ctx context.Context, kv storage.Store, current Snapshot, cmd Command) (Snapshot, error)
}

type service struct {
	agg     Aggregator
	logg    *logger.Logger
	metrics *metrics.Storefront
}

// NewService builds a cart service. metrics may be nil.
func NewService(agg Aggregator, logg *logger.Logger, m *metrics.Storefront) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if agg.TaxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate must be non-negative")
	}
	return &service{agg: agg, logg: logg, metrics: m}, nil
}

// Hydrate reads the persisted cart and address and returns a loaded snapshot. A corrupt
// cart value yields an empty cart. Hydrate never writes.
func (s *service) Hydrate(ctx context.Context, kv storage.Store) (Snapshot, error) {
	if kv == nil {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeInternal, "cart storage unavailable")
	}

	raw, found, err := kv.Get(ctx, KeyCart)
	if err != nil {
		return Snapshot{}, storageError(err, "read cart")
	}

	var items []LineItem
	if found && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			ctx = s.logg.WithField(ctx, "error", err.Error())
			s.logg.Warn(ctx, "discarding malformed persisted cart")
			items = nil
		}
	}
	items = slices.DeleteFunc(items, func(item LineItem) bool {
		return strings.TrimSpace(item.ProductID) == "" || !item.Size.IsValid()
	})

	snap := s.reduce(Snapshot{}, Load{Items: items})

	addr, ok, err := readAddress(ctx, kv)
	if err != nil {
		return Snapshot{}, err
	}
	if ok {
		snap = s.reduce(snap, SetShippingAddress{Address: addr})
	}
	return snap, nil
}

// Dispatch reduces cmd and persists what changed. The returned snapshot reflects the
// transition even when persistence fails.
func (s *service) Dispatch(ctx context.Context, kv storage.Store, current Snapshot, cmd Command) (Snapshot, error) {
	if cmd == nil {
		return current, pkgerrors.New(pkgerrors.CodeValidation, "cart command required")
	}
	if kv == nil {
		return current, pkgerrors.New(pkgerrors.CodeInternal, "cart storage unavailable")
	}
	if changesItems(cmd) && !current.Loaded {
		return current, pkgerrors.New(pkgerrors.CodeStateConflict, "cart has not been loaded")
	}

	next := s.reduce(current, cmd)

	switch c := cmd.(type) {
	case SetShippingAddress:
		if err := writeAddress(ctx, kv, c.Address); err != nil {
			return next, err
		}
	case AddLineItem, SetQuantity, RemoveLineItem:
		if slices.Equal(current.Items, next.Items) {
			return next, nil
		}
		if err := s.writeItems(ctx, kv, next.Items); err != nil {
			return next, err
		}
	}
	return next, nil
}

func (s *service) reduce(current Snapshot, cmd Command) Snapshot {
	next := s.agg.Reduce(current, cmd)
	s.metrics.IncCartTransition(cmd.Name())
	return next
}

func (s *service) writeItems(ctx context.Context, kv storage.Store, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := kv.Set(ctx, KeyCart, string(payload)); err != nil {
		return storageError(err, "write cart")
	}
	s.logg.Debug(s.logg.WithField(ctx, "items", len(items)), "cart persisted")
	return nil
}

func readAddress(ctx context.Context, kv storage.Store) (ShippingAddress, bool, error) {
	var addr ShippingAddress
	present := false
	for _, field := range addressFields {
		value, found, err := kv.Get(ctx, field.key)
		if err != nil {
			return ShippingAddress{}, false, storageError(err, "read address")
		}
		if !found && field.key == KeyFirstName {
			value, found, err = kv.Get(ctx, legacyKeyFirstName)
			if err != nil {
				return ShippingAddress{}, false, storageError(err, "read address")
			}
		}
		if field.key == KeyFirstName {
			present = found
		}
		field.apply(&addr, value)
	}
	return addr, present, nil
}

func writeAddress(ctx context.Context, kv storage.Store, addr ShippingAddress) error {
	var errs error
	for _, field := range addressFields {
		if err := kv.Set(ctx, field.key, field.get(&addr)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", field.key, err))
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "persist shipping address").
			WithDetails(map[string]any{"failed": len(multierr.Errors(errs))})
	}
	return nil
}

func storageError(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
