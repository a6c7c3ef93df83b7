package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/teslo-shop/storefront/pkg/backend"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/metrics"
	"github.com/teslo-shop/storefront/pkg/optimistic"
)

// Backend is the subset of the shop backend the admin views use.
type Backend interface {
	AdminOrders(ctx context.Context, token string) ([]backend.Order, error)
	AdminProducts(ctx context.Context, token string) ([]backend.Product, error)
	AdminUsers(ctx context.Context, token string) ([]backend.User, error)
	UpdateUserRole(ctx context.Context, token string, req backend.UpdateRoleRequest) error
}

// Service projects backend collections into table rows and edits user roles.
type Service interface {
	Orders(ctx context.Context, actor Actor) ([]OrderRow, error)
	Products(ctx context.Context, actor Actor) ([]ProductRow, error)
	Users(ctx context.Context, actor Actor) ([]UserRow, error)
	UpdateRole(ctx context.Context, actor Actor, userID string, role enums.Role) ([]UserRow, error)
}

type service struct {
	backend   Backend
	directory *UserDirectory
	logg      *logger.Logger
}

func NewService(b Backend, m *metrics.Storefront, logg *logger.Logger) (Service, error) {
	if b == nil {
		return nil, fmt.Errorf("admin backend required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		backend:   b,
		directory: NewUserDirectory(b, m, logg),
		logg:      logg,
	}, nil
}

func (s *service) Orders(ctx context.Context, actor Actor) ([]OrderRow, error) {
	orders, err := s.backend.AdminOrders(ctx, actor.Token)
	if err != nil {
		return nil, err
	}
	rows := make([]OrderRow, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, orderRow(order, actor))
	}
	return rows, nil
}

func (s *service) Products(ctx context.Context, actor Actor) ([]ProductRow, error) {
	products, err := s.backend.AdminProducts(ctx, actor.Token)
	if err != nil {
		return nil, err
	}
	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRow(p))
	}
	return rows, nil
}

func (s *service) Users(ctx context.Context, actor Actor) ([]UserRow, error) {
	return s.directory.Refresh(ctx, actor.Token)
}

func (s *service) UpdateRole(ctx context.Context, actor Actor, userID string, role enums.Role) ([]UserRow, error) {
	return s.directory.UpdateRole(ctx, actor.Token, userID, role)
}

// UserDirectory is the displayed user table. Role edits are applied before the
// backend confirms them and undone when it refuses.
type UserDirectory struct {
	backend Backend
	rows    *optimistic.Value[[]UserRow]
	metrics *metrics.Storefront
	logg    *logger.Logger
}

func NewUserDirectory(b Backend, m *metrics.Storefront, logg *logger.Logger) *UserDirectory {
	return &UserDirectory{
		backend: b,
		rows:    optimistic.New[[]UserRow](nil, cloneUsers),
		metrics: m,
		logg:    logg,
	}
}

// Refresh reloads the table from the backend.
func (d *UserDirectory) Refresh(ctx context.Context, token string) ([]UserRow, error) {
	users, err := d.backend.AdminUsers(ctx, token)
	if err != nil {
		return nil, err
	}
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow(u))
	}
	d.rows.Replace(rows)
	return d.rows.Get(), nil
}

// UpdateRole shows the new role immediately, then asks the backend. On failure only
// that user's role is put back, and the backend error is returned with the restored rows.
func (d *UserDirectory) UpdateRole(ctx context.Context, token, userID string, role enums.Role) ([]UserRow, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
			WithDetails(map[string]any{"role": role.String(), "allowed": enums.Roles()})
	}
	if !d.contains(userID) {
		if _, err := d.Refresh(ctx, token); err != nil {
			return nil, err
		}
		if !d.contains(userID) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
	}

	ctx = d.logg.WithFields(ctx, map[string]any{"target_user_id": userID, "role": role.String()})

	var (
		previous enums.Role
		changed  bool
	)
	mutate := func(rows []UserRow) ([]UserRow, error) {
		for i := range rows {
			if rows[i].ID != userID {
				continue
			}
			if rows[i].Role == role {
				return nil, optimistic.ErrNoChange
			}
			previous, changed = rows[i].Role, true
			rows[i].Role = role
		}
		return rows, nil
	}
	revert := func(current, _ []UserRow) []UserRow {
		for i := range current {
			if current[i].ID == userID && current[i].Role == role {
				current[i].Role = previous
			}
		}
		return current
	}
	commit := func(ctx context.Context) error {
		return d.backend.UpdateUserRole(ctx, token, backend.UpdateRoleRequest{UserID: userID, Rol: role.String()})
	}

	if err := d.rows.UpdateWithRevert(ctx, mutate, revert, commit); err != nil {
		d.metrics.IncRoleUpdate("rolled_back")
		d.logg.Error(ctx, "role update rolled back", err)
		return d.rows.Get(), err
	}
	if !changed {
		d.metrics.IncRoleUpdate("unchanged")
	} else {
		d.metrics.IncRoleUpdate("committed")
		d.logg.Info(ctx, "user role updated")
	}
	return d.rows.Get(), nil
}

func (d *UserDirectory) contains(userID string) bool {
	for _, row := range d.rows.Get() {
		if row.ID == userID {
			return true
		}
	}
	return false
}
