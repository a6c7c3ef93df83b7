package admin

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teslo-shop/storefront/pkg/backend"
	"github.com/teslo-shop/storefront/pkg/enums"
	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
	"github.com/teslo-shop/storefront/pkg/logger"
)

type stubBackend struct {
	orders     []backend.Order
	products   []backend.Product
	users      []backend.User
	updateErr  error
	updates    []backend.UpdateRoleRequest
	usersCalls int
	tokens     []string
}

func (b *stubBackend) AdminOrders(ctx context.Context, token string) ([]backend.Order, error) {
	b.tokens = append(b.tokens, token)
	return b.orders, nil
}

func (b *stubBackend) AdminProducts(ctx context.Context, token string) ([]backend.Product, error) {
	b.tokens = append(b.tokens, token)
	return b.products, nil
}

func (b *stubBackend) AdminUsers(ctx context.Context, token string) ([]backend.User, error) {
	b.tokens = append(b.tokens, token)
	b.usersCalls++
	return b.users, nil
}

func (b *stubBackend) UpdateUserRole(ctx context.Context, token string, req backend.UpdateRoleRequest) error {
	b.updates = append(b.updates, req)
	return b.updateErr
}

func newTestService(t *testing.T, b *stubBackend) Service {
	t.Helper()
	svc, err := NewService(b, nil, logger.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

var admin = Actor{UserID: "a1", Email: "admin@teslo.com", Name: "Admin", Token: "tok"}

func TestOrdersProjection(t *testing.T) {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	b := &stubBackend{orders: []backend.Order{
		{ID: "o1", User: backend.OrderOwner{ID: "u1", Email: "ana@mail.com", Name: "Ana"}, Total: decimal.RequireFromString("34.5"), NumberOfItems: 3, IsPaid: true, CreatedAt: &created},
		{ID: "o2", User: backend.OrderOwner{ID: "u2"}, Total: decimal.NewFromInt(10), NumberOfItems: 1},
	}}
	svc := newTestService(t, b)

	rows, err := svc.Orders(context.Background(), admin)
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Email != "ana@mail.com" || rows[0].NoProducts != 3 || !rows[0].IsPaid || rows[0].CreatedAt == nil {
		t.Fatalf("unexpected populated row %+v", rows[0])
	}
	if rows[1].Email != admin.Email || rows[1].Name != admin.Name {
		t.Fatalf("expected fallback to admin identity, got %+v", rows[1])
	}
	if b.tokens[0] != "tok" {
		t.Fatalf("expected token forwarded, got %v", b.tokens)
	}
}

func TestProductsProjection(t *testing.T) {
	b := &stubBackend{products: []backend.Product{
		{ID: "p1", Title: "Tee", Images: []string{"a.jpg", "b.jpg"}, Sizes: []string{"S", "M", "L"}, InStock: 7, Price: decimal.NewFromInt(30), Slug: "tee", Type: "shirts", Gender: "men"},
		{ID: "p2", Title: "Cap", Images: []string{"only.jpg"}},
		{ID: "p3", Title: "Bare"},
	}}
	svc := newTestService(t, b)

	rows, err := svc.Products(context.Background(), admin)
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if rows[0].Img != "b.jpg" || rows[0].Sizes != "S, M, L" || rows[0].InStock != 7 {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if rows[1].Img != "only.jpg" {
		t.Fatalf("expected single image fallback, got %q", rows[1].Img)
	}
	if rows[2].Img != "" || rows[2].Sizes != "" {
		t.Fatalf("expected empty image and sizes, got %+v", rows[2])
	}
}

func seededUsers() []backend.User {
	return []backend.User{
		{ID: "u1", Name: "Ana", Email: "ana@mail.com", Role: "client"},
		{ID: "u2", Name: "Luis", Email: "luis@mail.com", Role: "SEO"},
	}
}

func TestUpdateRoleCommits(t *testing.T) {
	b := &stubBackend{users: seededUsers()}
	svc := newTestService(t, b)
	if _, err := svc.Users(context.Background(), admin); err != nil {
		t.Fatalf("users: %v", err)
	}

	rows, err := svc.UpdateRole(context.Background(), admin, "u1", enums.RoleAdmin)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if rows[0].Role != enums.RoleAdmin || rows[1].Role != enums.RoleSEO {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if len(b.updates) != 1 || b.updates[0].UserID != "u1" || b.updates[0].Rol != "admin" {
		t.Fatalf("unexpected backend updates %+v", b.updates)
	}
}

func TestUpdateRoleRollsBackOnFailure(t *testing.T) {
	b := &stubBackend{users: seededUsers(), updateErr: pkgerrors.New(pkgerrors.CodeDependency, "No se pudo actualizar")}
	svc := newTestService(t, b)
	if _, err := svc.Users(context.Background(), admin); err != nil {
		t.Fatalf("users: %v", err)
	}

	rows, err := svc.UpdateRole(context.Background(), admin, "u1", enums.RoleAdmin)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if rows[0].Role != enums.RoleClient {
		t.Fatalf("expected role reverted to client, got %s", rows[0].Role)
	}
	if rows[1].Role != enums.RoleSEO {
		t.Fatalf("other rows must be untouched, got %+v", rows[1])
	}
}

func TestUpdateRoleSameRoleSkipsBackend(t *testing.T) {
	b := &stubBackend{users: seededUsers()}
	svc := newTestService(t, b)
	if _, err := svc.Users(context.Background(), admin); err != nil {
		t.Fatalf("users: %v", err)
	}

	if _, err := svc.UpdateRole(context.Background(), admin, "u2", enums.RoleSEO); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if len(b.updates) != 0 {
		t.Fatalf("expected no backend call, got %+v", b.updates)
	}
}

func TestUpdateRoleValidation(t *testing.T) {
	b := &stubBackend{users: seededUsers()}
	svc := newTestService(t, b)

	if _, err := svc.UpdateRole(context.Background(), admin, "u1", enums.Role("owner")); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected invalid role rejected, got %v", err)
	}
	if _, err := svc.UpdateRole(context.Background(), admin, "", enums.RoleAdmin); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected missing user rejected, got %v", err)
	}
	if _, err := svc.UpdateRole(context.Background(), admin, "u9", enums.RoleAdmin); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected unknown user not found, got %v", err)
	}
	if b.usersCalls != 1 {
		t.Fatalf("expected directory refreshed once for unknown user, got %d", b.usersCalls)
	}
}

func TestUpdateRoleLoadsDirectoryOnDemand(t *testing.T) {
	b := &stubBackend{users: seededUsers()}
	svc := newTestService(t, b)

	rows, err := svc.UpdateRole(context.Background(), admin, "u2", enums.RoleSuperUser)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if rows[1].Role != enums.RoleSuperUser {
		t.Fatalf("unexpected rows %+v", rows)
	}
}
