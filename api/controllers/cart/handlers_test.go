package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	cartsvc "github.com/teslo-shop/storefront/internal/cart"
	"github.com/teslo-shop/storefront/pkg/config"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/storage"
)

type cartEnvelope struct {
	Data cartsvc.Snapshot `json:"data"`
}

func newTestService(t *testing.T) cartsvc.Service {
	t.Helper()
	svc, err := cartsvc.NewService(cartsvc.NewAggregator(decimal.RequireFromString("0.15"), 10), logger.Nop(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func decodeCart(t *testing.T, resp *httptest.ResponseRecorder) cartsvc.Snapshot {
	t.Helper()
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope cartEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestAddItemMergesSameVariant(t *testing.T) {
	provider := storage.NewMemoryProvider()
	svc := newTestService(t)
	handler := AddItem(provider, svc, nil)

	body := `{"_id":"p1","slug":"tee","size":"M","title":"Tee","image":"tee.jpg","price":10,"quantity":1}`
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)))

	body = `{"_id":"p1","slug":"tee","size":"M","title":"Tee","image":"tee.jpg","price":10,"quantity":2}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)))

	snap := decodeCart(t, resp)
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 3 {
		t.Fatalf("expected one line with quantity 3, got %+v", snap.Items)
	}
	if !snap.Totals.Total.Equal(decimal.RequireFromString("34.5")) {
		t.Fatalf("expected total 34.5 got %s", snap.Totals.Total)
	}

	stored, ok, _ := provider.Session("").Get(httptest.NewRequest(http.MethodGet, "/", nil).Context(), cartsvc.KeyCart)
	if !ok || !strings.Contains(stored, `"quantity":3`) {
		t.Fatalf("expected persisted cart, got %q", stored)
	}
}

func TestAddItemRejectsUnknownSize(t *testing.T) {
	handler := AddItem(storage.NewMemoryProvider(), newTestService(t), nil)
	body := `{"_id":"p1","size":"XXS","title":"Tee","price":10,"quantity":1}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSetQuantityAndRemove(t *testing.T) {
	provider := storage.NewMemoryProvider()
	svc := newTestService(t)

	body := `{"_id":"p1","size":"L","title":"Hoodie","price":20,"quantity":1}`
	AddItem(provider, svc, nil).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)))

	resp := httptest.NewRecorder()
	SetQuantity(provider, svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/api/cart/items", strings.NewReader(`{"_id":"p1","size":"L","quantity":25}`)))
	snap := decodeCart(t, resp)
	if snap.Items[0].Quantity != 10 {
		t.Fatalf("expected quantity clamped to 10 got %d", snap.Items[0].Quantity)
	}

	resp = httptest.NewRecorder()
	RemoveItem(provider, svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/cart/items?productId=p1&size=L", nil))
	snap = decodeCart(t, resp)
	if !snap.Empty() || snap.Totals.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %+v", snap)
	}

	resp = httptest.NewRecorder()
	Get(provider, svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	snap = decodeCart(t, resp)
	if !snap.Loaded || !snap.Empty() {
		t.Fatalf("expected loaded empty cart after reload, got %+v", snap)
	}
}

func TestSetQuantityRequiresQuantity(t *testing.T) {
	provider := storage.NewMemoryProvider()
	svc := newTestService(t)

	body := `{"_id":"p1","size":"L","title":"Hoodie","price":20,"quantity":2}`
	AddItem(provider, svc, nil).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)))

	resp := httptest.NewRecorder()
	SetQuantity(provider, svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/api/cart/items", strings.NewReader(`{"_id":"p1","size":"L"}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "quantity") {
		t.Fatalf("expected quantity field error, got %s", resp.Body.String())
	}

	resp = httptest.NewRecorder()
	Get(provider, svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	snap := decodeCart(t, resp)
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 2 {
		t.Fatalf("expected line to survive, got %+v", snap.Items)
	}

	resp = httptest.NewRecorder()
	SetQuantity(provider, svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/api/cart/items", strings.NewReader(`{"_id":"p1","size":"L","quantity":0}`)))
	if snap := decodeCart(t, resp); !snap.Empty() {
		t.Fatalf("expected explicit zero to remove the line, got %+v", snap.Items)
	}
}

func TestRemoveItemRequiresSize(t *testing.T) {
	resp := httptest.NewRecorder()
	RemoveItem(storage.NewMemoryProvider(), newTestService(t), nil).ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/cart/items?productId=p1", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCookieStorageRoundTrip(t *testing.T) {
	provider := storage.NewCookieProvider(config.CookieConfig{Path: "/"})
	svc := newTestService(t)

	body := `{"_id":"p9","size":"S","title":"Cap","price":5,"quantity":2}`
	resp := httptest.NewRecorder()
	AddItem(provider, svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)))
	decodeCart(t, resp)

	cookies := resp.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected cart cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp = httptest.NewRecorder()
	Get(provider, svc, nil).ServeHTTP(resp, req)
	snap := decodeCart(t, resp)
	if len(snap.Items) != 1 || snap.Items[0].ProductID != "p9" || snap.Items[0].Quantity != 2 {
		t.Fatalf("expected cart restored from cookie, got %+v", snap.Items)
	}
}
