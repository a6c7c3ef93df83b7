package storage

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/teslo-shop/storefront/pkg/config"
)

// CookieProvider keeps every key in its own browser cookie.
type CookieProvider struct {
	cfg config.CookieConfig
}

func NewCookieProvider(cfg config.CookieConfig) *CookieProvider {
	return &CookieProvider{cfg: cfg}
}

func (p *CookieProvider) Open(w http.ResponseWriter, r *http.Request) (Store, error) {
	return &CookieStore{cfg: p.cfg, w: w, r: r, pending: map[string]string{}}, nil
}

func (p *CookieProvider) ServerSide() bool { return false }

// CookieStore reads request cookies and answers with Set-Cookie headers.
// Values written during the request are visible to later reads in the same request.
type CookieStore struct {
	cfg config.CookieConfig
	w   http.ResponseWriter
	r   *http.Request

	mu      sync.Mutex
	pending map[string]string
}

func (s *CookieStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	if v, ok := s.pending[key]; ok {
		s.mu.Unlock()
		return v, true, nil
	}
	s.mu.Unlock()

	c, err := s.r.Cookie(key)
	if err != nil {
		return "", false, nil
	}
	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		// a hand-edited cookie is treated as its raw value
		return c.Value, true, nil
	}
	return value, true, nil
}

func (s *CookieStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.pending[key] = value
	s.mu.Unlock()

	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     s.cfg.Path,
		Domain:   s.cfg.Domain,
		MaxAge:   int(s.cfg.MaxAge.Seconds()),
		Secure:   s.cfg.Secure,
		SameSite: sameSite(s.cfg.SameSite),
	})
	return nil
}

func sameSite(raw string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
