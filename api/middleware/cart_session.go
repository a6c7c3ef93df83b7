package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/teslo-shop/storefront/pkg/config"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/storage"
)

// CartSessionCookie identifies a browser to server-side cart storage.
const CartSessionCookie = "ts_session"

// CartSession makes sure every request served by a server-side storage provider
// carries a browser session id, issuing the cookie on first contact.
func CartSession(provider storage.Provider, cfg config.CookieConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if provider == nil || !provider.ServerSide() {
				next.ServeHTTP(w, r)
				return
			}

			sessionID := ""
			if cookie, err := r.Cookie(CartSessionCookie); err == nil {
				if parsed, err := uuid.Parse(strings.TrimSpace(cookie.Value)); err == nil {
					sessionID = parsed.String()
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CartSessionCookie,
					Value:    sessionID,
					Path:     cookiePath(cfg),
					Domain:   cfg.Domain,
					MaxAge:   int(cfg.MaxAge.Seconds()),
					Secure:   cfg.Secure,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := storage.WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func cookiePath(cfg config.CookieConfig) string {
	if cfg.Path == "" {
		return "/"
	}
	return cfg.Path
}
