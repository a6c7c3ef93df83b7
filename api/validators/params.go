package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/teslo-shop/storefront/pkg/errors"
)

const maxParamLength = 128

// RequirePathParam returns the trimmed chi URL parameter or a validation error.
func RequirePathParam(r *http.Request, key string) (string, error) {
	value := SanitizeString(chi.URLParam(r, key), maxParamLength)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// RequireQueryParam returns the trimmed query parameter or a validation error.
func RequireQueryParam(r *http.Request, key string) (string, error) {
	value := SanitizeString(r.URL.Query().Get(key), maxParamLength)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
