package middleware

import (
	"net/http"
	"strings"

	"github.com/techhub-commerce/admin-gateway/api/responses"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
)

// RequireBearer extracts the Authorization bearer token into the request
// context. The gateway never validates or decodes the token; it is relayed
// as-is to the product platform, which owns authentication.
func RequireBearer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token required"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithBearer(r.Context(), token)))
		})
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
