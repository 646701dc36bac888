package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/platform/httpx"
	"github.com/tiemmay/api/internal/platform/requestctx"
)

// RequireAuth verifies the bearer token on each request and stores the
// resulting identity on the context. When allowedRoles is non-empty the
// identity must also carry at least one of them.
func RequireAuth(verifier TokenVerifier, allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				requestctx.Logger(r.Context()).Warn("token verification failed", zap.Error(err))
				httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			if len(allowedRoles) > 0 && !hasAnyRole(identity, allowedRoles) {
				httpx.WriteError(w, r, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func hasAnyRole(id Identity, roles []string) bool {
	for _, role := range roles {
		if id.HasRole(role) {
			return true
		}
	}
	return false
}
