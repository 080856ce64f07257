package httpapi

import (
	"context"
	"net/http"
	"strings"

	"campuslink/internal/domain"
)

type authCtxKey int

const identityKey authCtxKey = iota

// TokenVerifier validates the Authorization bearer token. Token issuance
// belongs to the platform's auth service; this API only verifies.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		identity, err := a.verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func CurrentIdentity(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}
