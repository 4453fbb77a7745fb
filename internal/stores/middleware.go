package stores

import (
	"context"
	"net/http"
	"strconv"

	"github.com/othmanee23/oraxonoptic/internal/platform/httpx"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

type scopeKey struct{}

// ContextWithScope attaches a resolved store scope to the context.
func ContextWithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the resolved scope. The zero value (no store
// selected) comes back when resolution never ran.
func ScopeFromContext(ctx context.Context) Scope {
	scope, _ := ctx.Value(scopeKey{}).(Scope)
	return scope
}

// ScopeAccess reports whether a session may read data scoped to a store.
type ScopeAccess interface {
	Accessible(ctx context.Context, sess *shared.Session, storeID int64) bool
}

// ResolveScope resolves the store scope for the request: the X-Store-ID
// header wins, the session's persisted selection is the fallback. An absent
// selection is a valid scope; a header that does not parse is a client
// error. The same assignment rules that gate selection gate the scope: a
// header naming a store outside the caller's assignment is rejected, and a
// persisted selection whose assignment has since been revoked degrades to
// the empty scope.
func ResolveScope(access ScopeAccess) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := Scope{}
			sess := shared.SessionFromContext(r.Context())
			if header := r.Header.Get("X-Store-ID"); header != "" {
				id, err := strconv.ParseInt(header, 10, 64)
				if err != nil || id <= 0 {
					httpx.Message(w, http.StatusBadRequest, "Identifiant de magasin invalide")
					return
				}
				if sess == nil || !access.Accessible(r.Context(), sess, id) {
					httpx.Message(w, http.StatusForbidden, "Ce magasin ne vous est pas assigné")
					return
				}
				scope.StoreID = &id
			} else if sess != nil && sess.StoreID != nil {
				if access.Accessible(r.Context(), sess, *sess.StoreID) {
					id := *sess.StoreID
					scope.StoreID = &id
				}
			}
			next.ServeHTTP(w, r.WithContext(ContextWithScope(r.Context(), scope)))
		})
	}
}
