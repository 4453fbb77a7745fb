package authz

import (
	"log/slog"
	"net/http"

	"github.com/othmanee23/oraxonoptic/internal/platform/httpx"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// Console routes returned alongside structural denials so clients know where
// to send the user.
const (
	AdminConsoleRoute = "/admin"
	ShopConsoleRoute  = "/app"
)

type denialBody struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// Guard wires permission checks in front of protected routes.
type Guard struct {
	Logger *slog.Logger
}

// Require grants access when the session's effective permissions allow the
// action on the module. The super_admin role never reaches shop-level
// screens: it is redirected to the administrative console regardless of its
// nominal rights.
func (g Guard) Require(module string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				httpx.Message(w, http.StatusUnauthorized, "Authentification requise")
				return
			}
			role, err := ParseRole(sess.Role)
			if err != nil {
				if g.Logger != nil {
					g.Logger.Warn("unknown role on session", slog.String("role", sess.Role), slog.Int64("user_id", sess.UserID))
				}
				httpx.Message(w, http.StatusForbidden, "Accès refusé")
				return
			}
			if role == RoleSuperAdmin {
				httpx.JSON(w, http.StatusForbidden, denialBody{
					Message:  "Cette section est réservée au personnel du magasin",
					Redirect: AdminConsoleRoute,
				})
				return
			}
			if !FromStrings(sess.Permissions).Allows(module, action) {
				httpx.JSON(w, http.StatusForbidden, denialBody{Message: "Accès refusé"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin protects the platform-operator surface. Shop-level staff
// are redirected to their own console, mirroring Require's separation.
func (g Guard) RequireSuperAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				httpx.Message(w, http.StatusUnauthorized, "Authentification requise")
				return
			}
			if Role(sess.Role) != RoleSuperAdmin {
				httpx.JSON(w, http.StatusForbidden, denialBody{
					Message:  "Cette section est réservée à l'opérateur de la plateforme",
					Redirect: ShopConsoleRoute,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated only checks for a live session.
func (g Guard) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shared.SessionFromContext(r.Context()) == nil {
				httpx.Message(w, http.StatusUnauthorized, "Authentification requise")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
