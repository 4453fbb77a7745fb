package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/platform/httpx"
	"github.com/othmanee23/oraxonoptic/internal/stores"
)

// Handler serves the dashboard endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   authz.Guard
	access  stores.ScopeAccess
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Guard, access stores.ScopeAccess) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, access: access}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ModuleDashboard, authz.ActionView))
		r.Use(stores.ResolveScope(h.access))
		r.Get("/", h.summary)
	})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	scope := stores.ScopeFromContext(r.Context())
	summary, err := h.service.Summary(r.Context(), scope)
	if err != nil {
		h.logger.Error("dashboard summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
