package stores

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/platform/httpx"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// Handler serves store listing and scope selection.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   authz.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers store routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuthenticated())
		r.Get("/", h.list)
		r.Put("/selection", h.selectStore)
	})
}

type storePayload struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	list, err := h.service.ListFor(r.Context(), sess)
	if err != nil {
		h.logger.Error("list stores failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	payload := make([]storePayload, len(list))
	for i, store := range list {
		payload[i] = storePayload{
			ID: store.ID, Name: store.Name, Address: store.Address,
			Phone: store.Phone, IsActive: store.IsActive, CreatedAt: store.CreatedAt,
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"stores":   payload,
		"selected": sess.StoreID,
	})
}

type selectRequest struct {
	StoreID *int64 `json:"store_id"`
}

func (h *Handler) selectStore(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	var req selectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	if err := h.service.Select(r.Context(), sess, req.StoreID); err != nil {
		switch {
		case errors.Is(err, ErrNotAssigned):
			httpx.Message(w, http.StatusForbidden, "Ce magasin ne vous est pas assigné")
		case errors.Is(err, shared.ErrNotFound):
			httpx.Message(w, http.StatusNotFound, "Magasin introuvable")
		default:
			h.logger.Error("select store failed", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"selected": sess.StoreID})
}
