package contact

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/platform/httpx"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// Handler serves the contact-message inbox.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   authz.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers inbox routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ModuleMessages, authz.ActionView))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ModuleMessages, authz.ActionEdit))
		r.Patch("/{id}", h.setRead)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ModuleMessages, authz.ActionDelete))
		r.Delete("/{id}", h.remove)
	})
}

type messagePayload struct {
	ID        int64     `json:"id"`
	StoreID   *int64    `json:"store_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toPayload(m *Message) messagePayload {
	return messagePayload{
		ID: m.ID, StoreID: m.StoreID, Name: m.Name, Email: m.Email, Phone: m.Phone,
		Subject: m.Subject, Body: m.Body, IsRead: m.IsRead, CreatedAt: m.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	onlyUnread := r.URL.Query().Get("unread") == "1"
	messages, pagination, err := h.service.List(r.Context(), onlyUnread, page, perPage)
	if err != nil {
		h.logger.Error("list contact messages failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	payload := make([]messagePayload, len(messages))
	for i := range messages {
		payload[i] = toPayload(&messages[i])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"messages":   payload,
		"pagination": pagination,
	})
}

type readRequest struct {
	IsRead bool `json:"is_read"`
}

func (h *Handler) setRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identifiant invalide")
		return
	}
	var req readRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	message, err := h.service.SetRead(r.Context(), id, req.IsRead)
	if err != nil {
		h.logger.Error("update contact message failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(message))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identifiant invalide")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete contact message failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
