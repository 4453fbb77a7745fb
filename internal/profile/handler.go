package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/platform/httpx"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// SessionRefresher reconciles the persisted session snapshot with the
// canonical profile after an edit.
type SessionRefresher interface {
	Refresh(ctx context.Context, sess *shared.Session, p shared.Profile) error
}

// Handler serves the signed-in user's profile endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions SessionRefresher
	guard    authz.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions SessionRefresher, guard authz.Guard) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, guard: guard}
}

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuthenticated())
		r.Get("/", h.get)
		r.Put("/", h.update)
	})
}

type accountPayload struct {
	ID          int64               `json:"id"`
	Email       string              `json:"email"`
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	Phone       string              `json:"phone,omitempty"`
	Role        string              `json:"role"`
	Permissions map[string][]string `json:"permissions"`
	IsActive    bool                `json:"is_active"`
	LastLogin   *time.Time          `json:"last_login,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func toPayload(account *Account) accountPayload {
	return accountPayload{
		ID:          account.ID,
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Phone:       account.Phone,
		Role:        string(account.Role),
		Permissions: account.Effective().Strings(),
		IsActive:    account.IsActive,
		LastLogin:   account.LastLogin,
		CreatedAt:   account.CreatedAt,
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	account, err := h.service.Get(r.Context(), sess.UserID)
	if err != nil {
		h.respondError(w, "get profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(account))
}

type updateRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
	Confirm         string `json:"password_confirmation"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	account, err := h.service.Update(r.Context(), sess.UserID, UpdateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		CurrentPassword: req.CurrentPassword,
		Password:        req.Password,
		ConfirmPassword: req.Confirm,
	})
	if err != nil {
		h.respondError(w, "update profile", err)
		return
	}
	if err := h.sessions.Refresh(r.Context(), sess, SnapshotProfile(account)); err != nil {
		h.logger.Warn("session refresh after profile update failed", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, toPayload(account))
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	var fields shared.FieldErrors
	if !errors.As(err, &fields) {
		h.logger.Error(action+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
