package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/platform/httpx"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Guard
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ModuleUtilisateurs, authz.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ModuleUtilisateurs, authz.ActionCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(authz.ModuleUtilisateurs, authz.ActionEdit))
		r.Put("/{id}", h.update)
		r.Patch("/{id}/toggle-active", h.toggleActive)
		r.Put("/{id}/permissions", h.setPermissions)
	})
}

type userPayload struct {
	ID          int64               `json:"id"`
	Email       string              `json:"email"`
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	Phone       string              `json:"phone,omitempty"`
	Role        string              `json:"role"`
	Permissions map[string][]string `json:"permissions"`
	HasOverride bool                `json:"has_override"`
	IsActive    bool                `json:"is_active"`
	StoreIDs    []int64             `json:"store_ids,omitempty"`
	LastLogin   *time.Time          `json:"last_login,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func toPayload(user *User) userPayload {
	return userPayload{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		Role:        string(user.Role),
		Permissions: user.Effective().Strings(),
		HasOverride: user.Permissions != nil,
		IsActive:    user.IsActive,
		StoreIDs:    user.StoreIDs,
		LastLogin:   user.LastLogin,
		CreatedAt:   user.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	users, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	payloads := make([]userPayload, len(users))
	for i := range users {
		payloads[i] = toPayload(&users[i])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": payloads, "pagination": pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identifiant invalide")
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(user))
}

type createRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	FirstName string  `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string  `json:"last_name" validate:"required,min=2,max=50"`
	Phone     string  `json:"phone" validate:"max=30"`
	Role      string  `json:"role" validate:"required"`
	Password  string  `json:"password" validate:"required,min=8"`
	StoreIDs  []int64 `json:"store_ids"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	if errs := h.structErrors(req); errs != nil {
		httpx.Fields(w, http.StatusUnprocessableEntity, "Certains champs sont invalides", errs)
		return
	}
	user, err := h.service.Create(r.Context(), CreateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
		Password:  req.Password,
		StoreIDs:  req.StoreIDs,
	})
	if err != nil {
		h.respondError(w, "create user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPayload(user))
}

type updateRequest struct {
	FirstName string   `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string   `json:"last_name" validate:"required,min=2,max=50"`
	Phone     string   `json:"phone" validate:"max=30"`
	Role      string   `json:"role" validate:"required"`
	StoreIDs  *[]int64 `json:"store_ids"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identifiant invalide")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	if errs := h.structErrors(req); errs != nil {
		httpx.Fields(w, http.StatusUnprocessableEntity, "Certains champs sont invalides", errs)
		return
	}
	user, err := h.service.Update(r.Context(), id, UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
		StoreIDs:  req.StoreIDs,
	})
	if err != nil {
		h.respondError(w, "update user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(user))
}

func (h *Handler) toggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identifiant invalide")
		return
	}
	user, err := h.service.ToggleActive(r.Context(), id)
	if err != nil {
		h.respondError(w, "toggle active", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(user))
}

type permissionsRequest struct {
	// Permissions nil clears the override, restoring the role default.
	Permissions map[string][]string `json:"permissions"`
}

func (h *Handler) setPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identifiant invalide")
		return
	}
	var req permissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	user, err := h.service.SetPermissions(r.Context(), id, req.Permissions)
	if err != nil {
		h.respondError(w, "set permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(user))
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var fieldErr shared.FieldErrors
	if !errors.As(err, &fieldErr) && h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

// structErrors runs tag validation and keys messages by the JSON field name.
func (h *Handler) structErrors(req any) map[string]string {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"general": "Requête invalide"}
	}
	out := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		out[jsonName(fieldErr.Field())] = messageForTag(fieldErr)
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est obligatoire"
	case "email":
		return "Adresse email invalide"
	case "min":
		return "Valeur trop courte (minimum " + fe.Param() + ")"
	case "max":
		return "Valeur trop longue (maximum " + fe.Param() + ")"
	default:
		return "Valeur invalide"
	}
}

var jsonNames = map[string]string{
	"Email":     "email",
	"FirstName": "first_name",
	"LastName":  "last_name",
	"Phone":     "phone",
	"Role":      "role",
	"Password":  "password",
	"StoreIDs":  "store_ids",
}

func jsonName(field string) string {
	if name, ok := jsonNames[field]; ok {
		return name
	}
	return field
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
