package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/othmanee23/oraxonoptic/internal/observability"
	"github.com/othmanee23/oraxonoptic/internal/platform/httpx"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// Handler wires the HTTP endpoints of the authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
	baseURL string
	metrics *observability.Metrics
}

// NewHandler constructs a Handler instance. baseURL is the public origin of
// the web client, used to build the verification redirect.
func NewHandler(logger *slog.Logger, service *Service, baseURL string, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, baseURL: strings.TrimRight(baseURL, "/"), metrics: metrics}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/signup", h.handleSignup)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Post("/reset-password", h.handleResetPassword)
	r.Get("/verify-email", h.handleVerifyEmail)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleSession)
	r.Get("/flow", h.handleFlow)
}

type userPayload struct {
	ID          int64               `json:"id"`
	Email       string              `json:"email"`
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	Phone       string              `json:"phone,omitempty"`
	Role        string              `json:"role"`
	Permissions map[string][]string `json:"permissions"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	LastLogin   *time.Time          `json:"last_login,omitempty"`
}

func toUserPayload(user *User) userPayload {
	return userPayload{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		Role:        string(user.Role),
		Permissions: user.EffectivePermissions().Strings(),
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
		LastLogin:   user.LastLogin,
	}
}

type sessionPayload struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
	StoreID   *int64    `json:"store_id,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Intended string `json:"intended,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	result, err := h.service.Login(r.Context(), req.Email, req.Password, req.Intended)
	if err != nil {
		h.metrics.RecordLogin("failure")
		h.respondError(w, "login", err)
		return
	}
	h.metrics.RecordLogin("success")
	httpx.JSON(w, http.StatusOK, map[string]any{
		"session": sessionPayload{
			Token:     result.Session.Token,
			CreatedAt: result.Session.CreatedAt,
			LastLogin: result.Session.LastLogin,
			StoreID:   result.Session.StoreID,
		},
		"user":     toUserPayload(result.User),
		"redirect": result.Redirect,
	})
}

type signupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	err := h.service.Signup(r.Context(), SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondError(w, "signup", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Compte créé. Veuillez vérifier votre boîte mail pour activer votre compte.",
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.respondError(w, "forgot password", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Si un compte existe pour cette adresse, un email de réinitialisation a été envoyé.",
	})
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"password_confirmation"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Token, req.Email, req.Password, req.ConfirmPassword); err != nil {
		h.respondError(w, "reset password", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":  "Mot de passe mis à jour. Vous pouvez vous connecter.",
		"redirect": h.authPageURL(url.Values{"verified": {"1"}}),
	})
}

// handleVerifyEmail consumes the emailed link and redirects back to the auth
// page; the outcome travels in the verified query parameter only.
func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	outcome := "1"
	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		outcome = "0"
	}
	http.Redirect(w, r, h.authPageURL(url.Values{"verified": {outcome}}), http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			h.logger.Warn("logout", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Déconnecté"})
}

// handleSession restores the session behind the bearer token. The response
// is always 200: a missing or revoked token is an unauthenticated state, not
// an error the client has to surface.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Restore(r.Context(), bearerToken(r))
	if err != nil {
		h.respondError(w, "restore session", err)
		return
	}
	if sess == nil {
		httpx.JSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"session": sessionPayload{
			Token:     sess.Token,
			CreatedAt: sess.CreatedAt,
			LastLogin: sess.LastLogin,
			StoreID:   sess.StoreID,
		},
		"user": map[string]any{
			"id":          sess.UserID,
			"email":       sess.Email,
			"first_name":  sess.FirstName,
			"last_name":   sess.LastName,
			"role":        sess.Role,
			"permissions": sess.Permissions,
			"is_active":   sess.IsActive,
		},
	})
}

// handleFlow derives the display mode for the auth page from the caller's
// URL query, so a reload lands on the same view.
func (h *Handler) handleFlow(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	flags := FlowFlags{
		SignupCompleted: query.Get("signup_complete") == "1",
		ForgotRequested: query.Get("forgot_requested") == "1",
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"mode": DeriveMode(query, flags)})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var fieldErr shared.FieldErrors
	if !errors.As(err, &fieldErr) && h.logger != nil {
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func (h *Handler) authPageURL(query url.Values) string {
	return h.baseURL + "/auth?" + query.Encode()
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}
