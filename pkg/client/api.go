package client

import (
	"context"
	"net/http"
	"time"
)

// User mirrors the user payload of the API.
type User struct {
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

// Session mirrors the session payload of the API.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
	StoreID   *int64    `json:"store_id,omitempty"`
}

// LoginResult is the login response: session, user and post-login route.
type LoginResult struct {
	Session  Session `json:"session"`
	User     User    `json:"user"`
	Redirect string  `json:"redirect"`
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password, intended string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password, "intended": intended,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.SetToken(result.Session.Token)
	return &result, nil
}

// Logout revokes the session and forgets the token either way.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

// SignupInput carries the registration form fields.
type SignupInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Signup registers an account. The account stays unusable until the
// verification link is clicked; no token is returned.
func (c *Client) Signup(ctx context.Context, in SignupInput) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signup", in, nil)
}

// ForgotPassword requests a reset link. The server acks regardless of
// whether the address is known.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword completes the reset flow with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, email, password, confirm string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token": token, "email": email,
		"password": password, "password_confirmation": confirm,
	}, nil)
}

// SessionState is the restore-on-load answer.
type SessionState struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// CurrentSession restores the session for the held token. An expired or
// revoked token yields Authenticated == false, not an error.
func (c *Client) CurrentSession(ctx context.Context) (*SessionState, error) {
	var state SessionState
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Profile fetches the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate carries the editable profile fields. Leave the password
// fields empty to keep the current password.
type ProfileUpdate struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone,omitempty"`
	CurrentPassword string `json:"current_password,omitempty"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"password_confirmation,omitempty"`
}

// UpdateProfile edits the profile and returns the canonical result.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/api/profile", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DashboardSummary mirrors the dashboard payload of the API.
type DashboardSummary struct {
	StoreID         *int64 `json:"store_id"`
	SalesTodayCents int64  `json:"sales_today_cents"`
	SalesMonthCents int64  `json:"sales_month_cents"`
	SalesTodayLabel string `json:"sales_today_label"`
	SalesMonthLabel string `json:"sales_month_label"`
	OrdersToday     int    `json:"orders_today"`
	StockAlerts     int    `json:"stock_alerts"`
	WorkshopPending int    `json:"workshop_pending"`
	WorkshopReady   int    `json:"workshop_ready"`
	ClientsTotal    int    `json:"clients_total"`
	UnreadMessages  int    `json:"unread_messages"`
}

// Dashboard fetches the summary for the pinned store scope.
func (c *Client) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	var summary DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Store mirrors the store payload of the API.
type Store struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Stores lists the selectable stores and the persisted selection.
func (c *Client) Stores(ctx context.Context) ([]Store, *int64, error) {
	var out struct {
		Stores   []Store `json:"stores"`
		Selected *int64  `json:"selected"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/stores", nil, &out); err != nil {
		return nil, nil, err
	}
	return out.Stores, out.Selected, nil
}

// SelectStore persists the store selection and pins it on the client.
func (c *Client) SelectStore(ctx context.Context, storeID *int64) error {
	err := c.do(ctx, http.MethodPut, "/api/stores/selection", map[string]*int64{"store_id": storeID}, nil)
	if err != nil {
		return err
	}
	c.UseStore(storeID)
	return nil
}

// Pagination mirrors the list metadata of the API.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Users lists accounts, management permission required.
func (c *Client) Users(ctx context.Context, page int) ([]User, Pagination, error) {
	var out struct {
		Users      []User     `json:"users"`
		Pagination Pagination `json:"pagination"`
	}
	path := "/api/users"
	if page > 1 {
		path += "?page=" + itoa(page)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, Pagination{}, err
	}
	return out.Users, out.Pagination, nil
}

// ContactMessage mirrors the inbox payload of the API.
type ContactMessage struct {
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

// ContactMessages lists the inbox, optionally unread only.
func (c *Client) ContactMessages(ctx context.Context, onlyUnread bool) ([]ContactMessage, Pagination, error) {
	var out struct {
		Messages   []ContactMessage `json:"messages"`
		Pagination Pagination       `json:"pagination"`
	}
	path := "/api/contact-messages"
	if onlyUnread {
		path += "?unread=1"
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, Pagination{}, err
	}
	return out.Messages, out.Pagination, nil
}

// MarkMessageRead flips the read flag of an inbox message.
func (c *Client) MarkMessageRead(ctx context.Context, id int64, read bool) error {
	return c.do(ctx, http.MethodPatch, "/api/contact-messages/"+itoa64(id), map[string]bool{"is_read": read}, nil)
}

// DeleteMessage removes an inbox message.
func (c *Client) DeleteMessage(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/contact-messages/"+itoa64(id), nil, nil)
}
