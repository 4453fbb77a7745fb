package auth

import "net/url"

// Mode is the mutually exclusive display state of the authentication page.
// Exactly one mode is active for a given URL; derivation is pure so a page
// reload reconstructs the same view.
type Mode string

const (
	ModeLogin              Mode = "login"
	ModeSignup             Mode = "signup"
	ModeForgotPassword     Mode = "forgot-password"
	ModeResetPassword      Mode = "reset-password"
	ModeVerifiedSuccess    Mode = "verified-success"
	ModeVerificationFailed Mode = "verification-failed"
	ModeSignupComplete     Mode = "signup-complete"
)

// FlowFlags are the transient client-local signals that cannot be read from
// the URL: a signup that just completed in this page, and a pending
// forgot-password form.
type FlowFlags struct {
	SignupCompleted bool
	ForgotRequested bool
}

// DeriveMode computes the display mode for the given URL query. Precedence,
// in order: verification outcome, completed signup, reset link (token and
// email both present), pending forgot-password form, tab selection. The
// verification outcome wins even when reset-link parameters are also
// present in the URL.
func DeriveMode(query url.Values, flags FlowFlags) Mode {
	switch query.Get("verified") {
	case "1":
		return ModeVerifiedSuccess
	case "0":
		return ModeVerificationFailed
	}
	if flags.SignupCompleted {
		return ModeSignupComplete
	}
	if query.Get("token") != "" && query.Get("email") != "" {
		return ModeResetPassword
	}
	if flags.ForgotRequested {
		return ModeForgotPassword
	}
	if query.Get("tab") == "signup" {
		return ModeSignup
	}
	return ModeLogin
}
