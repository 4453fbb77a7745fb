package auth_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/othmanee23/oraxonoptic/internal/auth"
)

func TestDeriveMode(t *testing.T) {
	tests := []struct {
		name  string
		query string
		flags auth.FlowFlags
		want  auth.Mode
	}{
		{name: "default is login", query: "", want: auth.ModeLogin},
		{name: "signup tab", query: "tab=signup", want: auth.ModeSignup},
		{name: "other tab values fall back to login", query: "tab=unknown", want: auth.ModeLogin},
		{name: "verified success", query: "verified=1", want: auth.ModeVerifiedSuccess},
		{name: "verified failure", query: "verified=0", want: auth.ModeVerificationFailed},
		{name: "reset link", query: "token=abc&email=x%40y.com", want: auth.ModeResetPassword},
		{name: "token without email is not a reset link", query: "token=abc", want: auth.ModeLogin},
		{name: "email without token is not a reset link", query: "email=x%40y.com", want: auth.ModeLogin},
		{
			name:  "verified outcome beats reset link parameters",
			query: "verified=1&token=abc&email=x%40y.com",
			want:  auth.ModeVerifiedSuccess,
		},
		{
			name:  "verification failure beats reset link parameters",
			query: "verified=0&token=abc&email=x%40y.com",
			want:  auth.ModeVerificationFailed,
		},
		{
			name:  "signup complete flag",
			flags: auth.FlowFlags{SignupCompleted: true},
			want:  auth.ModeSignupComplete,
		},
		{
			name:  "signup complete flag beats reset link",
			query: "token=abc&email=x%40y.com",
			flags: auth.FlowFlags{SignupCompleted: true},
			want:  auth.ModeSignupComplete,
		},
		{
			name:  "forgot password flag",
			flags: auth.FlowFlags{ForgotRequested: true},
			want:  auth.ModeForgotPassword,
		},
		{
			name:  "reset link beats forgot flag",
			query: "token=abc&email=x%40y.com",
			flags: auth.FlowFlags{ForgotRequested: true},
			want:  auth.ModeResetPassword,
		},
		{
			name:  "verified outcome beats every flag",
			query: "verified=1",
			flags: auth.FlowFlags{SignupCompleted: true, ForgotRequested: true},
			want:  auth.ModeVerifiedSuccess,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			assert.Equal(t, tc.want, auth.DeriveMode(query, tc.flags))
		})
	}
}

func TestDeriveModeIsIdempotent(t *testing.T) {
	query, _ := url.ParseQuery("token=abc&email=x%40y.com")
	first := auth.DeriveMode(query, auth.FlowFlags{})
	second := auth.DeriveMode(query, auth.FlowFlags{})
	assert.Equal(t, first, second)
}
