package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a verification or reset link that does not
	// match an outstanding token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSessionRevoked indicates a syntactically valid access token whose
	// backing session no longer exists.
	ErrSessionRevoked = errors.New("session revoked")
)

// FieldErrors maps form field names to human-readable messages. It satisfies
// error so services can short-circuit on local validation without the
// handler losing the per-field detail.
type FieldErrors map[string]string

// Error implements the error interface.
func (f FieldErrors) Error() string {
	return "validation failed"
}

// Add records a message for a field, keeping the first message per field.
func (f FieldErrors) Add(field, message string) {
	if _, ok := f[field]; !ok {
		f[field] = message
	}
}

// AsError returns nil when no field failed, else the map itself.
func (f FieldErrors) AsError() error {
	if len(f) == 0 {
		return nil
	}
	return f
}
