package auth

import (
	"github.com/go-playground/validator/v10"

	"github.com/othmanee23/oraxonoptic/internal/shared"
)

var validate = validator.New()

const (
	minPasswordLen = 8
	maxNameLen     = 50
	maxEmailLen    = 255
)

func validEmail(email string) bool {
	return validate.Var(email, "required,email,max=255") == nil
}

// validateLogin checks credentials locally. A non-nil result means the
// repository must not be touched.
func validateLogin(email, password string) shared.FieldErrors {
	errs := shared.FieldErrors{}
	if !validEmail(email) {
		errs.Add("email", "Adresse email invalide")
	}
	if len(password) < minPasswordLen {
		errs.Add("password", "Le mot de passe doit contenir au moins 8 caractères")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateName(errs shared.FieldErrors, field, value, label string) {
	if len(value) < 2 || len(value) > maxNameLen {
		errs.Add(field, label+" doit contenir entre 2 et 50 caractères")
	}
}

// validatePasswordPair enforces the shared password rules of signup and
// reset. A mismatch is reported on the confirmation field, not the password.
func validatePasswordPair(errs shared.FieldErrors, password, confirm string) {
	if len(password) < minPasswordLen {
		errs.Add("password", "Le mot de passe doit contenir au moins 8 caractères")
		return
	}
	if password != confirm {
		errs.Add("confirmPassword", "Les mots de passe ne correspondent pas")
	}
}

func validateSignup(in SignupInput) shared.FieldErrors {
	errs := shared.FieldErrors{}
	validateName(errs, "firstName", in.FirstName, "Le prénom")
	validateName(errs, "lastName", in.LastName, "Le nom")
	if !validEmail(in.Email) {
		errs.Add("email", "Adresse email invalide")
	}
	validatePasswordPair(errs, in.Password, in.ConfirmPassword)
	if len(errs) == 0 {
		return nil
	}
	return errs
}
