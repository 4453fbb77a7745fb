package httpx

import (
	"errors"
	"net/http"

	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// RespondError maps domain errors to HTTP error envelopes. Field-level
// validation failures keep their per-field messages; everything unexpected
// collapses into one generic banner.
func RespondError(w http.ResponseWriter, err error) {
	var fieldErr shared.FieldErrors
	if errors.As(err, &fieldErr) {
		Fields(w, http.StatusUnprocessableEntity, "Certains champs sont invalides", fieldErr)
		return
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Message(w, http.StatusNotFound, "Ressource introuvable")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Message(w, http.StatusUnauthorized, "Email ou mot de passe incorrect")
	case errors.Is(err, shared.ErrInvalidToken):
		Message(w, http.StatusBadRequest, "Ce lien est invalide ou a expiré")
	case errors.Is(err, shared.ErrSessionRevoked):
		Message(w, http.StatusUnauthorized, "Authentification requise")
	default:
		Message(w, http.StatusInternalServerError, "Une erreur est survenue")
	}
}
