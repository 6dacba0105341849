package utils

import (
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/cardbox-api/auth"
	"github.com/andrewpaige1/cardbox-api/models"
)

// CurrentIdentity returns the caller attached by the identity middleware, or
// the anonymous identity.
func CurrentIdentity(r *http.Request) models.Identity {
	claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok {
		return models.Identity{}
	}
	return auth.IdentityFromClaims(claims)
}
