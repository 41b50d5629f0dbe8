package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// StreamAuthenticator builds a function matching notifier.Authenticator:
// it extracts the bearer token, validates it, and parses the owner id
// claim as a UUID.
func StreamAuthenticator(verifier *Verifier) func(r *http.Request) (uuid.UUID, bool) {
	return func(r *http.Request) (uuid.UUID, bool) {
		token := bearerToken(r)
		if token == "" {
			return uuid.Nil, false
		}

		claims, err := verifier.ValidateAccessToken(token)
		if err != nil {
			return uuid.Nil, false
		}

		ownerID, err := uuid.Parse(claims.OwnerID())
		if err != nil {
			return uuid.Nil, false
		}
		return ownerID, true
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimPrefix(header, prefix)
	}
	return r.URL.Query().Get("access_token")
}
