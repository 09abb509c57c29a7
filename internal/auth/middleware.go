package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/models"
	"gorm.io/gorm"
)

// Verifier resolves bearer tokens to identities. RequireAuth and OptionalAuth
// share resolve and differ only in what they do on failure.
type Verifier struct {
	tokens *Tokens
	db     *gorm.DB
}

func NewVerifier(tokens *Tokens, db *gorm.DB) *Verifier {
	return &Verifier{tokens: tokens, db: db}
}

// resolve extracts and verifies the bearer token on r and loads the subject
// user. The three failure messages are distinct on purpose: clients prompt a
// re-login on any of them, but support relies on the difference.
func (v *Verifier) resolve(r *http.Request) (Identity, error) {
	raw := bearerToken(r)
	if raw == "" {
		return Anonymous, apperr.Unauthenticated("Access denied. No token provided.")
	}

	userID, err := v.tokens.Parse(raw)
	if err != nil {
		return Anonymous, apperr.Unauthenticated("Invalid token.")
	}

	var user models.User
	if err := v.db.WithContext(r.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Anonymous, apperr.Unauthenticated("Invalid token. User not found.")
		}
		return Anonymous, apperr.Storage("load token subject", err)
	}

	return Identity{User: &user}, nil
}

// RequireAuth rejects the request with 401 unless a valid identity resolves.
func (v *Verifier) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := v.resolve(r)
		if err != nil {
			denied(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}

// OptionalAuth resolves an identity when possible and proceeds anonymously
// otherwise. Verification failures are deliberately indistinguishable from a
// missing token here.
func (v *Verifier) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := v.resolve(r)
		if err != nil {
			ident = Anonymous
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}

// RequireRole gates a route on the resolved identity's role. Must run after
// RequireAuth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := IdentityFrom(r.Context())
			if !ident.Authenticated() {
				denied(w, apperr.Unauthenticated("Access denied. Not authenticated."))
				return
			}
			for _, role := range roles {
				if ident.Role() == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			denied(w, apperr.Forbidden("Access forbidden. You do not have the required permissions."))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func denied(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	if apperr.IsForbidden(err) {
		status = http.StatusForbidden
	}
	msg := "Access denied."
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindStorage {
		msg = ae.Message
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
