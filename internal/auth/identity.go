package auth

import (
	"context"

	"github.com/uniarchive/photoarchive/models"
)

// Identity is the resolved caller of a request. The zero value is anonymous.
type Identity struct {
	User *models.User
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

func (id Identity) Authenticated() bool { return id.User != nil }

// Role returns the caller's role; anonymous callers act as public.
func (id Identity) Role() models.Role {
	if id.User == nil {
		return models.RolePublic
	}
	return id.User.Role
}

type ctxKey struct{}

// WithIdentity stores id in ctx for downstream handlers.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity stored by the auth middleware, or
// Anonymous when no middleware ran.
func IdentityFrom(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
