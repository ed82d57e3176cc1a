// Package identity turns transport credentials into the owner id that the
// query and mutation services are called with.
package identity

import (
	"context"

	"todo-tracker/internal/model"
)

// Resolver yields the caller's user id, or false when the call is anonymous.
type Resolver interface {
	Resolve(ctx context.Context) (model.UserID, bool)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying an already-resolved user id.
func WithUser(ctx context.Context, user model.UserID) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// FromContext returns the user id stored by WithUser, or model.Anonymous.
func FromContext(ctx context.Context) model.UserID {
	user, _ := ctx.Value(userKey{}).(model.UserID)
	return user
}

// ContextResolver reads the user id a transport placed on the context.
type ContextResolver struct{}

func (ContextResolver) Resolve(ctx context.Context) (model.UserID, bool) {
	user := FromContext(ctx)
	return user, !user.IsAnonymous()
}
