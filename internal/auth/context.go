package auth

import (
	"context"

	"github.com/okian/rampart/internal/domain/model"
)

type contextKey struct{}

// ContextWithIdentity returns a child context carrying id.
func ContextWithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the identity stored by the auth middleware.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(model.Identity)
	return id, ok
}
