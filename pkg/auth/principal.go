package auth

import (
	"context"

	"resellops/pkg/rbac"

	"github.com/bwmarrin/snowflake"
)

// Principal is the authenticated identity attached to every request.
type Principal struct {
	ID   snowflake.ID `json:"id"`
	Role rbac.Role    `json:"role"`
}

type principalKey struct{}

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext extracts the principal placed by the auth middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
