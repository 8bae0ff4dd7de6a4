package auth

import (
	"context"
	"slices"
)

// Roles carried in the "role" claim of TabooTV access tokens.
const (
	RoleViewer  = "viewer"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// Identity is the caller as asserted by a verified access token. The zero value is anonymous.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// HasRole reports whether the caller holds one of roles. Admins hold every role.
func (i Identity) HasRole(roles ...string) bool {
	if i.Anonymous() {
		return false
	}
	return i.Role == RoleAdmin || slices.Contains(roles, i.Role)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// GetIdentity returns the anonymous Identity and false when no token was verified.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && !id.Anonymous()
}
