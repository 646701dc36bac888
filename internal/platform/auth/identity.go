package auth

import "context"

// Identity describes the authenticated caller extracted from a verified
// Firebase ID token.
type Identity struct {
	UID         string
	PhoneNumber string
	DisplayName string
	Roles       []string
}

// HasRole reports whether the identity carries the given role claim.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type identityContextKey struct{}

// WithIdentity stores the identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFrom retrieves the identity set by the auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
