package graph

import "context"

// CurrentUser is the authenticated identity extracted from the access token
// by the identity middleware. Roles come from the token so resolvers can
// authorize without a database round trip.
type CurrentUser struct {
	ID       string
	Username string
	Email    string
	Roles    []string
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u *CurrentUser) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == "ADMIN" {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithUser stores the authenticated user on the request context.
func WithUser(ctx context.Context, u *CurrentUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *CurrentUser {
	u, _ := ctx.Value(ctxKey{}).(*CurrentUser)
	return u
}
