package auth

import (
	"context"
	"errors"
)

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleEmployee }

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be Admin or Employee")
)

// Principal is the authenticated caller. Handlers pass it explicitly into
// every service call that mutates state.
type Principal struct {
	UserID string
	Role   Role
	Name   string
}

func (p Principal) Authenticated() bool { return p.UserID != "" }

func (p Principal) RequireAdmin() error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	if p.Role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.Authenticated()
}
