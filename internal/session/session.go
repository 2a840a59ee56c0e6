// Package session carries the authenticated caller through a request context.
package session

import (
	"context"

	"authhub/internal/apperr"

	"github.com/google/uuid"
)

type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// MustFromContext returns the principal or an Unauthorized error.
func MustFromContext(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok || p.UserID == uuid.Nil {
		return Principal{}, apperr.Unauthorized("You are not logged in, try to log in")
	}
	return p, nil
}
