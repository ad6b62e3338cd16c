// Package auth supplies the authenticated user identity for turn-driving
// requests. Credential verification, password hashing, and token issuance are
// external collaborators; this package only defines the surface the
// transports consume.
package auth

import (
	"context"
	"errors"

	"github.com/aurasense/aurasense-server/internal/model"
	"github.com/aurasense/aurasense-server/internal/store"
)

var ErrUnauthorized = errors.New("invalid or expired token")

// Authorizer resolves a bearer token to the durable user it belongs to.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*model.User, error)
}

// TokenAuthorizer treats the bearer token as an opaque user identifier and
// resolves it against the durable store. It stands in for the real identity
// service in development deployments.
type TokenAuthorizer struct {
	users store.Users
}

func NewTokenAuthorizer(users store.Users) *TokenAuthorizer {
	return &TokenAuthorizer{users: users}
}

func (a *TokenAuthorizer) Authorize(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	u, err := a.users.GetByID(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
