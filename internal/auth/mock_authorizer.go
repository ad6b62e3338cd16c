package auth

import (
	"context"

	"github.com/aurasense/aurasense-server/internal/model"
)

// MockAuthorizer maps fixed tokens to users; used in tests and local tools.
type MockAuthorizer struct {
	Users map[string]*model.User
}

func NewMockAuthorizer() *MockAuthorizer {
	return &MockAuthorizer{Users: map[string]*model.User{}}
}

// Allow registers a token for a user and returns the authorizer for chaining.
func (m *MockAuthorizer) Allow(token string, u *model.User) *MockAuthorizer {
	m.Users[token] = u
	return m
}

func (m *MockAuthorizer) Authorize(ctx context.Context, token string) (*model.User, error) {
	u, ok := m.Users[token]
	if !ok {
		return nil, ErrUnauthorized
	}
	return u, nil
}
