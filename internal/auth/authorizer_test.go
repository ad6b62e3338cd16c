package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurasense/aurasense-server/internal/model"
	"github.com/aurasense/aurasense-server/internal/store/memory"
)

func TestTokenAuthorizer(t *testing.T) {
	users := memory.New().Users()
	u, err := users.Create(context.Background(), &model.User{
		UserID:       "u-1",
		Email:        "maria@example.com",
		FirstName:    "Maria",
		CreationTime: time.Now().UTC(),
	})
	require.NoError(t, err)

	a := NewTokenAuthorizer(users)

	got, err := a.Authorize(context.Background(), u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = a.Authorize(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = a.Authorize(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMockAuthorizer(t *testing.T) {
	u := &model.User{UserID: "u-1", Email: "maria@example.com"}
	m := NewMockAuthorizer().Allow("tok", u)

	got, err := m.Authorize(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = m.Authorize(context.Background(), "other")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
