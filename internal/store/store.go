package store

import (
	"context"

	"github.com/aurasense/aurasense-server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (e.g., neo4j, memory).
type Store interface {
	Users() Users
}

// Users is the durable user record surface consumed by registration and the
// onboarding reconciler. GetByEmail and GetByID return model.ErrNotFound when
// no record exists.
type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdateProfile writes the given onboarding fields onto the record keyed
	// by email. Collection fields are replaced wholesale; keys absent from the
	// map are left untouched.
	UpdateProfile(ctx context.Context, email string, fields map[string]any) error

	// SetOnboarded flips the is_onboarded flag. The flag never flips back.
	SetOnboarded(ctx context.Context, email string) error
}
