package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/aurasense/aurasense-server/internal/model"
	"github.com/aurasense/aurasense-server/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	email := "u-" + uuid.New().String() + "@example.test"

	u := &model.User{Email: email, FirstName: "Ada", LastName: "Lovelace", PreferredLanguages: []string{"en"}}
	created, err := s.Users().Create(ctx, u)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.UserID == "" {
		t.Fatalf("CreateUser: empty user id")
	}
	if created.IsOnboarded {
		t.Fatalf("CreateUser: new user must not be onboarded")
	}

	if _, err := s.Users().Create(ctx, &model.User{Email: email, FirstName: "Dup", LastName: "User"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("CreateUser duplicate email: want ErrConflict, got %v", err)
	}

	got, err := s.Users().GetByEmail(ctx, email)
	if err != nil || got.UserID != created.UserID {
		t.Fatalf("GetByEmail: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByID(ctx, created.UserID); err != nil || got.Email != email {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if _, err := s.Users().GetByEmail(ctx, "absent@example.test"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByEmail absent: want ErrNotFound, got %v", err)
	}

	// Profile writes replace collection fields wholesale and skip absent keys.
	err = s.Users().UpdateProfile(ctx, email, map[string]any{
		"age":                  25,
		"dietary_restrictions": []string{"vegetarian"},
		"cuisine_preferences":  []string{"italian"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got, err = s.Users().GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail after update: %v", err)
	}
	if got.Age == nil || *got.Age != 25 {
		t.Fatalf("UpdateProfile age: got %v", got.Age)
	}
	if len(got.DietaryRestrictions) != 1 || got.DietaryRestrictions[0] != "vegetarian" {
		t.Fatalf("UpdateProfile dietary_restrictions: got %v", got.DietaryRestrictions)
	}

	// A second partial write must not erase previously written fields.
	if err := s.Users().UpdateProfile(ctx, email, map[string]any{"spice_tolerance": 3}); err != nil {
		t.Fatalf("UpdateProfile second write: %v", err)
	}
	got, _ = s.Users().GetByEmail(ctx, email)
	if got.Age == nil || *got.Age != 25 || got.SpiceTolerance == nil || *got.SpiceTolerance != 3 {
		t.Fatalf("partial update lost fields: age=%v spice=%v", got.Age, got.SpiceTolerance)
	}

	if err := s.Users().UpdateProfile(ctx, "absent@example.test", map[string]any{"age": 1}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateProfile absent user: want ErrNotFound, got %v", err)
	}

	if err := s.Users().SetOnboarded(ctx, email); err != nil {
		t.Fatalf("SetOnboarded: %v", err)
	}
	got, _ = s.Users().GetByEmail(ctx, email)
	if !got.IsOnboarded {
		t.Fatalf("SetOnboarded: flag not set")
	}
}
