// Package memory provides an in-process user store used for local
// development and tests. It implements the same contract as the Neo4j
// store, including wholesale replacement of collection fields.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aurasense/aurasense-server/internal/model"
	"github.com/aurasense/aurasense-server/internal/store"
)

// New constructs an empty in-memory store.
func New() store.Store { return &memStore{byEmail: map[string]*model.User{}} }

type memStore struct {
	mu      sync.RWMutex
	byEmail map[string]*model.User
}

func (s *memStore) Users() store.Users { return (*users)(s) }

// HealthPing implements health.HealthPinger; the in-process store is always up.
func (s *memStore) HealthPing(ctx context.Context) error { return nil }

type users memStore

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	key := strings.ToLower(m.Email)
	if _, ok := u.byEmail[key]; ok {
		return nil, model.ErrConflict
	}
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()
	u.byEmail[key] = &out
	cp := out
	return &cp, nil
}

func (u *users) GetByID(ctx context.Context, userID string) (*model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, m := range u.byEmail {
		if m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	m, ok := u.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (u *users) UpdateProfile(ctx context.Context, email string, fields map[string]any) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.byEmail[strings.ToLower(email)]
	if !ok {
		return model.ErrNotFound
	}
	applyFields(m, fields)
	now := time.Now().UTC()
	m.LastActive = &now
	return nil
}

func (u *users) SetOnboarded(ctx context.Context, email string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.byEmail[strings.ToLower(email)]
	if !ok {
		return model.ErrNotFound
	}
	m.IsOnboarded = true
	return nil
}

func applyFields(m *model.User, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "age":
			if n, ok := asInt(v); ok {
				m.Age = &n
			}
		case "spice_tolerance":
			if n, ok := asInt(v); ok {
				m.SpiceTolerance = &n
			}
		case "price_range":
			if s, ok := v.(string); ok {
				m.PriceRange = &s
			}
		case "phone":
			if s, ok := v.(string); ok {
				m.Phone = &s
			}
		case "username":
			if s, ok := v.(string); ok {
				m.Username = &s
			}
		case "is_tourist":
			if b, ok := v.(bool); ok {
				m.IsTourist = &b
			}
		case "dietary_restrictions":
			m.DietaryRestrictions = asStrings(v)
		case "cuisine_preferences":
			m.CuisinePreferences = asStrings(v)
		case "cultural_background":
			m.CulturalBackground = asStrings(v)
		case "food_allergies":
			m.FoodAllergies = asStrings(v)
		case "preferred_languages":
			m.PreferredLanguages = asStrings(v)
		}
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asStrings(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
