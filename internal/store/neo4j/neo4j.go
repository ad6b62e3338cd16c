// Package neo4j implements the durable user store on the Neo4j graph
// database. User records are single :User nodes; the onboarding fields are
// flat node properties so UpdateProfile maps directly onto `SET u += $fields`.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/aurasense/aurasense-server/internal/model"
	"github.com/aurasense/aurasense-server/internal/store"
)

// Open creates a Neo4j driver and verifies connectivity.
func Open(ctx context.Context, uri, username, password string) (neo4j.DriverWithContext, error) {
	if uri == "" {
		return nil, fmt.Errorf("neo4j URI is empty")
	}
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return driver, nil
}

// NewWithDriver constructs a graph store backed by an existing driver.
func NewWithDriver(driver neo4j.DriverWithContext) store.Store { return &graphStore{driver: driver} }

type graphStore struct{ driver neo4j.DriverWithContext }

func (s *graphStore) Users() store.Users { return &users{driver: s.driver} }

// HealthPing implements health.HealthPinger for the Neo4j-backed store.
func (s *graphStore) HealthPing(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

type users struct{ driver neo4j.DriverWithContext }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	existing, err := neo4j.ExecuteQuery(ctx, u.driver, `
        MATCH (u:User {email: $email}) RETURN u.user_id LIMIT 1
    `, map[string]any{"email": m.Email}, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, err
	}
	if len(existing.Records) > 0 {
		return nil, model.ErrConflict
	}

	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()

	props := map[string]any{
		"user_id":      out.UserID,
		"email":        out.Email,
		"first_name":   out.FirstName,
		"last_name":    out.LastName,
		"is_onboarded": false,
		"created_at":   out.CreationTime,
	}
	if out.Username != nil {
		props["username"] = *out.Username
	}
	if len(out.PreferredLanguages) > 0 {
		props["preferred_languages"] = out.PreferredLanguages
	}

	_, err = neo4j.ExecuteQuery(ctx, u.driver, `
        CREATE (u:User) SET u = $props
    `, map[string]any{"props": props}, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *users) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return u.getOne(ctx, `MATCH (u:User {user_id: $key}) RETURN u LIMIT 1`, userID)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.getOne(ctx, `MATCH (u:User {email: $key}) RETURN u LIMIT 1`, email)
}

func (u *users) getOne(ctx context.Context, cypher, key string) (*model.User, error) {
	res, err := neo4j.ExecuteQuery(ctx, u.driver, cypher,
		map[string]any{"key": key}, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, model.ErrNotFound
	}
	raw, ok := res.Records[0].Get("u")
	if !ok {
		return nil, fmt.Errorf("neo4j: user column missing")
	}
	node, ok := raw.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("neo4j: unexpected record type %T", raw)
	}
	return userFromProps(node.Props), nil
}

func (u *users) UpdateProfile(ctx context.Context, email string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res, err := neo4j.ExecuteQuery(ctx, u.driver, `
        MATCH (u:User {email: $email})
        SET u += $fields, u.last_active = $now
        RETURN u.user_id
    `, map[string]any{
		"email":  email,
		"fields": fields,
		"now":    time.Now().UTC(),
	}, neo4j.EagerResultTransformer)
	if err != nil {
		return err
	}
	if len(res.Records) == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (u *users) SetOnboarded(ctx context.Context, email string) error {
	res, err := neo4j.ExecuteQuery(ctx, u.driver, `
        MATCH (u:User {email: $email})
        SET u.is_onboarded = true
        RETURN u.user_id
    `, map[string]any{"email": email}, neo4j.EagerResultTransformer)
	if err != nil {
		return err
	}
	if len(res.Records) == 0 {
		return model.ErrNotFound
	}
	return nil
}

func userFromProps(p map[string]any) *model.User {
	out := &model.User{}
	out.UserID, _ = p["user_id"].(string)
	out.Email, _ = p["email"].(string)
	out.FirstName, _ = p["first_name"].(string)
	out.LastName, _ = p["last_name"].(string)
	if s, ok := p["username"].(string); ok {
		out.Username = &s
	}
	if s, ok := p["phone"].(string); ok && s != "" {
		out.Phone = &s
	}
	if n, ok := asInt(p["age"]); ok {
		out.Age = &n
	}
	if n, ok := asInt(p["spice_tolerance"]); ok {
		out.SpiceTolerance = &n
	}
	if s, ok := p["price_range"].(string); ok && s != "" {
		out.PriceRange = &s
	}
	if b, ok := p["is_tourist"].(bool); ok {
		out.IsTourist = &b
	}
	out.DietaryRestrictions = asStrings(p["dietary_restrictions"])
	out.CuisinePreferences = asStrings(p["cuisine_preferences"])
	out.CulturalBackground = asStrings(p["cultural_background"])
	out.FoodAllergies = asStrings(p["food_allergies"])
	out.PreferredLanguages = asStrings(p["preferred_languages"])
	if b, ok := p["is_onboarded"].(bool); ok {
		out.IsOnboarded = b
	}
	if t, ok := p["created_at"].(time.Time); ok {
		out.CreationTime = t
	}
	if t, ok := p["last_active"].(time.Time); ok {
		out.LastActive = &t
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, e := range items {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
