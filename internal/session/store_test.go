package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurasense/aurasense-server/internal/model"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := New(rdb, ttl)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	st := &model.ConversationState{
		SessionID: "s-1",
		UserID:    "u-1",
		Email:     "maria@example.com",
		Status:    model.StatusPendingInfo,
		Extracted: map[string]any{"age": float64(30), "first_name": "Maria"},
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.Save(ctx, "u-1", "s-1", st))

	got, err := s.Load(ctx, "u-1", "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, st.SessionID, got.SessionID)
	assert.Equal(t, st.Email, got.Email)
	assert.Equal(t, st.Extracted, got.Extracted)
}

func TestLoadMissingSessionIsNotAnError(t *testing.T) {
	s, _ := newTestStore(t, time.Minute)

	got, err := s.Load(context.Background(), "u-1", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionsAreScopedByUser(t *testing.T) {
	s, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	st := &model.ConversationState{SessionID: "s-1", UserID: "u-1", Status: model.StatusPendingInfo}
	require.NoError(t, s.Save(ctx, "u-1", "s-1", st))

	got, err := s.Load(ctx, "u-2", "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	st := &model.ConversationState{SessionID: "s-1", UserID: "u-1", Status: model.StatusPendingInfo}
	require.NoError(t, s.Save(ctx, "u-1", "s-1", st))
	require.NoError(t, s.Delete(ctx, "u-1", "s-1"))

	got, err := s.Load(ctx, "u-1", "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent session is a no-op.
	assert.NoError(t, s.Delete(ctx, "u-1", "s-1"))
}

func TestSaveRefreshesTTL(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	st := &model.ConversationState{SessionID: "s-1", UserID: "u-1", Status: model.StatusPendingInfo}
	require.NoError(t, s.Save(ctx, "u-1", "s-1", st))

	mr.FastForward(45 * time.Second)
	require.NoError(t, s.Save(ctx, "u-1", "s-1", st))
	mr.FastForward(45 * time.Second)

	// The second save reset the clock, so the session is still alive 90s in.
	got, err := s.Load(ctx, "u-1", "s-1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	mr.FastForward(time.Minute)
	got, err = s.Load(ctx, "u-1", "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHealthPing(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	require.NoError(t, s.HealthPing(context.Background()))

	mr.Close()
	assert.Error(t, s.HealthPing(context.Background()))
}
