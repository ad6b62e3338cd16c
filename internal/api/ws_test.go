package api

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurasense/aurasense-server/internal/model"
)

func dialWS(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/onboarding"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) serverFrame {
	t.Helper()
	var f serverFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWSDialogue(t *testing.T) {
	llm := &fakeCompleter{json: `{"age": 25, "dietary_restrictions": ["vegetarian"], "cuisine_preferences": ["italian"]}`}
	env := newTestEnv(t, llm)
	u := env.registerUser(t)

	conn := dialWS(t, env)
	require.NoError(t, conn.WriteJSON(clientFrame{Type: "hello", Token: u.UserID}))

	greet := readFrame(t, conn)
	assert.Equal(t, "greeting", greet.Type)
	assert.Contains(t, greet.Text, "Maria")
	require.NotEmpty(t, greet.SessionID)

	progress := readFrame(t, conn)
	assert.Equal(t, "onboarding_progress", progress.Type)
	// preferred_languages was seeded at registration.
	assert.True(t, progress.FieldsCollected["preferred_languages"])
	assert.False(t, progress.FieldsCollected["age"])

	require.NoError(t, conn.WriteJSON(clientFrame{Type: "user_text", Text: "I'm 25, vegetarian, and I love Italian food"}))

	msg := readFrame(t, conn)
	assert.Equal(t, "agent_message", msg.Type)
	assert.Equal(t, model.StatusPendingInfo, msg.Status)
	assert.False(t, msg.Done)
	assert.Equal(t, 44, msg.CompletionPercent)
	assert.NotEmpty(t, msg.Text)
	// The WebSocket transport always attempts synthesis.
	assert.NotEmpty(t, msg.Audio)

	progress = readFrame(t, conn)
	assert.Equal(t, "onboarding_progress", progress.Type)
	assert.True(t, progress.FieldsCollected["age"])
	assert.True(t, progress.FieldsCollected["dietary_restrictions"])
	assert.False(t, progress.FieldsCollected["price_range"])
}

func TestWSRejectsMissingHello(t *testing.T) {
	env := newTestEnv(t, &fakeCompleter{})
	conn := dialWS(t, env)

	require.NoError(t, conn.WriteJSON(clientFrame{Type: "user_text", Text: "hi"}))
	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Type)
}

func TestWSRejectsBadToken(t *testing.T) {
	env := newTestEnv(t, &fakeCompleter{})
	conn := dialWS(t, env)

	require.NoError(t, conn.WriteJSON(clientFrame{Type: "hello", Token: "no-such-user"}))
	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Type)
	assert.Contains(t, f.Error, "token")
}

func TestWSUnknownFrameType(t *testing.T) {
	env := newTestEnv(t, &fakeCompleter{})
	u := env.registerUser(t)

	conn := dialWS(t, env)
	require.NoError(t, conn.WriteJSON(clientFrame{Type: "hello", Token: u.UserID}))
	readFrame(t, conn) // greeting
	readFrame(t, conn) // progress

	require.NoError(t, conn.WriteJSON(clientFrame{Type: "mystery"}))
	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Type)
}
