package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("user@example.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email("a@b"))
	assert.Error(t, Email(strings.Repeat("a", 320)+"@example.com"))
}

func TestName(t *testing.T) {
	assert.NoError(t, Name("firstName", "Maria"))
	assert.NoError(t, Name("firstName", "Anne-Marie O'Neil"))
	assert.Error(t, Name("firstName", ""))
	assert.Error(t, Name("firstName", "123"))
	assert.Error(t, Name("firstName", strings.Repeat("a", 81)))
}

func TestSessionID(t *testing.T) {
	assert.NoError(t, SessionID("3f2c9a4e-0b71-4a9d-9f6d-2d9e8b1c0a55"))
	assert.Error(t, SessionID(""))
	assert.Error(t, SessionID("short"))
	assert.Error(t, SessionID("not a session id at all"))
}

func TestNonEmpty(t *testing.T) {
	assert.NoError(t, NonEmpty("text", "hello"))
	assert.Error(t, NonEmpty("text", ""))
}
