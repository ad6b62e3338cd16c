package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, "neo4j", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.SynthesizeReplies)
	assert.Equal(t, ":8000", cfg.GetHTTPAddr())
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("AURASENSE_HTTP_PORT", "9001")
	t.Setenv("AURASENSE_DB_DRIVER", "memory")
	t.Setenv("AURASENSE_SESSION_TTL", "10m")
	t.Setenv("AURASENSE_SYNTHESIZE_REPLIES", "false")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.SynthesizeReplies)
}

func TestResolveDefaultsRejectsBadDriver(t *testing.T) {
	t.Setenv("AURASENSE_DB_DRIVER", "postgres")
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestResolveDefaultsRejectsNonPositiveTTL(t *testing.T) {
	cfg := NewForTesting()
	cfg.SessionTTL = 0
	assert.Error(t, cfg.ResolveDefaults())
}

func TestEnvironmentPredicates(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())

	cfg.Environment = EnvProduction
	assert.True(t, cfg.IsProduction())
}
