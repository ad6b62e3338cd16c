package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the Aurasense backend.
// Environment variables are automatically parsed from the AURASENSE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8000"`

	// Durable store (graph database). "memory" keeps everything in-process
	// for local development and tests.
	DBDriver      string `envconfig:"DB_DRIVER" default:"neo4j"`
	Neo4jURI      string `envconfig:"NEO4J_URI" default:"bolt://localhost:7687"`
	Neo4jUser     string `envconfig:"NEO4J_USER" default:"neo4j"`
	Neo4jPassword string `envconfig:"NEO4J_PASSWORD" default:""`

	// Session cache
	RedisURL   string        `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"30m"`

	// External model services (Groq-compatible API surface)
	GroqAPIKey      string `envconfig:"GROQ_API_KEY" default:""`
	GroqBaseURL     string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com"`
	CompletionModel string `envconfig:"COMPLETION_MODEL" default:"qwen/qwen3-32b"`
	TranscribeModel string `envconfig:"TRANSCRIBE_MODEL" default:"distil-whisper-large-v3-en"`
	SpeechModel     string `envconfig:"SPEECH_MODEL" default:"playai-tts"`
	SpeechVoice     string `envconfig:"SPEECH_VOICE" default:"Fritz-PlayAI"`

	// When false, turn responses are text-only and synthesis is never attempted.
	SynthesizeReplies bool `envconfig:"SYNTHESIZE_REPLIES" default:"true"`

	// Health probing
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates driver selection and derived values.
func (c *Config) ResolveDefaults() error {
	allowedDB := map[string]bool{"neo4j": true, "memory": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "neo4j" && c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required when DB_DRIVER=neo4j")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with AURASENSE_
// Example: AURASENSE_HTTP_PORT, AURASENSE_NEO4J_URI
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("AURASENSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Str("neo4j_uri", cfg.Neo4jURI).
		Str("redis_url", cfg.RedisURL).
		Dur("session_ttl", cfg.SessionTTL).
		Str("completion_model", cfg.CompletionModel).
		Str("transcribe_model", cfg.TranscribeModel).
		Str("speech_model", cfg.SpeechModel).
		Bool("synthesize_replies", cfg.SynthesizeReplies).
		Str("groq_key_present", func() string {
			if cfg.GroqAPIKey != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:       EnvTesting,
		HTTPPort:          8000,
		DBDriver:          "memory",
		Neo4jURI:          "bolt://localhost:7687",
		Neo4jUser:         "neo4j",
		RedisURL:          "redis://localhost:6379",
		SessionTTL:        30 * time.Minute,
		GroqBaseURL:       "http://localhost:9999",
		CompletionModel:   "qwen/qwen3-32b",
		TranscribeModel:   "distil-whisper-large-v3-en",
		SpeechModel:       "playai-tts",
		SpeechVoice:       "Fritz-PlayAI",
		SynthesizeReplies: false,

		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 5,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
