// Package voiceservice boots the Aurasense backend: durable graph store,
// Redis session cache, Groq-backed model clients, the onboarding engine, and
// the HTTP/WebSocket transport.
package voiceservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurasense/aurasense-server/internal/api"
	"github.com/aurasense/aurasense-server/internal/auth"
	"github.com/aurasense/aurasense-server/internal/completion"
	"github.com/aurasense/aurasense-server/internal/config"
	"github.com/aurasense/aurasense-server/internal/health"
	"github.com/aurasense/aurasense-server/internal/logger"
	"github.com/aurasense/aurasense-server/internal/onboarding"
	"github.com/aurasense/aurasense-server/internal/session"
	"github.com/aurasense/aurasense-server/internal/store"
	"github.com/aurasense/aurasense-server/internal/store/memory"
	storeneo4j "github.com/aurasense/aurasense-server/internal/store/neo4j"
	"github.com/aurasense/aurasense-server/internal/voice"
)

// Run starts the voice service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("aurasense-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("completion_model", cfg.CompletionModel).
		Str("transcribe_model", cfg.TranscribeModel).
		Msg("Voice service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, sessions, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = sessions.Close() }()

	llm := completion.New(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.CompletionModel)
	voices := voice.New(voice.Config{
		BaseURL:     cfg.GroqBaseURL,
		APIKey:      cfg.GroqAPIKey,
		STTModel:    cfg.TranscribeModel,
		SpeechModel: cfg.SpeechModel,
		SpeechVoice: cfg.SpeechVoice,
	})

	svcHealth := startHealthCheckers(ctx, cfg, log, st, sessions, llm)

	router := buildRouter(cfg, st, sessions, llm, voices, svcHealth, log)

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies opens the durable store and the session cache, failing
// fast when either is unreachable.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, *session.Store, error) {
	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Durable store unavailable")
		return nil, nil, err
	}

	sessions, err := session.Open(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Session cache unavailable")
		return nil, nil, err
	}
	return st, sessions, nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "neo4j":
		driver, err := storeneo4j.Open(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			return nil, err
		}
		return storeneo4j.NewWithDriver(driver), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// buildRouter wires the onboarding engine and transports to handlers.
func buildRouter(cfg *config.Config, st store.Store, sessions *session.Store, llm *completion.Client, voices *voice.Client, svcHealth *health.ServiceHealthChecker, log zerolog.Logger) http.Handler {
	extractor := onboarding.NewExtractor(llm, log)
	questions := onboarding.NewQuestionGenerator(llm, log)
	reconciler := onboarding.NewReconciler(st.Users(), log)
	engine := onboarding.NewEngine(extractor, questions, reconciler, voices, log)

	authz := auth.NewTokenAuthorizer(st.Users())

	var synth api.Synthesizer
	if cfg.SynthesizeReplies {
		synth = voices
	}

	onb := api.NewOnboardingHandler(engine, sessions, authz, synth, log)
	users := api.NewUserHandler(st.Users(), log)
	ws := api.NewWSHandler(onb, log)

	return api.NewRouter(onb, users, ws, api.NewHealthHandler(svcHealth.IsHealthy))
}

// startHealthCheckers starts component checkers and the service aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, sessions *session.Store, llm *completion.Client) *health.ServiceHealthChecker {
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	var checkers []health.HealthChecker
	if p, ok := st.(health.HealthPinger); ok {
		c := health.NewPingChecker("store", p, log)
		go c.Start(ctx, interval)
		checkers = append(checkers, c)
	}
	sessChecker := health.NewPingChecker("sessions", sessions, log)
	go sessChecker.Start(ctx, interval)
	checkers = append(checkers, sessChecker)

	llmChecker := health.NewPingChecker("completion", llm, log)
	go llmChecker.Start(ctx, interval)
	checkers = append(checkers, llmChecker)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Synthesis of a long reply can take a while; keep writes generous.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := cfg.HealthIntervalSeconds * 2
	if timeoutSeconds < 60 {
		timeoutSeconds = 60
	}
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context bound to SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
