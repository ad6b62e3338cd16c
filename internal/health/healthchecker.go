package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by component-level checkers (store, cache,
// completion service).
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker aggregates component checkers into a single service health flag.
type ServiceHealthChecker struct {
	healthy atomic.Int32
	deps    []HealthChecker
	log     zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	h := &ServiceHealthChecker{deps: deps, log: log}
	h.healthy.Store(0)
	return h
}

// IsHealthy returns cached service health.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() == 1 }

// Start periodically evaluates dependency health and updates the service flag.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := int32(0)
	eval := func() {
		all := true
		for _, c := range h.deps {
			if !c.IsHealthy() {
				all = false
			}
		}
		if all {
			h.healthy.Store(1)
		} else {
			h.healthy.Store(0)
		}
		cur := h.healthy.Load()
		if cur != prev {
			if cur == 1 {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Stack().Msg("service health: DOWN")
			}
			prev = cur
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}

// PingChecker adapts a HealthPinger into a polling HealthChecker.
type PingChecker struct {
	name    string
	pinger  HealthPinger
	healthy atomic.Int32
	log     zerolog.Logger
}

func NewPingChecker(name string, p HealthPinger, log zerolog.Logger) *PingChecker {
	return &PingChecker{name: name, pinger: p, log: log}
}

func (c *PingChecker) Name() string    { return c.name }
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	eval := func() {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.pinger.HealthPing(pctx); err != nil {
			if c.healthy.Swap(0) == 1 {
				c.log.Warn().Err(err).Str("dependency", c.name).Msg("dependency health: DOWN")
			}
			return
		}
		if c.healthy.Swap(1) == 0 {
			c.log.Info().Str("dependency", c.name).Msg("dependency health: UP")
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}
