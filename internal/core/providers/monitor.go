package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// HealthMonitor periodically pings providers that implement HealthChecker
// and toggles their active flag in the registry.
type HealthMonitor struct {
	registry *Registry
	cron     *cron.Cron
	schedule string

	mu      sync.Mutex
	entryID cron.EntryID
	started bool
}

// NewHealthMonitor accepts standard cron expressions (with seconds) and
// descriptors such as "@every 1m".
func NewHealthMonitor(registry *Registry, schedule string) *HealthMonitor {
	return &HealthMonitor{
		registry: registry,
		cron:     cron.New(cron.WithSeconds()),
		schedule: schedule,
	}
}

// Start schedules the health check and starts the cron runner.
func (m *HealthMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return nil
	}

	id, err := m.cron.AddFunc(m.schedule, func() {
		m.CheckAll(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule provider health check: %w", err)
	}
	m.entryID = id
	m.cron.Start()
	m.started = true

	log.Info().Str("schedule", m.schedule).Msg("⏰ Provider health monitor started")
	return nil
}

// Stop halts the scheduler and waits for a running check to finish.
func (m *HealthMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return
	}
	m.cron.Remove(m.entryID)
	<-m.cron.Stop().Done()
	m.started = false
	log.Info().Msg("⏰ Provider health monitor stopped")
}

// CheckAll pings every checkable provider once.
func (m *HealthMonitor) CheckAll(ctx context.Context) {
	for _, p := range m.registry.snapshot() {
		checker, ok := p.(HealthChecker)
		if !ok {
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, m.registry.Timeout())
		err := checker.Ping(pingCtx)
		cancel()

		healthy := err == nil
		if setErr := m.registry.SetActive(p.Name(), healthy); setErr != nil {
			continue
		}
		if !healthy {
			log.Warn().Err(err).Str("provider", p.Name()).Msg("provider failed health check, marked inactive")
		}
	}
}
