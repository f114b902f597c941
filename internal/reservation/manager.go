package reservation

import (
	"context"
	"sync"
	"time"

	"movitex/internal/booking"
	"movitex/internal/doclookup"
	"movitex/internal/profile"
	"movitex/internal/session"
	"movitex/internal/shared/config"
	"movitex/pkg/cache"
	"movitex/pkg/logger"
)

// ManagerDeps are shared by every engine the manager creates.
type ManagerDeps struct {
	Cache    cache.Service
	Profiles profile.Source
	Lookup   doclookup.Client
	Backend  booking.Backend
	Events   EventPublisher
}

// Manager maps browser tabs to their engines and evicts idle ones.
type Manager struct {
	mu      sync.Mutex
	engines map[string]*Engine
	expired map[string]bool

	deps       ManagerDeps
	cfg        config.ReservationConfig
	sessionTTL time.Duration
	clock      Clock
	done       chan struct{}
	stopOnce   sync.Once
}

func NewManager(deps ManagerDeps, cfg config.ReservationConfig, sessionTTL time.Duration) *Manager {
	return &Manager{
		engines:    make(map[string]*Engine),
		expired:    make(map[string]bool),
		deps:       deps,
		cfg:        cfg,
		sessionTTL: sessionTTL,
		clock:      systemClock{},
		done:       make(chan struct{}),
	}
}

// Engine returns the engine of a tab, creating it on first use.
func (m *Manager) Engine(tabID string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.engines[tabID]; ok {
		return e
	}

	cfg := DefaultEngineConfig()
	if m.cfg.LookupDebounce > 0 {
		cfg.LookupDelay = m.cfg.LookupDebounce
	}
	if m.cfg.TickInterval > 0 {
		cfg.TickInterval = m.cfg.TickInterval
	}
	if m.cfg.SubmitTimeout > 0 {
		cfg.SubmitTimeout = m.cfg.SubmitTimeout
	}
	if len(m.cfg.PaymentMethods) > 0 {
		cfg.PaymentMethods = m.cfg.PaymentMethods
	}
	cfg.Clock = m.clock
	cfg.OnExpired = m.handleExpired

	e := NewEngine(tabID, Deps{
		Store:    session.NewRedisStore(m.deps.Cache, tabID, m.sessionTTL),
		Profiles: m.deps.Profiles,
		Lookup:   m.deps.Lookup,
		Backend:  m.deps.Backend,
		Events:   m.deps.Events,
	}, cfg)
	m.engines[tabID] = e
	return e
}

// Begin starts a new hold for the tab, replacing any existing session.
func (m *Manager) Begin(ctx context.Context, tabID string, opts InitOptions) (*Engine, error) {
	opts.ForceReset = true
	return m.initialize(ctx, tabID, opts)
}

// Resume restores the tab's session. With allowEmpty a missing session
// yields an empty engine instead of ErrRedirectHome.
func (m *Manager) Resume(ctx context.Context, tabID string, allowEmpty bool) (*Engine, error) {
	return m.initialize(ctx, tabID, InitOptions{AllowEmpty: allowEmpty})
}

func (m *Manager) initialize(ctx context.Context, tabID string, opts InitOptions) (*Engine, error) {
	e := m.Engine(tabID)
	if err := e.Initialize(ctx, opts); err != nil {
		return nil, err
	}
	if e.Expired() {
		if err := e.Clear(ctx); err != nil {
			return nil, err
		}
		m.markExpired(tabID)
		return nil, ErrSessionExpired
	}
	return e, nil
}

// Discard tears the tab's session down and forgets the engine.
func (m *Manager) Discard(ctx context.Context, tabID string) error {
	m.mu.Lock()
	e, ok := m.engines[tabID]
	delete(m.engines, tabID)
	delete(m.expired, tabID)
	m.mu.Unlock()

	if ok {
		return e.Clear(ctx)
	}
	return session.NewRedisStore(m.deps.Cache, tabID, m.sessionTTL).Clear(ctx)
}

// TakeExpired reports, once, that the tab's hold ran out.
func (m *Manager) TakeExpired(tabID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.expired[tabID] {
		delete(m.expired, tabID)
		return true
	}
	return false
}

func (m *Manager) markExpired(tabID string) {
	m.mu.Lock()
	m.expired[tabID] = true
	m.mu.Unlock()
}

// handleExpired tears down the expired session unless a reset already
// replaced it, in which case the newer session wins.
func (m *Manager) handleExpired(e *Engine, epoch uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cleared, err := e.ClearIfCurrent(ctx, epoch)
	if err != nil {
		logger.GetDefault().WithTabID(e.TabID()).WithError(err).Error("failed to clear expired session")
	}
	if !cleared {
		return
	}
	m.markExpired(e.TabID())
}

// Start runs the idle-engine janitor
func (m *Manager) Start(ctx context.Context) {
	interval := m.cfg.JanitorInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go m.runJanitor(ctx, interval)
	logger.GetDefault().WithFields(map[string]interface{}{
		"interval": interval.String(),
		"idle_ttl": m.cfg.IdleTTL.String(),
	}).Info("Reservation janitor started")
}

// Stop stops the janitor and every engine's background work
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)

		m.mu.Lock()
		engines := make([]*Engine, 0, len(m.engines))
		for _, e := range m.engines {
			engines = append(engines, e)
		}
		m.mu.Unlock()

		for _, e := range engines {
			e.Close()
		}
		logger.GetDefault().Info("Reservation janitor stopped")
	})
}

func (m *Manager) runJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// evictIdle drops engines nobody touched within IdleTTL. Their persisted
// state stays, so the tab can still resume later.
func (m *Manager) evictIdle() int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.clock.Now().Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var evicted []*Engine
	for tabID, e := range m.engines {
		if e.Busy() || e.IdleSince().After(cutoff) {
			continue
		}
		delete(m.engines, tabID)
		evicted = append(evicted, e)
	}
	m.mu.Unlock()

	for _, e := range evicted {
		e.Close()
	}
	if len(evicted) > 0 {
		logger.GetDefault().Debug("Evicted idle reservation engines", "count", len(evicted))
	}
	return len(evicted)
}

// Active returns the number of live engines.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.engines)
}
