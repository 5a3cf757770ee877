package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"daycounter/internal/config"
	"daycounter/internal/events"
	"daycounter/internal/history"
	"daycounter/internal/logging"
	"daycounter/internal/milestone"
	"daycounter/internal/notifications"
)

// Manager owns the milestone scan loop.
type Manager struct {
	cfg          *config.Config
	store        *events.Store
	journal      *history.Store
	notifier     notifications.Service
	logger       *slog.Logger
	rules        milestone.Rules
	pollInterval time.Duration
	now          func() time.Time
	kick         chan struct{}

	mu        sync.RWMutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	lastErr   error
	lastScan  time.Time
	scans     uint64
	announced uint64
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	clock func() time.Time
}

// WithClock overrides the wall clock (used in tests).
func WithClock(clock func() time.Time) ManagerOption {
	return func(o *managerOptions) {
		o.clock = clock
	}
}

// NewManager constructs a monitor manager with the default notifier stack
// and no history journal.
func NewManager(cfg *config.Config, store *events.Store, logger *slog.Logger) *Manager {
	return NewManagerWithDependencies(cfg, store, nil, notifications.NewService(cfg, logger), logger)
}

// NewManagerWithDependencies constructs a monitor manager with explicit
// collaborators. The journal may be nil to skip history recording.
func NewManagerWithDependencies(cfg *config.Config, store *events.Store, journal *history.Store, notifier notifications.Service, logger *slog.Logger, opts ...ManagerOption) *Manager {
	options := &managerOptions{clock: time.Now}
	for _, opt := range opts {
		opt(options)
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		journal:      journal,
		notifier:     notifier,
		logger:       logging.NewComponentLogger(logger, "monitor"),
		rules:        cfg.MilestoneRules(),
		pollInterval: time.Duration(cfg.Daemon.PollInterval) * time.Second,
		now:          options.clock,
		kick:         make(chan struct{}, 1),
	}
}

// Kick requests an immediate scan without waiting for the next tick. Scans
// stay serialized on the loop goroutine, so a kick never overlaps a tick.
func (m *Manager) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// Start begins background scanning. The first scan runs immediately so
// missed milestones are announced without waiting for a tick.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("monitor already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background scanning, waits for the in-flight scan, and
// flushes the event store.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	if err := m.store.Save(); err != nil {
		logging.WarnWithContext(m.logger, "final state flush failed", "state_flush_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check data directory permissions"),
			logging.String(logging.FieldImpact, "latest notified milestones may be lost"),
		)
		return
	}
	m.logger.Debug("event store flushed on shutdown")
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	if err := m.Scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
		m.setLastError(err)
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-m.kick:
		}
		if err := m.Scan(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
		}
	}
}

// StatusSummary represents lightweight monitor diagnostics.
type StatusSummary struct {
	Running      bool
	LastError    string
	LastScan     time.Time
	Scans        uint64
	Announced    uint64
	EventCount   int
	PollInterval time.Duration
}

// Status returns the latest monitor information.
func (m *Manager) Status() StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:      m.running,
		LastScan:     m.lastScan,
		Scans:        m.scans,
		Announced:    m.announced,
		PollInterval: m.pollInterval,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	m.mu.RUnlock()

	summary.EventCount = m.store.Count()
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
