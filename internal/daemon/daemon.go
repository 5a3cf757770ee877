package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"daycounter/internal/config"
	"daycounter/internal/deps"
	"daycounter/internal/events"
	"daycounter/internal/history"
	"daycounter/internal/logging"
	"daycounter/internal/milestone"
	"daycounter/internal/monitor"
	"daycounter/internal/notifications"
	"daycounter/internal/preflight"
)

// Daemon ties the event store, monitor, notifier, and journal together.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *events.Store
	journal  *history.Store
	monitor  *monitor.Manager
	notifier notifications.Service
	rules    milestone.Rules
	logPath  string

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex // guards corrupt and startedAt
	corrupt   *events.CorruptStateError
	startedAt time.Time

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	StartedAt     time.Time
	Monitor       monitor.StatusSummary
	EventCount    int
	Capacity      int
	DataFilePath  string
	LockFilePath  string
	HistoryDBPath string
	Notifier      string
	CorruptState  string
	Dependencies  []deps.Status
}

// EventView pairs an event with the day counts derived for display.
type EventView struct {
	events.Event
	Days          int
	NextMilestone int
	NextIn        int
	HasNext       bool
}

// New constructs a daemon with initialized dependencies. The journal may be
// nil when history is disabled.
func New(cfg *config.Config, store *events.Store, journal *history.Store, mon *monitor.Manager, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || mon == nil || notifier == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, monitor, notifier, and logger")
	}

	lockPath := cfg.LockFile()
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		journal:  journal,
		monitor:  mon,
		notifier: notifier,
		rules:    cfg.MilestoneRules(),
		logPath:  filepath.Join(cfg.Paths.LogDir, "daycounter.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the milestone monitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another daycounter daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.monitor.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start monitor: %w", err)
	}

	d.running.Store(true)
	d.mu.Lock()
	d.startedAt = time.Now()
	d.mu.Unlock()
	d.logger.Info("daycounter daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

// Stop halts the monitor (flushing the event store) and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.monitor.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("daycounter daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// RecordCorruptState remembers a load failure so status surfaces can report
// it until the user resets.
func (d *Daemon) RecordCorruptState(err *events.CorruptStateError) {
	d.mu.Lock()
	d.corrupt = err
	d.mu.Unlock()
}

// CorruptState returns the load failure recorded at startup, if any.
func (d *Daemon) CorruptState() *events.CorruptStateError {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.corrupt
}

// AddEvent stores a new event and nudges the monitor so milestones for an
// old start date are announced right away.
func (d *Daemon) AddEvent(ctx context.Context, name string, start time.Time) (events.Event, error) {
	event, err := d.store.Add(name, start)
	if err != nil {
		return events.Event{}, err
	}
	d.logger.Info("event added",
		logging.String(logging.FieldEventName, event.Name),
		logging.Time("start", event.Start),
		logging.String(logging.FieldEventType, "event_added"))
	d.monitor.Kick()
	return event, nil
}

// RemoveEvent deletes an event by name.
func (d *Daemon) RemoveEvent(ctx context.Context, name string) error {
	if err := d.store.Remove(name); err != nil {
		return err
	}
	d.logger.Info("event removed",
		logging.String(logging.FieldEventName, name),
		logging.String(logging.FieldEventType, "event_removed"))
	return nil
}

// SetEventEnabled pauses or resumes milestone notifications for an event.
func (d *Daemon) SetEventEnabled(ctx context.Context, name string, enabled bool) (events.Event, error) {
	event, err := d.store.SetEnabled(name, enabled)
	if err != nil {
		return events.Event{}, err
	}
	d.logger.Info("event toggled",
		logging.String(logging.FieldEventName, event.Name),
		logging.Bool("enabled", enabled),
		logging.String(logging.FieldEventType, "event_toggled"))
	if enabled {
		d.monitor.Kick()
	}
	return event, nil
}

// ListEvents returns display views for every event, ordered by start time.
func (d *Daemon) ListEvents() []EventView {
	return BuildEventViews(d.store.List(), d.rules, time.Now())
}

// GetEvent returns the display view for one event.
func (d *Daemon) GetEvent(name string) (EventView, bool) {
	event, ok := d.store.Get(name)
	if !ok {
		return EventView{}, false
	}
	views := BuildEventViews([]events.Event{event}, d.rules, time.Now())
	return views[0], true
}

// BuildEventViews derives day counts and next milestones for display,
// ordered by start time ascending.
func BuildEventViews(list []events.Event, rules milestone.Rules, now time.Time) []EventView {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Start.Before(list[j].Start)
	})

	views := make([]EventView, 0, len(list))
	for _, event := range list {
		view := EventView{Event: event, Days: event.Days(now)}
		if next, ok := rules.Next(view.Days); ok {
			view.NextMilestone = next
			view.HasNext = true
			view.NextIn = next - view.Days
		}
		views = append(views, view)
	}
	return views
}

// TestNotification triggers a test notification using the current
// configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil || !d.cfg.Notifications.Enabled {
		return false, "notifications disabled in config", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "Test notification sent via " + d.notifier.Describe(), nil
}

// RecentHistory returns journal rows, optionally filtered to one event.
func (d *Daemon) RecentHistory(ctx context.Context, eventName string, limit int) ([]*history.Entry, error) {
	if d.journal == nil {
		return nil, errors.New("history is disabled in config")
	}
	if eventName != "" {
		return d.journal.ForEvent(ctx, eventName, limit)
	}
	return d.journal.Recent(ctx, limit)
}

// ClearHistory removes every journal row and reports how many were removed.
func (d *Daemon) ClearHistory(ctx context.Context) (int64, error) {
	if d.journal == nil {
		return 0, errors.New("history is disabled in config")
	}
	removed, err := d.journal.Clear(ctx)
	if err != nil {
		return 0, err
	}
	d.logger.Info("milestone history cleared",
		logging.Int64("removed", removed),
		logging.String(logging.FieldEventType, "history_cleared"))
	return removed, nil
}

// ResetState backs up the data file and starts with an empty store.
func (d *Daemon) ResetState() (string, error) {
	backup, err := d.store.Reset()
	if err != nil {
		return backup, err
	}
	d.mu.Lock()
	d.corrupt = nil
	d.mu.Unlock()
	d.logger.Info("event state reset",
		logging.String("backup", backup),
		logging.String(logging.FieldEventType, "state_reset"))
	return backup, nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	d.mu.Lock()
	startedAt := d.startedAt
	corrupt := d.corrupt
	d.mu.Unlock()

	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StartedAt:    startedAt,
		Monitor:      d.monitor.Status(),
		EventCount:   d.store.Count(),
		Capacity:     events.MaxEvents,
		DataFilePath: d.store.Path(),
		LockFilePath: d.lockPath,
		Notifier:     d.notifier.Describe(),
	}
	if d.journal != nil {
		status.HistoryDBPath = d.journal.Path()
	}
	if corrupt != nil {
		status.CorruptState = corrupt.Error()
	}
	status.Dependencies = preflight.CheckSystemDeps(d.cfg)
	return status
}
