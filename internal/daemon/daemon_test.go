package daemon_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"daycounter/internal/config"
	"daycounter/internal/daemon"
	"daycounter/internal/events"
	"daycounter/internal/history"
	"daycounter/internal/logging"
	"daycounter/internal/monitor"
	"daycounter/internal/notifications"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Notifications.Enabled = false
	cfg.History.Enabled = false
	return &cfg
}

func newDaemon(t *testing.T, cfg *config.Config, journal *history.Store) *daemon.Daemon {
	t.Helper()
	logger := logging.NewNop()
	store, err := events.Open(cfg.DataFile(), logger)
	if err != nil {
		t.Fatalf("events.Open: %v", err)
	}
	notifier := notifications.NewService(cfg, logger)
	mgr := monitor.NewManagerWithDependencies(cfg, store, journal, notifier, logger)
	d, err := daemon.New(cfg, store, journal, mgr, notifier, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("PID = %d, want %d", status.PID, os.Getpid())
	}
	if status.Capacity != events.MaxEvents {
		t.Fatalf("Capacity = %d, want %d", status.Capacity, events.MaxEvents)
	}
	if status.Notifier != "disabled" {
		t.Fatalf("Notifier = %q, want disabled", status.Notifier)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
	if _, err := os.Stat(cfg.DataFile()); err != nil {
		t.Fatalf("expected data file after shutdown flush: %v", err)
	}
}

func TestDaemonLockBlocksSecondInstance(t *testing.T) {
	cfg := testConfig(t)
	first := newDaemon(t, cfg, nil)
	second := newDaemon(t, cfg, nil)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}

	err := second.Start(ctx)
	if err == nil {
		t.Fatal("expected second instance to fail acquiring the lock")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected lock error: %v", err)
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start after release failed: %v", err)
	}
	second.Stop()
}

func TestEventOperations(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg, nil)
	ctx := context.Background()

	older := time.Now().Add(-20*24*time.Hour - time.Minute)
	newer := time.Now().Add(-10*24*time.Hour - time.Minute)

	if _, err := d.AddEvent(ctx, "gym", newer); err != nil {
		t.Fatalf("AddEvent gym: %v", err)
	}
	added, err := d.AddEvent(ctx, "  sober  ", older)
	if err != nil {
		t.Fatalf("AddEvent sober: %v", err)
	}
	if added.Name != "sober" {
		t.Fatalf("expected trimmed name, got %q", added.Name)
	}

	views := d.ListEvents()
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].Name != "sober" || views[1].Name != "gym" {
		t.Fatalf("expected oldest start first, got %q then %q", views[0].Name, views[1].Name)
	}
	if views[0].Days != 20 {
		t.Fatalf("sober Days = %d, want 20", views[0].Days)
	}
	if !views[0].HasNext || views[0].NextMilestone != 100 || views[0].NextIn != 80 {
		t.Fatalf("sober next milestone = %d in %d (has %v), want 100 in 80",
			views[0].NextMilestone, views[0].NextIn, views[0].HasNext)
	}

	view, ok := d.GetEvent("gym")
	if !ok {
		t.Fatal("expected gym to be found")
	}
	if view.Days != 10 {
		t.Fatalf("gym Days = %d, want 10", view.Days)
	}
	if _, ok := d.GetEvent("missing"); ok {
		t.Fatal("expected lookup miss for unknown event")
	}

	if err := d.RemoveEvent(ctx, "gym"); err != nil {
		t.Fatalf("RemoveEvent: %v", err)
	}
	if len(d.ListEvents()) != 1 {
		t.Fatal("expected 1 view after removal")
	}
	if err := d.RemoveEvent(ctx, "gym"); err == nil {
		t.Fatal("expected error removing absent event")
	}
}

func TestSetEventEnabled(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg, nil)
	ctx := context.Background()

	start := time.Now().Add(-5 * 24 * time.Hour)
	if _, err := d.AddEvent(ctx, "reading", start); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	updated, err := d.SetEventEnabled(ctx, "reading", false)
	if err != nil {
		t.Fatalf("SetEventEnabled: %v", err)
	}
	if updated.Enabled {
		t.Fatal("expected event to be paused")
	}

	updated, err = d.SetEventEnabled(ctx, "reading", true)
	if err != nil {
		t.Fatalf("SetEventEnabled resume: %v", err)
	}
	if !updated.Enabled {
		t.Fatal("expected event to be resumed")
	}

	if _, err := d.SetEventEnabled(ctx, "missing", false); err == nil {
		t.Fatal("expected error for unknown event")
	}
}

func TestTestNotificationDisabled(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg, nil)

	ok, detail, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if ok {
		t.Fatal("expected test notification to be skipped")
	}
	if detail != "notifications disabled in config" {
		t.Fatalf("unexpected detail: %q", detail)
	}
}

func TestRecentHistoryRequiresJournal(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg, nil)

	if _, err := d.RecentHistory(context.Background(), "", 10); err == nil {
		t.Fatal("expected error when history is disabled")
	}
}

func TestRecentHistoryReadsJournal(t *testing.T) {
	cfg := testConfig(t)
	journal, err := history.OpenPath(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.OpenPath: %v", err)
	}
	d := newDaemon(t, cfg, journal)
	ctx := context.Background()

	if _, err := journal.Record(ctx, "gym", 100, "12OCT", nil); err != nil {
		t.Fatalf("Record gym: %v", err)
	}
	if _, err := journal.Record(ctx, "sober", 111, "01JAN", nil); err != nil {
		t.Fatalf("Record sober: %v", err)
	}

	entries, err := d.RecentHistory(ctx, "", 10)
	if err != nil {
		t.Fatalf("RecentHistory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	entries, err = d.RecentHistory(ctx, "gym", 10)
	if err != nil {
		t.Fatalf("RecentHistory filtered: %v", err)
	}
	if len(entries) != 1 || entries[0].EventName != "gym" {
		t.Fatalf("expected only gym rows, got %+v", entries)
	}
}

func TestStatusConcurrentWithCorruptMarker(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg, nil)
	ctx := context.Background()

	if _, err := d.AddEvent(ctx, "gym", time.Now().Add(-24*time.Hour)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			d.RecordCorruptState(&events.CorruptStateError{Path: cfg.DataFile(), Err: os.ErrInvalid})
			if _, err := d.ResetState(); err != nil {
				t.Errorf("ResetState: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = d.Status(ctx)
			_ = d.CorruptState()
		}
	}()
	wg.Wait()
}

func TestResetStateClearsCorruptMarker(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg, nil)
	ctx := context.Background()

	if _, err := d.AddEvent(ctx, "gym", time.Now().Add(-24*time.Hour)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	d.RecordCorruptState(&events.CorruptStateError{Path: cfg.DataFile(), Err: os.ErrInvalid})
	if d.Status(ctx).CorruptState == "" {
		t.Fatal("expected corrupt state to be reported")
	}

	backup, err := d.ResetState()
	if err != nil {
		t.Fatalf("ResetState: %v", err)
	}
	if !strings.Contains(backup, ".corrupt-") {
		t.Fatalf("unexpected backup path: %q", backup)
	}
	if d.Status(ctx).CorruptState != "" {
		t.Fatal("expected corrupt marker to clear after reset")
	}
	if len(d.ListEvents()) != 0 {
		t.Fatal("expected empty store after reset")
	}
}
