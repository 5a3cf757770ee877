package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"daycounter/internal/daemon"
	"daycounter/internal/ipc"
	"daycounter/internal/logging"
	"daycounter/internal/monitor"
	"daycounter/internal/notifications"
	"daycounter/internal/testsupport"
)

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenStore(t, cfg)
	journal := testsupport.MustOpenHistory(t, cfg)
	logger := logging.NewNop()
	notifier := notifications.NewService(cfg, logger)
	mgr := monitor.NewManagerWithDependencies(cfg, store, journal, notifier, logger)
	d, err := daemon.New(cfg, store, journal, mgr, notifier, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	shutdownRequested := make(chan struct{}, 1)
	shutdown := func() {
		select {
		case shutdownRequested <- struct{}{}:
		default:
		}
	}

	socket := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socket, d, shutdown, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("unexpected PID: %d", status.PID)
	}
	if status.HistoryDBPath == "" {
		t.Fatal("expected history db path in status")
	}

	gymStart := time.Now().Add(-5*24*time.Hour - time.Minute)
	sugarStart := time.Now().Add(-20*24*time.Hour - time.Minute)

	addResp, err := client.EventAdd("Gym Streak", gymStart.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("EventAdd failed: %v", err)
	}
	if addResp.Event.Name != "Gym Streak" || addResp.Event.Days != 5 {
		t.Fatalf("unexpected added event: %+v", addResp.Event)
	}
	if !addResp.Event.HasNext || addResp.Event.NextMilestone != 100 || addResp.Event.NextIn != 95 {
		t.Fatalf("unexpected next milestone: %+v", addResp.Event)
	}
	if _, err := client.EventAdd("Quit Sugar", sugarStart.Format(time.RFC3339)); err != nil {
		t.Fatalf("EventAdd second failed: %v", err)
	}

	if _, err := client.EventAdd("Bad Clock", "yesterday-ish"); err == nil {
		t.Fatal("expected invalid start timestamp to be rejected")
	}
	if _, err := client.EventAdd("Gym Streak", gymStart.Format(time.RFC3339)); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}

	listResp, err := client.EventList()
	if err != nil {
		t.Fatalf("EventList failed: %v", err)
	}
	if len(listResp.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(listResp.Events))
	}
	if listResp.Events[0].Name != "Quit Sugar" || listResp.Events[1].Name != "Gym Streak" {
		t.Fatalf("expected oldest start first, got %q then %q",
			listResp.Events[0].Name, listResp.Events[1].Name)
	}
	if listResp.Events[0].StartDisplay == "" || listResp.Events[0].Elapsed == "" {
		t.Fatalf("expected rendered labels, got %+v", listResp.Events[0])
	}

	enableResp, err := client.EventEnable("Gym Streak", false)
	if err != nil {
		t.Fatalf("EventEnable failed: %v", err)
	}
	if enableResp.Event.Enabled {
		t.Fatal("expected event to be paused")
	}
	if _, err := client.EventEnable("Gym Streak", true); err != nil {
		t.Fatalf("EventEnable resume failed: %v", err)
	}

	if _, err := journal.Record(ctx, "Gym Streak", 100, "12OCT", nil); err != nil {
		t.Fatalf("journal.Record: %v", err)
	}
	if _, err := journal.Record(ctx, "Quit Sugar", 111, "01JAN", nil); err != nil {
		t.Fatalf("journal.Record: %v", err)
	}
	historyResp, err := client.History("", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(historyResp.Entries) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(historyResp.Entries))
	}
	if historyResp.Entries[0].EventName != "Quit Sugar" {
		t.Fatalf("expected newest row first, got %+v", historyResp.Entries[0])
	}
	filteredResp, err := client.History("Gym Streak", 10)
	if err != nil {
		t.Fatalf("History filtered failed: %v", err)
	}
	if len(filteredResp.Entries) != 1 || filteredResp.Entries[0].Days != 100 {
		t.Fatalf("unexpected filtered history: %+v", filteredResp.Entries)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp.Sent || notifyResp.Message == "" {
		t.Fatalf("expected disabled notification report, got %+v", notifyResp)
	}

	logPath := d.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	logResp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail initial failed: %v", err)
	}
	if len(logResp.Lines) != 2 || logResp.Lines[0] != "second" || logResp.Lines[1] != "third" {
		t.Fatalf("unexpected log tail response: %#v", logResp.Lines)
	}

	followDone := make(chan struct{})
	go func(offset int64) {
		resp, err := client.LogTail(ipc.LogTailRequest{Offset: offset, Follow: true, WaitMillis: 500})
		if err != nil {
			t.Errorf("LogTail follow error: %v", err)
			return
		}
		if len(resp.Lines) != 1 || resp.Lines[0] != "fourth" {
			t.Errorf("unexpected follow lines: %#v", resp.Lines)
		}
		close(followDone)
	}(logResp.Offset)

	time.Sleep(100 * time.Millisecond)
	if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		_, _ = f.WriteString("fourth\n")
		_ = f.Close()
	} else {
		t.Fatalf("append log: %v", err)
	}

	select {
	case <-followDone:
	case <-time.After(10 * time.Second):
		t.Fatal("log tail follow timed out")
	}

	removeResp, err := client.EventRemove("Quit Sugar")
	if err != nil {
		t.Fatalf("EventRemove failed: %v", err)
	}
	if !removeResp.Removed {
		t.Fatal("expected removal to be reported")
	}
	if _, err := client.EventRemove("Quit Sugar"); err == nil {
		t.Fatal("expected error removing absent event")
	}

	resetResp, err := client.StateReset()
	if err != nil {
		t.Fatalf("StateReset failed: %v", err)
	}
	if !strings.Contains(resetResp.BackupPath, ".corrupt-") {
		t.Fatalf("unexpected backup path: %q", resetResp.BackupPath)
	}
	emptyList, err := client.EventList()
	if err != nil {
		t.Fatalf("EventList after reset failed: %v", err)
	}
	if len(emptyList.Events) != 0 {
		t.Fatalf("expected empty store after reset, got %d events", len(emptyList.Events))
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}
	select {
	case <-shutdownRequested:
	case <-time.After(2 * time.Second):
		t.Fatal("expected shutdown callback to fire")
	}

	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status2.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDialFailsWithoutSocket(t *testing.T) {
	if _, err := ipc.Dial(filepath.Join(t.TempDir(), "missing.sock")); err == nil {
		t.Fatal("expected dial to fail when no daemon is listening")
	}
}
