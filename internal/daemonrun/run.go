package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"daycounter/internal/config"
	"daycounter/internal/daemon"
	"daycounter/internal/events"
	"daycounter/internal/history"
	"daycounter/internal/ipc"
	"daycounter/internal/logging"
	"daycounter/internal/monitor"
	"daycounter/internal/notifications"
	"daycounter/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel   string
	SocketPath string
}

// Run starts the daycounter daemon runtime loop and blocks until a signal or
// an IPC stop request arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runStamp := time.Now().UTC().Format("20060102T150405")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("daycounter-%s.log", runStamp))

	logger, err := logging.New(logging.Options{
		Level:            firstNonEmpty(opts.LogLevel, cfg.Logging.Level),
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldRunID, uuid.NewString()))

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update daycounter.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "daycounter-*.log", Exclude: []string{logPath}},
	)
	logPreflight(signalCtx, logger, cfg)

	pidPath := cfg.PIDFile()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	// A corrupt state file must not stop the daemon: it runs with an empty
	// store and reports the problem until the user resets.
	store, openErr := events.Open(cfg.DataFile(), logger)
	var corrupt *events.CorruptStateError
	if openErr != nil && !errors.As(openErr, &corrupt) {
		logger.Error("open event store", logging.Error(openErr))
		return openErr
	}

	notifier := notifications.NewService(cfg, logger)

	var journal *history.Store
	if cfg.History.Enabled {
		journal, err = history.Open(cfg)
		if err != nil {
			logger.Error("open history store", logging.Error(err))
			return err
		}
		defer journal.Close()
		pruneHistory(signalCtx, logger, journal, cfg.Logging.RetentionDays)
	}

	mgr := monitor.NewManagerWithDependencies(cfg, store, journal, notifier, logger)
	d, err := daemon.New(cfg, store, journal, mgr, notifier, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	// Lock before the socket: a second daemon must fail here instead of
	// stealing the running instance's socket file.
	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "is another daycounter daemon running?"))
		return err
	}

	if corrupt != nil {
		d.RecordCorruptState(corrupt)
		logging.WarnWithContext(logger, "event state could not be read; starting empty",
			"state_corrupt",
			logging.Error(corrupt),
			logging.String("path", corrupt.Path),
			logging.String(logging.FieldErrorHint, "run daycounter reset to back up the file and start fresh"),
			logging.String(logging.FieldImpact, "tracked events are unavailable until the state file is fixed or reset"))
		if err := notifier.Publish(signalCtx, notifications.EventStateCorrupt, notifications.Payload{
			"path": corrupt.Path,
		}); err != nil {
			logger.Debug("corrupt state notification failed", logging.Error(err))
		}
	}

	socketPath := strings.TrimSpace(opts.SocketPath)
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, cancel, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-signalCtx.Done()
	logger.Info("daycounter daemon shutting down")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// ensureCurrentLogPointer keeps <logdir>/daycounter.log pointing at the
// current run's file so tailing does not need to know the run stamp.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "daycounter.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldImpact, "some daemon features may not work"))
	}
}

// pruneHistory applies the log retention window to the milestone journal.
// The journal is an audit trail, so dropping old rows never re-triggers
// notifications.
func pruneHistory(ctx context.Context, logger *slog.Logger, journal *history.Store, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed, err := journal.Prune(ctx, cutoff)
	if err != nil {
		logger.Warn("prune milestone history", logging.Error(err))
		return
	}
	if removed > 0 {
		logger.Debug("pruned milestone history",
			logging.Int64("removed", removed),
			logging.Int("retention_days", retentionDays))
	}
}
