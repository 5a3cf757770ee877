package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"log/slog"

	"daycounter/internal/daemon"
	"daycounter/internal/logging"
	"daycounter/internal/logs"
	"daycounter/internal/timefmt"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. The shutdown
// callback, when non-nil, is invoked after a Stop request so the daemon
// process can exit; tests may pass nil.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, shutdown func(), logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, shutdown: shutdown, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("DayCounter", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun daycounter stop"))
	}
}

type service struct {
	daemon   *daemon.Daemon
	shutdown func()
	logger   *slog.Logger
	ctx      context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

// summarizeEvent renders an event view into its wire form. Date labels and
// elapsed strings are computed server-side so every front end shows the same
// text.
func summarizeEvent(view daemon.EventView, now time.Time) EventSummary {
	summary := EventSummary{
		Name:          view.Name,
		Start:         view.Start.Format(time.RFC3339),
		StartDisplay:  timefmt.FormatStartDate(view.Start, now),
		Enabled:       view.Enabled,
		Days:          view.Days,
		Elapsed:       timefmt.FormatElapsed(now.Sub(view.Start)),
		NextMilestone: view.NextMilestone,
		NextIn:        view.NextIn,
		HasNext:       view.HasNext,
		NotifiedCount: len(view.Notified),
	}
	if n := len(view.Notified); n > 0 {
		summary.LastMilestone = view.Notified[n-1]
	}
	return summary
}

func (s *service) eventSummary(name string) (EventSummary, error) {
	view, ok := s.daemon.GetEvent(name)
	if !ok {
		return EventSummary{}, fmt.Errorf("event %q not found", name)
	}
	return summarizeEvent(view, time.Now()), nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	if !status.StartedAt.IsZero() {
		resp.StartedAt = status.StartedAt.Format(time.RFC3339)
	}
	resp.EventCount = status.EventCount
	resp.Capacity = status.Capacity
	resp.DataFilePath = status.DataFilePath
	resp.LockPath = status.LockFilePath
	resp.HistoryDBPath = status.HistoryDBPath
	resp.Notifier = status.Notifier
	resp.CorruptState = status.CorruptState
	resp.LastError = status.Monitor.LastError
	if !status.Monitor.LastScan.IsZero() {
		resp.LastScan = status.Monitor.LastScan.Format(time.RFC3339)
	}
	resp.Scans = status.Monitor.Scans
	resp.Announced = status.Monitor.Announced
	resp.PollSeconds = int(status.Monitor.PollInterval / time.Second)
	if len(status.Dependencies) > 0 {
		resp.Dependencies = make([]DependencyStatus, 0, len(status.Dependencies))
		for _, dep := range status.Dependencies {
			resp.Dependencies = append(resp.Dependencies, DependencyStatus{
				Name:        dep.Name,
				Command:     dep.Command,
				Description: dep.Description,
				Optional:    dep.Optional,
				Available:   dep.Available,
				Detail:      dep.Detail,
			})
		}
	}
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	if s.shutdown != nil {
		s.shutdown()
	}
	return nil
}

func (s *service) EventList(_ EventListRequest, resp *EventListResponse) error {
	views := s.daemon.ListEvents()
	now := time.Now()
	resp.Events = make([]EventSummary, 0, len(views))
	for _, view := range views {
		resp.Events = append(resp.Events, summarizeEvent(view, now))
	}
	return nil
}

func (s *service) EventAdd(req EventAddRequest, resp *EventAddResponse) error {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Start))
	if err != nil {
		return fmt.Errorf("invalid start timestamp %q", req.Start)
	}
	event, err := s.daemon.AddEvent(s.ctx, req.Name, start)
	if err != nil {
		return err
	}
	summary, err := s.eventSummary(event.Name)
	if err != nil {
		return err
	}
	resp.Event = summary
	return nil
}

func (s *service) EventRemove(req EventRemoveRequest, resp *EventRemoveResponse) error {
	if err := s.daemon.RemoveEvent(s.ctx, req.Name); err != nil {
		return err
	}
	resp.Removed = true
	return nil
}

func (s *service) EventEnable(req EventEnableRequest, resp *EventEnableResponse) error {
	event, err := s.daemon.SetEventEnabled(s.ctx, req.Name, req.Enabled)
	if err != nil {
		return err
	}
	summary, err := s.eventSummary(event.Name)
	if err != nil {
		return err
	}
	resp.Event = summary
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	entries, err := s.daemon.RecentHistory(s.ctx, strings.TrimSpace(req.EventName), req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = make([]MilestoneRecord, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		resp.Entries = append(resp.Entries, MilestoneRecord{
			ID:            entry.ID,
			EventName:     entry.EventName,
			Days:          entry.Days,
			StartLabel:    entry.StartLabel,
			Delivered:     entry.Delivered,
			DeliveryError: entry.DeliveryError,
			CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return nil
}

func (s *service) HistoryClear(_ HistoryClearRequest, resp *HistoryClearResponse) error {
	removed, err := s.daemon.ClearHistory(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) StateReset(_ StateResetRequest, resp *StateResetResponse) error {
	s.log().Debug("state reset requested")
	backup, err := s.daemon.ResetState()
	if err != nil {
		return err
	}
	resp.BackupPath = backup
	s.log().Info("event state reset via IPC",
		logging.String(logging.FieldEventType, "state_reset"),
		logging.String("backup", backup))
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}
