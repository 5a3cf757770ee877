package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"daycounter/internal/logging"
)

// Executor abstracts command execution for the desktop notifier.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// commandExecutor executes commands using os/exec.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// desktopService shells out to a notify-send compatible binary.
type desktopService struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

func newDesktopService(binary string, logger *slog.Logger) *desktopService {
	return &desktopService{
		binary: strings.TrimSpace(binary),
		exec:   commandExecutor{},
		logger: logging.NewComponentLogger(logger, "notifications"),
	}
}

// NewDesktopServiceWithExecutor allows injecting a custom executor for testing.
func NewDesktopServiceWithExecutor(binary string, exec Executor, logger *slog.Logger) Service {
	svc := newDesktopService(binary, logger)
	if exec != nil {
		svc.exec = exec
	}
	return svc
}

func (d *desktopService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return d.send(ctx, msg)
}

func (d *desktopService) TestNotification(ctx context.Context) error {
	return d.Publish(ctx, EventTest, nil)
}

func (d *desktopService) Describe() string {
	return fmt.Sprintf("desktop (%s)", d.binary)
}

func (d *desktopService) send(ctx context.Context, msg message) error {
	if d == nil || d.binary == "" {
		return nil
	}

	args := make([]string, 0, 4)
	if urgency := urgencyFor(msg.priority); urgency != "" {
		args = append(args, "--urgency", urgency)
	}
	args = append(args, msg.title, msg.body)

	output, err := d.exec.Run(ctx, d.binary, args)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", d.binary, err, detail)
		}
		return fmt.Errorf("%s: %w", d.binary, err)
	}

	d.logger.Debug("desktop notification sent", logging.String("title", msg.title))
	return nil
}

// urgencyFor maps message priority onto notify-send urgency levels.
func urgencyFor(priority string) string {
	switch priority {
	case "high":
		return "critical"
	case "low":
		return "low"
	default:
		return ""
	}
}
