package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"daycounter/internal/config"
)

const appName = "DayCounter"

// Event identifies a notification the daemon can emit.
type Event string

const (
	// EventMilestoneReached announces that a tracked event hit a notable
	// day count. Payload keys: name, days, since.
	EventMilestoneReached Event = "milestone_reached"
	// EventStateCorrupt warns that the persisted store could not be read.
	// Payload keys: path.
	EventStateCorrupt Event = "state_corrupt"
	// EventTest exercises the delivery path end to end.
	EventTest Event = "test"
)

// Payload carries the values a formatter interpolates into the message.
type Payload map[string]any

// Service defines the notification surface exposed to the daemon.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
	TestNotification(ctx context.Context) error
	Describe() string
}

// NewService builds the notifier stack from configuration: a desktop notifier
// always, plus an ntfy mirror when a topic is configured. When notifications
// are disabled a noop implementation is returned.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	if cfg == nil || !cfg.Notifications.Enabled {
		return noopService{}
	}

	var sinks []Service
	if binary := cfg.NotifyBinary(); binary != "" {
		sinks = append(sinks, newDesktopService(binary, logger))
	}
	if endpoint := NtfyEndpoint(cfg); endpoint != "" {
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		sinks = append(sinks, newNtfyService(endpoint, timeout))
	}

	switch len(sinks) {
	case 0:
		return noopService{}
	case 1:
		return sinks[0]
	default:
		return &routerService{sinks: sinks}
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

// render turns an event and its payload into a displayable message. Unknown
// events render nothing and are silently dropped.
func render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventMilestoneReached:
		name := payloadString(payload, "name")
		since := payloadString(payload, "since")
		days := payloadInt(payload, "days")
		return message{
			title: fmt.Sprintf("%s - %s", appName, headline(name)),
			body:  fmt.Sprintf("🎉 Reached %d days since %s.", days, since),
			tags:  []string{"daycounter", "milestone"},
		}, true
	case EventStateCorrupt:
		path := payloadString(payload, "path")
		return message{
			title:    fmt.Sprintf("%s - State Problem", appName),
			body:     fmt.Sprintf("❌ Stored events at %s could not be read. Run \"daycounter reset\" to start fresh.", path),
			tags:     []string{"daycounter", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    fmt.Sprintf("%s - Test", appName),
			body:     "🧪 Notification system test",
			tags:     []string{"daycounter", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

// headline renders an event name for a notification title. Stored names keep
// the user's exact casing; titles get title case for display only.
func headline(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Milestone"
	}
	return cases.Title(language.Und).String(name)
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch v := payload[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

// NtfyEndpoint resolves the full ntfy publish URL from config. The topic may
// be a bare name joined to the base URL or a complete http(s) URL used as-is.
// Empty means ntfy is not configured.
func NtfyEndpoint(cfg *config.Config) string {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return ""
	}
	if strings.HasPrefix(topic, "http://") || strings.HasPrefix(topic, "https://") {
		return topic
	}
	base := strings.TrimRight(cfg.Notifications.NtfyBaseURL, "/")
	if base == "" {
		return ""
	}
	return base + "/" + topic
}

// routerService fans a message out to every configured sink. Each sink gets a
// chance to deliver even when an earlier one fails.
type routerService struct {
	sinks []Service
}

func (r *routerService) Publish(ctx context.Context, event Event, payload Payload) error {
	var errs []error
	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *routerService) TestNotification(ctx context.Context) error {
	return r.Publish(ctx, EventTest, nil)
}

func (r *routerService) Describe() string {
	parts := make([]string, 0, len(r.sinks))
	for _, sink := range r.sinks {
		parts = append(parts, sink.Describe())
	}
	return strings.Join(parts, ", ")
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
func (noopService) TestNotification(context.Context) error        { return nil }
func (noopService) Describe() string                              { return "disabled" }
