package monitor

import (
	"context"
	"errors"
	"time"

	"daycounter/internal/events"
	"daycounter/internal/logging"
	"daycounter/internal/notifications"
	"daycounter/internal/timefmt"
)

// Scan runs one poll pass: it walks every enabled event and announces each
// milestone day count that has not been notified yet, smallest first.
func (m *Manager) Scan(ctx context.Context) error {
	now := m.now()

	for _, event := range m.store.List() {
		if !event.Enabled {
			continue
		}
		days := event.Days(now)
		if days < 0 {
			continue
		}

		for _, day := range m.rules.Pending(days, event.HasNotified) {
			if err := ctx.Err(); err != nil {
				return err
			}
			m.announce(ctx, event, day, now)
		}
	}

	m.mu.Lock()
	m.lastScan = now
	m.scans++
	m.mu.Unlock()
	return nil
}

// announce delivers one milestone notification, journals it, and marks it on
// the event. Delivery failures are logged and journaled but never block the
// mark: a milestone is announced at most once.
func (m *Manager) announce(ctx context.Context, event events.Event, day int, now time.Time) {
	since := timefmt.FormatStartDate(event.Start, now)

	deliveryErr := m.notifier.Publish(ctx, notifications.EventMilestoneReached, notifications.Payload{
		"name":  event.Name,
		"days":  day,
		"since": since,
	})
	if deliveryErr != nil {
		if errors.Is(deliveryErr, context.Canceled) {
			m.logger.Debug("daemon shutting down, could not send milestone notification")
		} else {
			logging.WarnWithContext(m.logger, "milestone notification failed", "notify_failed",
				logging.Error(deliveryErr),
				logging.String(logging.FieldEventName, event.Name),
				logging.Int(logging.FieldMilestone, day),
				logging.String(logging.FieldErrorHint, "run daycounter test-notify to check delivery"),
				logging.String(logging.FieldImpact, "milestone is recorded but the alert was not shown"),
			)
		}
	}

	if m.journal != nil {
		if _, err := m.journal.Record(ctx, event.Name, day, since, deliveryErr); err != nil {
			m.logger.Warn("milestone history write failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "history_write_failed"),
				logging.String(logging.FieldErrorHint, "check history database access"),
			)
		}
	}

	changed, err := m.store.MarkNotified(event.Name, day)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			// Event can vanish mid-scan when a remove races the tick.
			m.logger.Debug("could not mark milestone",
				logging.Error(err),
				logging.String(logging.FieldEventName, event.Name),
				logging.Int(logging.FieldMilestone, day))
			return
		}
		// The mark survives in memory, so the milestone will not repeat
		// on the next scan even while the disk stays broken.
		logging.WarnWithContext(m.logger, "could not persist milestone mark", "mark_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldEventName, event.Name),
			logging.Int(logging.FieldMilestone, day),
			logging.String(logging.FieldErrorHint, "check that the data directory is writable"),
			logging.String(logging.FieldImpact, "mark is lost if the daemon restarts before the next save"),
		)
	}
	if !changed {
		return
	}

	m.mu.Lock()
	m.announced++
	m.mu.Unlock()

	m.logger.Info("milestone announced",
		logging.String(logging.FieldEventName, event.Name),
		logging.Int(logging.FieldMilestone, day),
		logging.String("since", since),
		logging.Bool("delivered", deliveryErr == nil))
}
