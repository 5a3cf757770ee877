// Package notifications delivers milestone events via pluggable notifiers.
//
// The default implementation shells out to notify-send for desktop alerts and
// can mirror every message to an ntfy topic configured in config.toml. Both
// sinks degrade to a no-op when notifications are disabled. Enumerated event
// types cover the messages the daemon emits so callers produce consistent,
// user-friendly text without duplicating formatting or HTTP glue.
//
// Extend this package if you need alternative transports; the daemon depends
// only on the simple Service interface.
package notifications
