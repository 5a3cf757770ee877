// Package history persists delivered milestone notifications in SQLite.
//
// The Store manages database connections, schema initialization, and the
// append-only milestone log the CLI surfaces through the history command.
// Each row records which event hit which day count, when the notification
// fired, and whether delivery succeeded.
//
// The database is an audit trail, not coordination state: the daemon decides
// what to announce from the event store alone, so losing or clearing the
// history never re-sends notifications. Schema changes bump the version in
// schema.go; users clear the database to adopt the new schema.
package history
