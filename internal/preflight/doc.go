// Package preflight provides readiness checks for the directories and
// notification channels the daemon depends on.
//
// These checks run in two contexts:
//   - The daemon logs RunAll results once at startup so a missing notify-send
//     or unreachable ntfy server is visible before the first milestone fires.
//   - The CLI "daycounter status" command shows dependency availability when
//     the daemon is offline.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
