// Package monitor drives the milestone poll loop.
//
// The Manager ticks once per configured interval, computes the elapsed whole
// days for every enabled event, and announces any milestone day counts that
// have not been notified yet. Announcements go out through the notifications
// service, land in the history journal, and are then marked on the event so
// they never fire twice. Catch-up is automatic: an event that crossed several
// milestones while the daemon was down gets one notification per missed
// milestone on the next scan.
//
// Scans run on a single goroutine, so a slow tick never overlaps the next
// one. Stop cancels the loop, waits for the in-flight scan, and flushes the
// event store to disk.
package monitor
