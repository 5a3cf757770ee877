// Package daemonctl orchestrates the daemon process from the CLI: detached
// launch, socket polling, graceful stop with a force-kill fallback, restart,
// and offline status snapshots.
//
// Everything here runs in the CLI process. The daemon side lives in
// daemonrun.
package daemonctl
