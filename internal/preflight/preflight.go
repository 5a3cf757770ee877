package preflight

import (
	"context"

	"daycounter/internal/config"
	"daycounter/internal/notifications"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if cfg.Notifications.Enabled {
		results = append(results, CheckNotifyCommand(cfg))
		if endpoint := notifications.NtfyEndpoint(cfg); endpoint != "" {
			results = append(results, CheckNtfy(ctx, endpoint))
		}
	}

	return results
}
