package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"daycounter/internal/config"
	"daycounter/internal/deps"
	"daycounter/internal/notifications"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckNotifyCommand verifies the configured desktop notification binary is
// on PATH.
func CheckNotifyCommand(cfg *config.Config) Result {
	const name = "Notify command"
	binary := cfg.NotifyBinary()
	if binary == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	statuses := deps.Check([]deps.Requirement{{Name: name, Command: binary}})
	status := statuses[0]
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	return Result{Name: name, Passed: true, Detail: binary}
}

// CheckNtfy verifies the ntfy server behind the publish endpoint is healthy.
func CheckNtfy(ctx context.Context, endpoint string) Result {
	const name = "ntfy"

	healthURL, err := ntfyHealthURL(endpoint)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, healthURL, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (%v)", err)}
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "server reachable"}
}

// ntfyHealthURL derives the server health endpoint from a publish URL.
func ntfyHealthURL(endpoint string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid ntfy endpoint %q", endpoint)
	}
	parsed.Path = "/v1/health"
	parsed.RawQuery = ""
	return parsed.String(), nil
}

// CheckSystemDeps evaluates external binary dependencies for the given
// config. Both the daemon startup log and the CLI status command use this to
// avoid duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil || !cfg.Notifications.Enabled {
		return nil
	}
	requirements := []deps.Requirement{
		{
			Name:        "notify-send",
			Command:     cfg.NotifyBinary(),
			Description: "Delivers desktop notifications",
			// The binary is optional when ntfy mirrors every notification.
			Optional: notifications.NtfyEndpoint(cfg) != "",
		},
	}
	return deps.Check(requirements)
}
