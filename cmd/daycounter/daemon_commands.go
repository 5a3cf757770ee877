package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daycounter/internal/daemonctl"
	"daycounter/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daycounter daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				if result.PID > 0 {
					fmt.Fprintf(stdout, "Daemon started (pid %d)\n", result.PID)
				} else {
					fmt.Fprintln(stdout, "Daemon started")
				}
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the daycounter daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopDaemon(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Daemon did not exit in time; killed pid %d\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the daycounter daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				daemonLaunchOptions(ctx),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Daemon did not exit in time; killed pid %d\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			switch result.Start.State {
			case daemonctl.StartStateStarted, daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon restarted")
			}
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and storage status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			statusResp, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), cfg)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range daemonLines(statusResp, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if len(statusResp.Dependencies) == 0 {
				fmt.Fprintln(stdout, renderStatusLine("Summary", statusOK, "nothing required", colorize))
			} else {
				for _, line := range dependencyLines(statusResp.Dependencies, colorize) {
					fmt.Fprintln(stdout, line)
				}
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Storage", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range storageLines(statusResp, colorize) {
				fmt.Fprintln(stdout, line)
			}
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func daemonLines(status *ipc.StatusResponse, colorize bool) []string {
	lines := make([]string, 0, 6)
	if status.Running {
		detail := fmt.Sprintf("pid %d", status.PID)
		if status.StartedAt != "" {
			detail += ", since " + status.StartedAt
		}
		lines = append(lines, renderStatusLine("Running", statusOK, detail, colorize))
		lines = append(lines, renderStatusLine("Poll interval", statusInfo, fmt.Sprintf("%ds", status.PollSeconds), colorize))
		scanDetail := fmt.Sprintf("%d scans, %d milestones announced", status.Scans, status.Announced)
		if status.LastScan != "" {
			scanDetail = status.LastScan + " (" + scanDetail + ")"
		}
		lines = append(lines, renderStatusLine("Last scan", statusInfo, scanDetail, colorize))
	} else {
		lines = append(lines, renderStatusLine("Running", statusWarn, "no (showing saved state)", colorize))
	}
	lines = append(lines, renderStatusLine("Notifier", statusInfo, status.Notifier, colorize))
	if status.LastError != "" {
		lines = append(lines, renderStatusLine("Last error", statusWarn, status.LastError, colorize))
	}
	return lines
}

func dependencyLines(deps []ipc.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(deps)+2)

	missing := make([]string, 0)
	for _, dep := range deps {
		if !dep.Available && !dep.Optional {
			missing = append(missing, dep.Name)
		}
	}
	summaryKind := statusOK
	summaryDetail := "all dependencies available"
	if len(missing) > 0 {
		summaryKind = statusError
		summaryDetail = fmt.Sprintf("%d required dependencies missing", len(missing))
	}
	lines = append(lines, renderStatusLine("Summary", summaryKind, summaryDetail, colorize))

	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func storageLines(status *ipc.StatusResponse, colorize bool) []string {
	lines := make([]string, 0, 3)
	usage := fmt.Sprintf("%s (%d of %d events)", status.DataFilePath, status.EventCount, status.Capacity)
	lines = append(lines, renderStatusLine("Data file", statusInfo, usage, colorize))

	historyDetail := status.HistoryDBPath
	if historyDetail == "" {
		historyDetail = "disabled"
	}
	lines = append(lines, renderStatusLine("History DB", statusInfo, historyDetail, colorize))

	if status.CorruptState != "" {
		lines = append(lines, renderStatusLine("State", statusError, status.CorruptState+"; run `daycounter reset`", colorize))
	}
	return lines
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.socketFlag != nil {
		if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
			opts.SocketPath = socket
		}
	}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
