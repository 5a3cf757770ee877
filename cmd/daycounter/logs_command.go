package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"daycounter/internal/ipc"
	"daycounter/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			initialLimit := lines
			if initialLimit < 0 {
				initialLimit = 0
			}
			initialOffset := int64(-1)
			if initialLimit == 0 {
				initialOffset = 0
			}

			fetch, cleanup, err := ctx.logSource(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			offset := initialOffset
			limit := initialLimit
			printed := false
			for {
				batch, next, err := fetch(offset, limit, follow)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return fmt.Errorf("tail logs: %w", err)
				}
				for _, line := range batch {
					fmt.Fprintln(cmd.OutOrStdout(), line)
					printed = true
				}
				offset = next
				limit = 0
				if !follow {
					if !printed {
						fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
					}
					return nil
				}
				select {
				case <-cmd.Context().Done():
					return nil
				default:
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}

type logFetch func(offset int64, limit int, follow bool) ([]string, int64, error)

// logSource prefers the daemon's view of its own log file and falls back to
// tailing the current log on disk when no daemon is running.
func (c *commandContext) logSource(ctx context.Context) (logFetch, func(), error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err == nil {
		fetch := func(offset int64, limit int, follow bool) ([]string, int64, error) {
			resp, err := client.LogTail(ipc.LogTailRequest{
				Offset:     offset,
				Limit:      limit,
				Follow:     follow,
				WaitMillis: 1000,
			})
			if err != nil {
				return nil, offset, err
			}
			return resp.Lines, resp.Offset, nil
		}
		return fetch, func() { client.Close() }, nil
	}
	if !daemonUnreachable(err) {
		return nil, nil, wrapDialError(err, socket)
	}

	cfg, cfgErr := c.ensureConfig()
	if cfgErr != nil {
		return nil, nil, cfgErr
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "daycounter.log")
	fetch := func(offset int64, limit int, follow bool) ([]string, int64, error) {
		var wait time.Duration
		if follow {
			wait = time.Second
		}
		result, err := logs.Tail(ctx, logPath, logs.TailOptions{
			Offset: offset,
			Limit:  limit,
			Follow: follow,
			Wait:   wait,
		})
		if err != nil {
			return nil, offset, err
		}
		return result.Lines, result.Offset, nil
	}
	return fetch, func() {}, nil
}
