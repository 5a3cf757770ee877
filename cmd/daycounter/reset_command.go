package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"daycounter/internal/events"
	"daycounter/internal/ipc"
	"daycounter/internal/logging"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Back up the event state file and start fresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			socket := ctx.socketPath()
			client, err := ipc.Dial(socket)
			if err == nil {
				defer client.Close()
				resp, resetErr := client.StateReset()
				if resetErr != nil {
					return resetErr
				}
				printResetOutcome(out, resp.BackupPath)
				return nil
			}
			if !daemonUnreachable(err) {
				return wrapDialError(err, socket)
			}

			cfg, cfgErr := ctx.ensureConfig()
			if cfgErr != nil {
				return cfgErr
			}
			// A corrupt state file still yields a usable store here; resetting
			// is exactly how the corruption gets cleared.
			store, openErr := events.Open(cfg.DataFile(), logging.NewNop())
			if store == nil {
				return openErr
			}
			backup, resetErr := store.Reset()
			if resetErr != nil {
				return resetErr
			}
			printResetOutcome(out, backup)
			return nil
		},
	}
}

func printResetOutcome(out io.Writer, backup string) {
	if backup == "" {
		fmt.Fprintln(out, "No state file to back up; starting fresh")
		return
	}
	fmt.Fprintf(out, "Backed up state to %s; starting fresh\n", backup)
}
