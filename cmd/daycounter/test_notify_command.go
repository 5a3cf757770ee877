package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"daycounter/internal/ipc"
	"daycounter/internal/logging"
	"daycounter/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			socket := ctx.socketPath()
			client, err := ipc.Dial(socket)
			if err == nil {
				defer client.Close()
				resp, callErr := client.TestNotification()
				if callErr != nil {
					return callErr
				}
				switch {
				case resp.Message != "":
					fmt.Fprintln(out, resp.Message)
				case resp.Sent:
					fmt.Fprintln(out, "Test notification sent")
				default:
					fmt.Fprintln(out, "Notification not sent")
				}
				return nil
			}
			if !daemonUnreachable(err) {
				return wrapDialError(err, socket)
			}

			cfg, cfgErr := ctx.ensureConfig()
			if cfgErr != nil {
				return cfgErr
			}
			if !cfg.Notifications.Enabled {
				fmt.Fprintln(out, "notifications disabled in config")
				return nil
			}
			svc := notifications.NewService(cfg, logging.NewNop())
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Test notification sent via %s\n", svc.Describe())
			return nil
		},
	}
}
