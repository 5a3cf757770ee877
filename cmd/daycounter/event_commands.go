package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daycounter/internal/events"
	"daycounter/internal/ipc"
	"daycounter/internal/milestone"
	"daycounter/internal/timefmt"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var startFlag string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Start tracking a new event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			start := time.Now()
			if value := strings.TrimSpace(startFlag); value != "" {
				parsed, err := timefmt.ParseStart(value)
				if err != nil {
					return err
				}
				start = parsed
			}
			return ctx.withStore(func(client *ipc.Client, store *events.Store) error {
				out := cmd.OutOrStdout()
				if client != nil {
					resp, err := client.EventAdd(name, start.Format(time.RFC3339))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Tracking %q since %s (day %d)\n", resp.Event.Name, resp.Event.StartDisplay, resp.Event.Days)
					return nil
				}

				ev, err := store.Add(name, start)
				if err != nil {
					return err
				}
				now := time.Now()
				fmt.Fprintf(out, "Tracking %q since %s (day %d)\n", ev.Name, timefmt.FormatStartDate(ev.Start, now), timefmt.WholeDays(ev.Start, now))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&startFlag, "start", "s", "", "Start timestamp (YYYY-MM-DD HH:MM), defaults to now")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Stop tracking an event",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			return ctx.withStore(func(client *ipc.Client, store *events.Store) error {
				if client != nil {
					if _, err := client.EventRemove(name); err != nil {
						return err
					}
				} else if err := store.Remove(name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", name)
				return nil
			})
		},
	}
}

func newPauseCommand(ctx *commandContext) *cobra.Command {
	return newEnableCommand(ctx, "pause", "Pause milestone notifications for an event", false)
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return newEnableCommand(ctx, "resume", "Resume milestone notifications for an event", true)
}

func newEnableCommand(ctx *commandContext, verb, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			return ctx.withStore(func(client *ipc.Client, store *events.Store) error {
				out := cmd.OutOrStdout()
				if client != nil {
					resp, err := client.EventEnable(name, enabled)
					if err != nil {
						return err
					}
					if enabled {
						fmt.Fprintf(out, "Resumed %q (day %d)\n", resp.Event.Name, resp.Event.Days)
					} else {
						fmt.Fprintf(out, "Paused %q\n", resp.Event.Name)
					}
					return nil
				}

				ev, err := store.SetEnabled(name, enabled)
				if err != nil {
					return err
				}
				if enabled {
					fmt.Fprintf(out, "Resumed %q (day %d)\n", ev.Name, timefmt.WholeDays(ev.Start, time.Now()))
				} else {
					fmt.Fprintf(out, "Paused %q\n", ev.Name)
				}
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *events.Store) error {
				var summaries []ipc.EventSummary
				if client != nil {
					resp, err := client.EventList()
					if err != nil {
						return err
					}
					summaries = resp.Events
				} else {
					cfg, err := ctx.ensureConfig()
					if err != nil {
						return err
					}
					summaries = summarizeStoredEvents(store.List(), cfg.MilestoneRules(), time.Now())
				}

				if len(summaries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No events tracked")
					return nil
				}
				table := renderTable(
					[]string{"Event", "Started", "Days", "Elapsed", "Next", "Status"},
					buildEventRows(summaries),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

// summarizeStoredEvents mirrors the daemon's event rendering for commands
// that run against the state file directly, so both paths print identically.
func summarizeStoredEvents(stored []events.Event, rules milestone.Rules, now time.Time) []ipc.EventSummary {
	sort.Slice(stored, func(i, j int) bool { return stored[i].Start.Before(stored[j].Start) })

	summaries := make([]ipc.EventSummary, 0, len(stored))
	for _, ev := range stored {
		days := timefmt.WholeDays(ev.Start, now)
		summary := ipc.EventSummary{
			Name:          ev.Name,
			Start:         ev.Start.Format(time.RFC3339),
			StartDisplay:  timefmt.FormatStartDate(ev.Start, now),
			Enabled:       ev.Enabled,
			Days:          days,
			Elapsed:       timefmt.FormatElapsed(now.Sub(ev.Start)),
			NotifiedCount: len(ev.Notified),
		}
		if len(ev.Notified) > 0 {
			summary.LastMilestone = ev.Notified[len(ev.Notified)-1]
		}
		if next, ok := rules.Next(days); ok {
			summary.NextMilestone = next
			summary.NextIn = next - days
			summary.HasNext = true
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func buildEventRows(summaries []ipc.EventSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		status := "active"
		if !s.Enabled {
			status = "paused"
		}
		next := "none"
		if s.HasNext {
			next = fmt.Sprintf("%d (in %dd)", s.NextMilestone, s.NextIn)
		}
		rows = append(rows, []string{
			s.Name,
			s.StartDisplay,
			strconv.Itoa(s.Days),
			s.Elapsed,
			next,
			status,
		})
	}
	return rows
}
