package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daycounter/internal/history"
	"daycounter/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [event]",
		Short: "Show recently announced milestones",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventName := ""
			if len(args) == 1 {
				eventName = strings.TrimSpace(args[0])
			}
			return ctx.withJournal(func(client *ipc.Client, journal *history.Store) error {
				var records []ipc.MilestoneRecord
				if client != nil {
					resp, err := client.History(eventName, limit)
					if err != nil {
						return err
					}
					records = resp.Entries
				} else {
					var entries []*history.Entry
					var err error
					if eventName != "" {
						entries, err = journal.ForEvent(cmd.Context(), eventName, limit)
					} else {
						entries, err = journal.Recent(cmd.Context(), limit)
					}
					if err != nil {
						return err
					}
					records = milestoneRecords(entries)
				}

				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No milestones recorded")
					return nil
				}
				table := renderTable(
					[]string{"When", "Event", "Day", "Delivered"},
					buildHistoryRows(records),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded milestone history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(client *ipc.Client, journal *history.Store) error {
				var removed int64
				if client != nil {
					resp, err := client.HistoryClear()
					if err != nil {
						return err
					}
					removed = resp.Removed
				} else {
					var err error
					removed, err = journal.Clear(cmd.Context())
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries\n", removed)
				return nil
			})
		},
	}
}

func milestoneRecords(entries []*history.Entry) []ipc.MilestoneRecord {
	records := make([]ipc.MilestoneRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, ipc.MilestoneRecord{
			ID:            entry.ID,
			EventName:     entry.EventName,
			Days:          entry.Days,
			StartLabel:    entry.StartLabel,
			Delivered:     entry.Delivered,
			DeliveryError: entry.DeliveryError,
			CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return records
}

func buildHistoryRows(records []ipc.MilestoneRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		delivered := yesNo(record.Delivered)
		if !record.Delivered && record.DeliveryError != "" {
			delivered = "no (" + record.DeliveryError + ")"
		}
		rows = append(rows, []string{
			record.CreatedAt,
			record.EventName,
			strconv.Itoa(record.Days),
			delivered,
		})
	}
	return rows
}
