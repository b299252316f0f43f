// ABOUTME: Mark-read command for marking entries as read
// ABOUTME: Supports single entry by ID or bulk operations by period

package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlgusDark/minisync/internal/models"
	"github.com/AlgusDark/minisync/internal/queue"
	"github.com/AlgusDark/minisync/internal/store"
	"github.com/AlgusDark/minisync/internal/timeutil"
)

var markReadCmd = &cobra.Command{
	Use:   "mark-read [entry-id]",
	Short: "Mark entries as read",
	Long:  "Mark a single entry as read by ID, or use --before to mark all entries older than a date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, _ := cmd.Flags().GetString("before")

		// Single entry mode
		if len(args) == 1 {
			if before != "" {
				return fmt.Errorf("cannot use --before with an entry ID")
			}

			entryID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry ID %q", args[0])
			}

			if err := dispatcher.DispatchEntry(entryID, models.StatusRead); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("entry not found: %d", entryID)
				}
				return fmt.Errorf("failed to mark entry as read: %w", err)
			}

			fmt.Printf("Marked as read: %d\n", entryID)
			return nil
		}

		// Bulk mode requires --before
		if before == "" {
			return fmt.Errorf("provide an entry ID or use --before for bulk marking")
		}

		cutoff, ok := timeutil.ParsePeriod(before)
		if !ok {
			// Try parsing as ISO date
			parsed, err := time.Parse("2006-01-02", before)
			if err != nil {
				return fmt.Errorf("invalid period %q: use today, yesterday, week, month, or YYYY-MM-DD", before)
			}
			cutoff = parsed
		}

		entries, err := statusStore.List(&store.Filter{UnreadOnly: true, Before: &cutoff})
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No entries to mark as read")
			return nil
		}

		now := time.Now()
		for _, entry := range entries {
			if err := statusStore.SetStatus(entry.ID, models.StatusRead); err != nil {
				return fmt.Errorf("failed to mark entry %d as read: %w", entry.ID, err)
			}
			op := queue.StatusOp{
				Target:   models.StatusRead,
				Original: entry.Status,
				QueuedAt: now,
			}
			if err := entryQueue.Enqueue(entry.ID, op); err != nil {
				return fmt.Errorf("failed to queue entry %d: %w", entry.ID, err)
			}
		}

		unreadCache.Invalidate()
		fmt.Printf("Marked %d entries as read\n", len(entries))

		// Push the whole batch now if the server is reachable; the queued
		// operations collapse into at most two calls either way.
		if probe.Online() {
			if _, err := coord.ProcessAll(cmd.Context(), nil); err != nil {
				fmt.Println("Server update failed; changes stay queued for the next sync")
				return nil
			}
			fmt.Println("Server updated")
		} else {
			fmt.Println("Offline; changes queued for the next sync")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(markReadCmd)

	markReadCmd.Flags().StringP("before", "b", "", "mark entries older than: today, yesterday, week, month, or YYYY-MM-DD")
}
