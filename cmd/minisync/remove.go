// ABOUTME: Remove command for deleting a local entry record
// ABOUTME: Cancels any in-flight worker for the entry before deleting

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AlgusDark/minisync/internal/dispatch"
)

var removeCmd = &cobra.Command{
	Use:     "remove <entry-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a local entry record",
	Long:    "Delete an entry from the local store. Any in-flight background update for it is cancelled first; a queued change for it is dropped.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID %q", args[0])
		}

		dispatcher.Cancel(dispatch.KindEntry, entryID)

		if err := statusStore.Delete(entryID); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		if err := entryQueue.Remove(entryID); err != nil {
			return fmt.Errorf("failed to drop queued change: %w", err)
		}

		unreadCache.Invalidate()
		fmt.Printf("Removed entry %d\n", entryID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
