// ABOUTME: Mark-unread command for flipping an entry back to unread
// ABOUTME: Applies locally first, then triggers the remote update in the background

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AlgusDark/minisync/internal/models"
	"github.com/AlgusDark/minisync/internal/store"
)

var markUnreadCmd = &cobra.Command{
	Use:   "mark-unread <entry-id>",
	Short: "Mark an entry as unread",
	Long:  "Mark a single entry as unread by ID. The local record updates immediately; the server follows in the background.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID %q", args[0])
		}

		if err := dispatcher.DispatchEntry(entryID, models.StatusUnread); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("entry not found: %d", entryID)
			}
			return fmt.Errorf("failed to mark entry as unread: %w", err)
		}

		fmt.Printf("Marked as unread: %d\n", entryID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(markUnreadCmd)
}
