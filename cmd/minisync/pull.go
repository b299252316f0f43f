// ABOUTME: Pull command for materializing server entries locally
// ABOUTME: Fetches unread entries from the server and upserts them into the status store

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlgusDark/minisync/internal/api"
	"github.com/AlgusDark/minisync/internal/models"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch unread entries from the server",
	Long: `Fetch unread entries from the server and store them locally.

Pulled entries pick up descriptive updates (title, URL) but keep their
local read state: a status change made offline is never clobbered by a
pull.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")

		filter := &api.EntryFilter{Limit: limit}
		if !all {
			filter.Status = models.StatusUnread
		}

		entries, err := client.Entries(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to fetch entries: %w", err)
		}

		for _, entry := range entries {
			if err := statusStore.Upsert(entry); err != nil {
				return fmt.Errorf("failed to store entry %d: %w", entry.ID, err)
			}
		}

		unreadCache.Invalidate()
		fmt.Printf("Pulled %d entries\n", len(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)

	pullCmd.Flags().IntP("limit", "n", 100, "max entries to fetch")
	pullCmd.Flags().BoolP("all", "a", false, "fetch entries of any status, not just unread")
}
