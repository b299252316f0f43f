// ABOUTME: Status command showing unread counts and pending queue state
// ABOUTME: Reads aggregates through the counts cache rather than recomputing

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show unread counts",
	Long:  "Show total unread entries plus per-feed and per-category breakdowns, and anything waiting in the sync queues.",
	RunE: func(cmd *cobra.Command, args []string) error {
		byFeed, _ := cmd.Flags().GetBool("by-feed")
		byCategory, _ := cmd.Flags().GetBool("by-category")

		counts, err := unreadCache.Get()
		if err != nil {
			return fmt.Errorf("failed to compute unread counts: %w", err)
		}

		fmt.Printf("Unread entries: %d\n", counts.Total)

		if byFeed && len(counts.ByFeed) > 0 {
			fmt.Println("\nBy feed:")
			for _, id := range sortedOpKeys(counts.ByFeed) {
				fmt.Printf("  feed %-10d %d\n", id, counts.ByFeed[id])
			}
		}
		if byCategory && len(counts.ByCategory) > 0 {
			fmt.Println("\nBy category:")
			for _, id := range sortedOpKeys(counts.ByCategory) {
				fmt.Printf("  category %-6d %d\n", id, counts.ByCategory[id])
			}
		}

		if pending := coord.Counts(); pending.Total() > 0 {
			color.Yellow("\n%d operations waiting to sync (run 'minisync sync run')", pending.Total())
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("by-feed", false, "show per-feed unread counts")
	statusCmd.Flags().Bool("by-category", false, "show per-category unread counts")
}
