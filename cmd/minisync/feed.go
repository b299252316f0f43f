// ABOUTME: Feed subcommand for whole-feed operations
// ABOUTME: Marks every local entry of a feed as read and syncs the feed remotely

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Operate on a whole feed",
}

var feedMarkReadCmd = &cobra.Command{
	Use:   "mark-read <feed-id>",
	Short: "Mark all entries in a feed as read",
	Long:  "Mark every local entry belonging to the feed as read, then tell the server to do the same.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feedID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid feed ID %q", args[0])
		}

		count, err := dispatcher.DispatchFeed(feedID)
		if err != nil {
			return fmt.Errorf("failed to mark feed as read: %w", err)
		}

		if count == 0 {
			fmt.Println("No unread entries in this feed")
		} else {
			fmt.Printf("Marked %d entries as read in feed %d\n", count, feedID)
		}
		return nil
	},
}

func init() {
	feedCmd.AddCommand(feedMarkReadCmd)
	rootCmd.AddCommand(feedCmd)
}
