// ABOUTME: Category subcommand for whole-category operations
// ABOUTME: Marks every local entry of a category as read and syncs the category remotely

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Operate on a whole category",
}

var categoryMarkReadCmd = &cobra.Command{
	Use:   "mark-read <category-id>",
	Short: "Mark all entries in a category as read",
	Long:  "Mark every local entry belonging to the category as read, then tell the server to do the same.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid category ID %q", args[0])
		}

		count, err := dispatcher.DispatchCategory(categoryID)
		if err != nil {
			return fmt.Errorf("failed to mark category as read: %w", err)
		}

		if count == 0 {
			fmt.Println("No unread entries in this category")
		} else {
			fmt.Printf("Marked %d entries as read in category %d\n", count, categoryID)
		}
		return nil
	},
}

func init() {
	categoryCmd.AddCommand(categoryMarkReadCmd)
	rootCmd.AddCommand(categoryCmd)
}
