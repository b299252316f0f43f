// ABOUTME: List command for viewing local entries with filtering options
// ABOUTME: Displays entries with read status, title, and published date using color formatting

package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AlgusDark/minisync/internal/store"
	"github.com/AlgusDark/minisync/internal/timeutil"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List local entries",
	Long:    "List locally stored entries with optional filtering by feed, category, and read status",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		feedFilter, _ := cmd.Flags().GetString("feed")
		categoryFilter, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")
		today, _ := cmd.Flags().GetBool("today")
		yesterday, _ := cmd.Flags().GetBool("yesterday")
		week, _ := cmd.Flags().GetBool("week")

		filter := &store.Filter{
			UnreadOnly: !all,
			Limit:      limit,
		}

		if feedFilter != "" {
			feedID, err := strconv.ParseInt(feedFilter, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid feed ID %q", feedFilter)
			}
			filter.FeedID = &feedID
		}
		if categoryFilter != "" {
			categoryID, err := strconv.ParseInt(categoryFilter, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category ID %q", categoryFilter)
			}
			filter.CategoryID = &categoryID
		}

		// Smart view flags map to published-at bounds
		switch {
		case today:
			s := timeutil.StartOfToday()
			filter.Since = &s
		case yesterday:
			s := timeutil.StartOfYesterday()
			u := timeutil.StartOfToday()
			filter.Since = &s
			filter.Before = &u
		case week:
			s := timeutil.StartOfWeek()
			filter.Since = &s
		}

		entries, err := statusStore.List(filter)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No entries found")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()

		for _, entry := range entries {
			fmt.Print(faint(fmt.Sprintf("%-12d", entry.ID)))
			fmt.Print(" ")

			if entry.IsRead() {
				fmt.Print("✓ ")
			} else {
				fmt.Print("  ")
			}

			title := entry.Title
			if title == "" {
				title = "Untitled"
			}
			fmt.Print(title)

			if entry.PublishedAt != nil {
				fmt.Print(" ")
				fmt.Print(faint(entry.PublishedAt.Format("02 Jan 06 15:04 MST")))
			}

			fmt.Println()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("all", "a", false, "show all entries including read")
	listCmd.Flags().StringP("feed", "f", "", "filter by feed ID")
	listCmd.Flags().StringP("category", "c", "", "filter by category ID")
	listCmd.Flags().IntP("limit", "n", 20, "max entries to show")
	listCmd.Flags().Bool("today", false, "show only today's entries")
	listCmd.Flags().Bool("yesterday", false, "show only yesterday's entries")
	listCmd.Flags().Bool("week", false, "show only this week's entries")

	listCmd.MarkFlagsMutuallyExclusive("today", "yesterday", "week")
	listCmd.MarkFlagsMutuallyExclusive("feed", "category")
}
