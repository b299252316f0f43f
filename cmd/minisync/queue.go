// ABOUTME: Queue command for inspecting pending offline operations
// ABOUTME: Shows counts by default, full listings with ages via queue list

package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AlgusDark/minisync/internal/timeutil"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show pending offline operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts := coord.Counts()
		if counts.Total() == 0 {
			fmt.Println("Queues are empty")
			return nil
		}

		fmt.Printf("Entry status changes: %d\n", counts.Entries)
		fmt.Printf("Feed operations:      %d\n", counts.Feeds)
		fmt.Printf("Category operations:  %d\n", counts.Categories)
		return nil
	},
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every queued operation",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		faint := color.New(color.Faint).SprintFunc()
		total := 0

		entryOps := entryQueue.Load()
		for _, id := range sortedOpKeys(entryOps) {
			op := entryOps[id]
			fmt.Printf("entry %-12d %-6s %s\n", id, op.Target, faint(timeutil.RelativeAge(op.QueuedAt, now)))
			total++
		}

		feedOps := feedQueue.Load()
		for _, id := range sortedOpKeys(feedOps) {
			op := feedOps[id]
			fmt.Printf("feed %-13d %s %s\n", id, op.Op, faint(timeutil.RelativeAge(op.QueuedAt, now)))
			total++
		}

		categoryOps := categoryQueue.Load()
		for _, id := range sortedOpKeys(categoryOps) {
			op := categoryOps[id]
			fmt.Printf("category %-9d %s %s\n", id, op.Op, faint(timeutil.RelativeAge(op.QueuedAt, now)))
			total++
		}

		if total == 0 {
			fmt.Println("Queues are empty")
		}
		return nil
	},
}

func sortedOpKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func init() {
	queueCmd.AddCommand(queueListCmd)
	rootCmd.AddCommand(queueCmd)
}
