// ABOUTME: Sync subcommand for draining the offline queues
// ABOUTME: Provides run, status, and clear commands over the reconnection coordinator

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AlgusDark/minisync/internal/coordinator"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push queued changes to the server",
	Long: `Reconcile status changes accumulated while offline.

Queued entry changes collapse into batched calls (one per target status);
queued feed and category operations replay one call each. Failed batches
stay queued for the next run.

Commands:
  run     - Drain the queues against the server
  status  - Show what is waiting to sync
  clear   - Discard all queued changes without syncing`,
}

var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Drain the queues against the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		confirm := func(pending coordinator.Counts) bool {
			if yes {
				return true
			}
			fmt.Printf("%d queued operations (%d entries, %d feeds, %d categories)\n",
				pending.Total(), pending.Entries, pending.Feeds, pending.Categories)
			fmt.Print("Sync now? [y/N] ")

			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			answer = strings.TrimSpace(answer)
			return answer == "y" || answer == "Y"
		}

		summary, err := coord.ProcessAll(cmd.Context(), confirm)
		if err != nil {
			if errors.Is(err, coordinator.ErrCanceled) {
				fmt.Println("Canceled.")
				return nil
			}
			return fmt.Errorf("sync failed: %w", err)
		}

		if summary.Processed.Total() == 0 && summary.Failed.Total() == 0 {
			fmt.Println("Nothing to sync")
			return nil
		}

		if summary.Processed.Total() > 0 {
			color.Green("Synced %d operations", summary.Processed.Total())
		}
		if summary.Failed.Total() > 0 {
			color.Yellow("%d operations failed and stay queued", summary.Failed.Total())
		}
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is waiting to sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts := coord.Counts()
		if counts.Total() == 0 {
			fmt.Println("Nothing queued")
		} else {
			fmt.Printf("Queued: %d entries, %d feeds, %d categories\n",
				counts.Entries, counts.Feeds, counts.Categories)
		}

		if probe.Online() {
			color.Green("Server reachable")
		} else {
			color.Yellow("Server unreachable")
		}
		return nil
	},
}

var syncClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard all queued changes without syncing",
	Long: `Discard every queued change without pushing anything to the server.

WARNING: status changes made offline will never reach the server.
Local records keep their current state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		counts := coord.Counts()
		if counts.Total() == 0 {
			fmt.Println("Nothing queued")
			return nil
		}

		color.Red("WARNING: this discards %d queued operations!", counts.Total())
		fmt.Println("Changes made offline will never reach the server.")
		fmt.Print("\nType 'clear' to confirm: ")

		reader := bufio.NewReader(os.Stdin)
		confirmation, _ := reader.ReadString('\n')
		confirmation = strings.TrimSpace(confirmation)

		if confirmation != "clear" {
			fmt.Println("Canceled.")
			return nil
		}

		if err := coord.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear queues: %w", err)
		}

		color.Green("Queues cleared.")
		return nil
	},
}

func init() {
	syncRunCmd.Flags().BoolP("yes", "y", false, "sync without asking for confirmation")

	syncCmd.AddCommand(syncRunCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncClearCmd)

	rootCmd.AddCommand(syncCmd)
}
