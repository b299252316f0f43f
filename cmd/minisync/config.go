// ABOUTME: Config command for viewing and editing minisync settings
// ABOUTME: Provides show and set subcommands over the JSON config file

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AlgusDark/minisync/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change minisync settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("server:        %s\n", orUnset(cfg.ServerAddress))
		fmt.Printf("token:         %s\n", maskToken(cfg.APIToken))
		fmt.Printf("data dir:      %s\n", cfg.GetDataDir())
		fmt.Printf("timeout:       %s\n", cfg.RequestTimeout())
		if cfg.BatchLimit > 0 {
			fmt.Printf("batch limit:   %d\n", cfg.BatchLimit)
		} else {
			fmt.Println("batch limit:   unlimited")
		}
		fmt.Printf("\nconfig file:   %s\n", config.GetConfigPath())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long:  "Change a setting. Keys: server, token, data-dir, timeout (seconds), batch-limit.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		switch key {
		case "server":
			cfg.ServerAddress = value
		case "token":
			cfg.APIToken = value
		case "data-dir":
			cfg.DataDir = value
		case "timeout":
			seconds, err := strconv.Atoi(value)
			if err != nil || seconds <= 0 {
				return fmt.Errorf("timeout must be a positive number of seconds")
			}
			cfg.RequestTimeoutSeconds = seconds
		case "batch-limit":
			limit, err := strconv.Atoi(value)
			if err != nil || limit < 0 {
				return fmt.Errorf("batch-limit must be a non-negative number")
			}
			cfg.BatchLimit = limit
		default:
			return fmt.Errorf("unknown key %q: use server, token, data-dir, timeout, or batch-limit", key)
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Config saved to %s\n", config.GetConfigPath())
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func maskToken(token string) string {
	if token == "" {
		return "(unset)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
