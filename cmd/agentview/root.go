package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/milk9111/officeagent/config"
	"github.com/milk9111/officeagent/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentview",
	Short: "Play desktop assistant agents",
	Long:  `agentview loads an agent pack (definition, sprite sheet and sounds) and plays its animations.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultFile, "viewer settings file")
	rootCmd.PersistentFlags().String("agents", "", "directory holding agent packs (defaults to the settings file, then the built-in agents)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")
}

// loadSettings reads the settings file and applies the persistent flags.
func loadSettings(cmd *cobra.Command) (config.Viewer, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}

	if cmd.Flags().Changed("agents") {
		cfg.AgentsDir, _ = cmd.Flags().GetString("agents")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logging.New(level), nil
}
