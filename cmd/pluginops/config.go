package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pluginops/internal/config"
	"pluginops/internal/paths"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pluginops configuration",
	Long:  "View and manage the configuration stored in <data dir>/config.toml",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := paths.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config already exists: %s (use --force to replace it)", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		return printResult(cmd, fmt.Sprintf("Wrote %s", path))
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after applying config.toml and OPS_* environment
overrides (for example OPS_LOGGING_LEVEL=debug).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := paths.GetConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		return printResult(cmd, cfg)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Replace an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
