package main

import (
	"github.com/spf13/cobra"

	"pluginops/internal/health"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Inspect health checks",
}

var healthSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the latest health check of every project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			checks, err := health.NewRepository(a.handle).LatestPerProject()
			if err != nil {
				return err
			}
			return printResult(cmd, checks)
		})
	},
}

func init() {
	healthCmd.AddCommand(healthSummaryCmd)
	rootCmd.AddCommand(healthCmd)
}
