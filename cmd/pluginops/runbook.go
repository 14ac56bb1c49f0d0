package main

import (
	"github.com/spf13/cobra"

	"pluginops/internal/runbook"
)

var (
	runbookProjectFlag string
	runbookStatusFlag  string
	runbookNameFlag    string
)

var runbookCmd = &cobra.Command{
	Use:   "runbook",
	Short: "Inspect runbook executions",
}

var runbookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runbook executions, most recently started first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			execs, err := runbook.NewRepository(a.handle).List(runbook.Filter{
				ProjectID:   runbookProjectFlag,
				Status:      runbook.Status(runbookStatusFlag),
				RunbookName: runbookNameFlag,
			})
			if err != nil {
				return err
			}
			return printResult(cmd, execs)
		})
	},
}

func init() {
	runbookListCmd.Flags().StringVar(&runbookProjectFlag, "project", "", "Filter by project ID")
	runbookListCmd.Flags().StringVar(&runbookStatusFlag, "status", "", "Filter by status (running, completed, failed)")
	runbookListCmd.Flags().StringVar(&runbookNameFlag, "name", "", "Filter by runbook name")

	runbookCmd.AddCommand(runbookListCmd)
	rootCmd.AddCommand(runbookCmd)
}
