package main

import (
	"github.com/spf13/cobra"

	"pluginops/internal/issue"
)

var (
	issueProjectFlag  string
	issueStatusFlag   string
	issuePriorityFlag string
	issueCategoryFlag string
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Inspect tracked issues",
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			issues, err := issue.NewRepository(a.handle).List(issue.Filter{
				ProjectID: issueProjectFlag,
				Status:    issue.Status(issueStatusFlag),
				Priority:  issue.Priority(issuePriorityFlag),
				Category:  issue.Category(issueCategoryFlag),
			})
			if err != nil {
				return err
			}
			return printResult(cmd, issues)
		})
	},
}

var issueStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count issues by status, priority and category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			stats, err := issue.NewRepository(a.handle).Stats(issueProjectFlag)
			if err != nil {
				return err
			}
			return printResult(cmd, stats)
		})
	},
}

func init() {
	issueCmd.PersistentFlags().StringVar(&issueProjectFlag, "project", "", "Restrict to one project ID")
	issueListCmd.Flags().StringVar(&issueStatusFlag, "status", "", "Filter by status (open, in_progress, closed)")
	issueListCmd.Flags().StringVar(&issuePriorityFlag, "priority", "", "Filter by priority (critical, high, medium, low)")
	issueListCmd.Flags().StringVar(&issueCategoryFlag, "category", "", "Filter by category")

	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueStatsCmd)
	rootCmd.AddCommand(issueCmd)
}
