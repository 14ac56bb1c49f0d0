package main

import (
	"github.com/spf13/cobra"

	"pluginops/internal/mcp"
	"pluginops/internal/paths"
	"pluginops/internal/version"
)

var mcpProjectDir string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start the Model Context Protocol (MCP) server.

The server speaks newline-delimited JSON-RPC 2.0 on stdin/stdout and exposes
the ops_* tools for projects, health checks, issues, releases, runbook
executions and checklist templates, plus read-only ops:// resources.

Relative paths given to ops_project_detect and ops_release_export resolve
against PROJECT_DIR (or --project-dir), defaulting to the working directory.

This command is typically invoked by MCP clients and not directly by users.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpProjectDir, "project-dir", "", "Project base directory (overrides PROJECT_DIR)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		projectDir := mcpProjectDir
		if projectDir == "" {
			projectDir = paths.GetProjectDir()
		}

		// The store is opened up front so a broken data directory fails fast.
		if _, err := a.handle.DB(); err != nil {
			a.logger.Error("Failed to open store", "error", err.Error())
			return err
		}

		server := mcp.NewMCPServer(a.handle, mcp.Options{
			Version:       version.Version,
			ProjectDir:    projectDir,
			ChangelogFile: a.cfg.Changelog.DefaultFile,
		}, a.logger)

		if err := server.Start(); err != nil {
			a.logger.Error("MCP server error", "error", err.Error())
			return err
		}
		return nil
	})
}
