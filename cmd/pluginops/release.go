package main

import (
	"github.com/spf13/cobra"

	"pluginops/internal/paths"
	"pluginops/internal/release"
)

var (
	exportTargetFlag     string
	exportOverwriteFlag  bool
	exportProjectDirFlag string
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Inspect releases and export changelogs",
}

var releaseListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List releases of a project, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			releases, err := release.NewRepository(a.handle).List(args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, releases)
		})
	},
}

var releaseExportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Write a project's releases to a Markdown changelog",
	Long: `Render every release of a project, newest first, into a changelog file and
stamp the releases with the export time and path.

The target defaults to changelog.default_file (CHANGELOG.md) under the project
directory. An existing file is only replaced with --overwrite.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			projectDir := exportProjectDirFlag
			if projectDir == "" {
				projectDir = paths.GetProjectDir()
			}
			exporter := release.NewExporter(a.handle, projectDir, a.cfg.Changelog.DefaultFile)
			result, err := exporter.Export(args[0], exportTargetFlag, exportOverwriteFlag)
			if err != nil {
				return err
			}
			a.logger.Info("Changelog exported", "project", args[0], "path", result.FilePath)
			return printResult(cmd, result)
		})
	},
}

func init() {
	releaseExportCmd.Flags().StringVar(&exportTargetFlag, "target", "", "Changelog path relative to the project directory")
	releaseExportCmd.Flags().BoolVar(&exportOverwriteFlag, "overwrite", false, "Replace an existing changelog")
	releaseExportCmd.Flags().StringVar(&exportProjectDirFlag, "project-dir", "", "Project base directory (overrides PROJECT_DIR)")

	releaseCmd.AddCommand(releaseListCmd)
	releaseCmd.AddCommand(releaseExportCmd)
	rootCmd.AddCommand(releaseCmd)
}
