package main

import (
	"github.com/spf13/cobra"

	opserrors "pluginops/internal/errors"
	"pluginops/internal/paths"
	"pluginops/internal/project"
)

var detectRegister bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Inspect registered projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			projects, err := project.NewRepository(a.handle).List()
			if err != nil {
				return err
			}
			return printResult(cmd, projects)
		})
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			p, err := project.NewRepository(a.handle).Get(args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return opserrors.NewResourceNotFoundError("project", args[0])
			}
			return printResult(cmd, p)
		})
	},
}

// detectResult is a detection, plus the registered project when --register is set.
type detectResult struct {
	Path string `json:"path"`
	project.DetectionResult
	Registered *project.Project `json:"registered,omitempty"`
}

var projectDetectCmd = &cobra.Command{
	Use:   "detect [path]",
	Short: "Classify a project directory by its marker files",
	Long: `Inspect a directory for skills/, agents/, .mcp.json, src/index.ts,
hooks in .claude/settings.json and package/plugin manifests.

The path defaults to PROJECT_DIR or the working directory. With --register the
detected project is recorded in the store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := paths.GetProjectDir()
		if len(args) == 1 {
			root = paths.ResolveProjectPath(root, args[0])
		}

		res := &detectResult{Path: root, DetectionResult: project.Detect(root)}
		if !detectRegister {
			return printResult(cmd, res)
		}

		return withApp(func(a *app) error {
			p, err := project.NewRepository(a.handle).Create(res.CreateInput(root))
			if err != nil {
				return err
			}
			a.logger.Info("Project registered", "id", p.ID, "name", p.Name, "path", root)
			res.Registered = p
			return printResult(cmd, res)
		})
	},
}

func init() {
	projectDetectCmd.Flags().BoolVar(&detectRegister, "register", false, "Register the detected project")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectDetectCmd)
	rootCmd.AddCommand(projectCmd)
}
