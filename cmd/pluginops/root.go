package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pluginops/internal/config"
	"pluginops/internal/paths"
	"pluginops/internal/slogutil"
	"pluginops/internal/storage"
	"pluginops/internal/version"
)

var (
	dataDirFlag string
	formatFlag  string
	verboseFlag int
)

var rootCmd = &cobra.Command{
	Use:   "pluginops",
	Short: "pluginops - maintenance bookkeeping for plugin projects",
	Long: `pluginops records projects, health checks, issues, releases and runbook
executions in a local SQLite store and serves them to MCP clients.

Data lives in ~/.plugin-ops unless OPS_DATA_DIR or --data-dir points elsewhere.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dataDirFlag != "" {
			if err := os.Setenv(paths.DataDirEnvVar, dataDirFlag); err != nil {
				return err
			}
		}
		switch OutputFormat(formatFlag) {
		case FormatHuman, FormatJSON, FormatYAML:
			return nil
		default:
			return fmt.Errorf("unsupported format: %s", formatFlag)
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate("pluginops version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (overrides OPS_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman), "Output format (human, json, yaml)")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Also log to stderr (-v info, -vv debug)")
}

// app bundles what a command needs to reach the store.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	handle    *storage.Handle
}

// openApp loads configuration, builds the logger and prepares the store handle.
// The store itself is opened lazily on first use.
func openApp() (*app, error) {
	cfgPath, err := paths.GetConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, closer := newLogger(cfg)

	dbPath, err := paths.GetDBPath()
	if err != nil {
		closer.Close()
		return nil, err
	}
	h := storage.NewHandle(dbPath, storage.HandleOptions{
		TTL:           cfg.HandleTTL(),
		BusyTimeoutMs: cfg.Store.BusyTimeoutMs,
	}, logger)

	return &app{cfg: cfg, logger: logger, logCloser: closer, handle: h}, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	opts := slogutil.Options{
		Level:   slogutil.LevelFromString(cfg.Logging.Level),
		MaxSize: slogutil.ParseSize(cfg.Logging.MaxSize),
	}
	if logPath, err := paths.GetLogPath(); err == nil {
		opts.LogPath = logPath
	}
	if verboseFlag > 0 {
		opts.Console = os.Stderr
		opts.ConsoleLevel = slogutil.LevelFromVerbosity(verboseFlag, false)
	}
	return slogutil.NewOpsLogger(opts)
}

func (a *app) Close() {
	a.handle.Close()
	_ = a.logCloser.Close()
}

// withApp runs fn with an open app and releases it afterwards.
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// printResult writes v to stdout in the selected format.
func printResult(cmd *cobra.Command, v interface{}) error {
	out, err := FormatResponse(v, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
