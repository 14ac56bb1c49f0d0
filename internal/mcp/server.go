package mcp

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"pluginops/internal/health"
	"pluginops/internal/issue"
	"pluginops/internal/paths"
	"pluginops/internal/project"
	"pluginops/internal/release"
	"pluginops/internal/runbook"
	"pluginops/internal/storage"
	"pluginops/internal/templates"
)

// Options configures an MCPServer. Zero values select the defaults.
type Options struct {
	Version       string
	ProjectDir    string             // base for relative paths; defaults to PROJECT_DIR or the working directory
	ChangelogFile string             // default changelog export target
	Templates     *templates.Catalog // defaults to the embedded catalog
}

// MCPServer serves the ops tools and resources over stdio.
type MCPServer struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	writeMu sync.Mutex
	logger  *slog.Logger
	version string

	tools     map[string]ToolHandler
	resources map[string]ResourceHandler

	handle     *storage.Handle
	projects   *project.Repository
	checks     *health.Repository
	issues     *issue.Repository
	releases   *release.Repository
	runbooks   *runbook.Repository
	exporter   *release.Exporter
	templates  *templates.Catalog
	projectDir string
}

// NewMCPServer creates a server backed by the store handle.
func NewMCPServer(h *storage.Handle, opts Options, logger *slog.Logger) *MCPServer {
	projectDir := opts.ProjectDir
	if projectDir == "" {
		projectDir = paths.GetProjectDir()
	}
	catalog := opts.Templates
	if catalog == nil {
		catalog = templates.MustLoad()
	}

	server := &MCPServer{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		logger:     logger,
		version:    opts.Version,
		tools:      make(map[string]ToolHandler),
		resources:  make(map[string]ResourceHandler),
		handle:     h,
		projects:   project.NewRepository(h),
		checks:     health.NewRepository(h),
		issues:     issue.NewRepository(h),
		releases:   release.NewRepository(h),
		runbooks:   runbook.NewRepository(h),
		exporter:   release.NewExporter(h, projectDir, opts.ChangelogFile),
		templates:  catalog,
		projectDir: projectDir,
	}

	server.RegisterTools()
	server.RegisterResources()

	return server
}

// Start processes messages until stdin is exhausted.
func (s *MCPServer) Start() error {
	s.logger.Info("MCP server starting",
		"version", s.version,
		"projectDir", s.projectDir,
		"tools", len(s.tools),
	)

	for {
		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("MCP server shutting down (EOF)")
				return nil
			}

			var perr *errParse
			if errors.As(err, &perr) {
				s.logger.Warn("Malformed message", "error", err.Error())
				_ = s.writeError(nil, ParseError, err.Error())
				continue
			}

			s.logger.Error("Error reading message", "error", err.Error())
			return err
		}

		response := s.handleMessage(msg)

		// Notifications produce no response
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("Error writing response",
					"error", err.Error(),
				)
			}
		}
	}
}

// Close releases the store handle.
func (s *MCPServer) Close() {
	s.handle.Close()
}

// SetStdin sets the input stream (for testing)
func (s *MCPServer) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil // Reset scanner so it will be recreated with new reader
}

// SetStdout sets the output stream (for testing)
func (s *MCPServer) SetStdout(w io.Writer) {
	s.stdout = w
}
