// Package version provides build and version information for pluginops.
package version

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X pluginops/internal/version.Version=0.3.0 -X pluginops/internal/version.Commit=abc123"
var (
	// Version is the semantic version of pluginops
	Version = "0.2.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// ServerName is the name reported to MCP clients during initialize.
const ServerName = "ops"

// Info returns a formatted version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "pluginops version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
