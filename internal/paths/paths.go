// Package paths resolves the per-user data directory, the files kept inside it,
// and project-relative paths.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirEnvVar overrides the data directory location.
	DataDirEnvVar = "OPS_DATA_DIR"
	// ProjectDirEnvVar overrides the project base directory (default: working directory).
	ProjectDirEnvVar = "PROJECT_DIR"
	// DefaultDataDir is the data directory name under the user's home.
	DefaultDataDir = ".plugin-ops"

	DBFileName     = "ops.db"
	LogFileName    = "ops.log"
	ConfigFileName = "config.toml"
)

// GetDataDir returns the data directory, creating it if absent.
// OPS_DATA_DIR takes precedence over ~/.plugin-ops.
func GetDataDir() (string, error) {
	dir := os.Getenv(DataDirEnvVar)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDataDir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// GetDBPath returns the path of the store file.
func GetDBPath() (string, error) {
	return inDataDir(DBFileName)
}

// GetLogPath returns the path of the NDJSON log file.
func GetLogPath() (string, error) {
	return inDataDir(LogFileName)
}

// GetConfigPath returns the path of the optional config file.
func GetConfigPath() (string, error) {
	return inDataDir(ConfigFileName)
}

// ResolveDataPath resolves p against the data directory unless it is absolute.
func ResolveDataPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	return inDataDir(p)
}

func inDataDir(name string) (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// GetProjectDir returns PROJECT_DIR, or the working directory when unset.
func GetProjectDir() string {
	if dir := os.Getenv(ProjectDirEnvVar); dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// ResolveProjectPath resolves target against base unless it is already absolute.
func ResolveProjectPath(base, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(base, target)
}

// CanonicalizePath converts an absolute path to a root-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = root
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinDir checks if a path is within root
func IsWithinDir(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}

	// Path is outside root if it starts with ..
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}
