// ABOUTME: Standard filesystem paths for pi-post configuration and local data
// ABOUTME: Resolves ~/.pi-post/ for global and .pi-post/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".pi-post"
	projectDirName = ".pi-post"
	configFileName = "config.yml"
)

// GlobalDir returns the user-global config directory (~/.pi-post/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.pi-post/ in root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), configFileName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), configFileName)
}

// StoragePath returns the configured storage path, or the backend's default
// file under GlobalDir when none is set.
func (s *Settings) StoragePath() string {
	if s.Storage.Path != "" {
		return s.Storage.Path
	}
	switch s.Storage.Backend {
	case "sqlite":
		return filepath.Join(GlobalDir(), "storage.db")
	default:
		return filepath.Join(GlobalDir(), "storage.json")
	}
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
