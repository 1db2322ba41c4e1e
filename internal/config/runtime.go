package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath resolves the directory holding .env, the database and the
// REPL history. Relative paths are taken from the home directory.
func GetRuntimePath() string {
	path := os.Getenv("RECALL_RUNTIME_PATH")
	if path == "" {
		path = ".recall"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
