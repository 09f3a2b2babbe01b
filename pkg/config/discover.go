package config

import (
	"os"
	"path/filepath"
)

// DirName is the per-project config directory.
const DirName = ".checktree"

// fileNames are tried in order inside DirName.
var fileNames = []string{"config.yaml", "config.yml", "config.toml"}

// DiscoverFromCwd looks for a config file by walking up from the current
// directory.
func DiscoverFromCwd() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return Discover(dir)
}

// Discover walks up from dir looking for .checktree/config.{yaml,yml,toml}
// and returns the first file found. It stops at the filesystem root and
// never goes above the home directory.
func Discover(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		if path, ok := configIn(dir); ok {
			return path, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

func configIn(dir string) (string, bool) {
	for _, name := range fileNames {
		path := filepath.Join(dir, DirName, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// DefaultPath is where init writes a new config for the project at root.
func DefaultPath(root string) string {
	return filepath.Join(root, DirName, fileNames[0])
}
