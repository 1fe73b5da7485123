// Package commands implements the ronin CLI surface.
package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/roninhq/ronin/internal/ronin"
)

// timeNow is swapped in tests for deterministic timing output.
var timeNow = time.Now

// Flags holds global CLI options plus the App wired up in the Before hook.
type Flags struct {
	LogLevel    string
	LogFile     string
	ConfigPath  string
	InstanceDir string

	// App is populated in the Before hook and available to all commands.
	App *ronin.App
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "ronin", "config.yaml")
}

// DefaultInstanceDir returns the default instance directory using XDG_DATA_HOME.
func DefaultInstanceDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "ronin")
}
