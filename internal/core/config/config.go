// Package config handles configuration loading and validation for ronin.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config holds the per-instance configuration.
type Config struct {
	Agent    AgentConfig  `yaml:"agent"`
	Runner   RunnerConfig `yaml:"runner"`
	Projects []Project    `yaml:"projects"`

	// InstanceDir is set by the caller, not from the config file.
	InstanceDir string `yaml:"-"`
}

// AgentConfig describes the external agent invoked for each mission.
type AgentConfig struct {
	// Command is run through the shell with the mission text exported as
	// RONIN_MISSION and the project workspace as the working directory.
	Command string `yaml:"command"`
	// TimeoutMinutes bounds a single agent run. Zero means no timeout.
	TimeoutMinutes int `yaml:"timeout_minutes"`
}

// RunnerConfig tunes the consumer run loop.
type RunnerConfig struct {
	// Project scopes extraction to one project tag. Empty runs everything.
	Project string `yaml:"project"`
	// MaxRuns stops the loop after this many missions. Zero means unlimited.
	MaxRuns int `yaml:"max_runs"`
	// IntervalSeconds is the pause between missions and the idle poll delay.
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Project maps a named project to its workspace.
type Project struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// Patterns are doublestar globs matched against file paths to attribute
	// inbox drops to this project. Optional.
	Patterns []string `yaml:"patterns"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Command:        "claude -p \"$RONIN_MISSION\"",
			TimeoutMinutes: 60,
		},
		Runner: RunnerConfig{
			IntervalSeconds: 30,
		},
	}
}

// Load reads configuration from configPath and sets the instance directory.
// A missing config file is not an error; defaults apply.
func Load(configPath, instanceDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.InstanceDir = instanceDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			cfg.InstanceDir = instanceDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Agent.Command == "" {
		c.Agent.Command = defaults.Agent.Command
	}
	if c.Agent.TimeoutMinutes == 0 {
		c.Agent.TimeoutMinutes = defaults.Agent.TimeoutMinutes
	}
	if c.Runner.IntervalSeconds == 0 {
		c.Runner.IntervalSeconds = defaults.Runner.IntervalSeconds
	}
}

// MissionsFile returns the path to the mission document.
func (c *Config) MissionsFile() string {
	return filepath.Join(c.InstanceDir, "missions.md")
}

// InboxDir returns the directory watched for producer drops.
func (c *Config) InboxDir() string {
	return filepath.Join(c.InstanceDir, "inbox")
}

// JournalDir returns the directory for run journals.
func (c *Config) JournalDir() string {
	return filepath.Join(c.InstanceDir, "journal")
}

// Interval returns the run loop pause as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Runner.IntervalSeconds) * time.Second
}

// AgentTimeout returns the per-mission agent timeout, zero when unbounded.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.Agent.TimeoutMinutes) * time.Minute
}

// KnownProjects returns the sorted project names.
func (c *Config) KnownProjects() []string {
	names := make([]string, 0, len(c.Projects))
	for _, p := range c.Projects {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// ProjectByName returns the project with the given name.
func (c *Config) ProjectByName(name string) (Project, bool) {
	for _, p := range c.Projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Project{}, false
}

// ProjectFor attributes a file path to a project via its glob patterns,
// falling back to a workspace path prefix match.
func (c *Config) ProjectFor(path string) (string, bool) {
	for _, p := range c.Projects {
		for _, pattern := range p.Patterns {
			if ok, err := doublestar.Match(pattern, path); err == nil && ok {
				return p.Name, true
			}
		}
	}
	for _, p := range c.Projects {
		if p.Path != "" && strings.HasPrefix(path, strings.TrimSuffix(p.Path, "/")+"/") {
			return p.Name, true
		}
	}
	return "", false
}
