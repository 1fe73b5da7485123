package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// projectNameRe matches the charset accepted by the [project:NAME] tag.
var projectNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("instance_dir", c.InstanceDir, notEmpty),
		criterio.Run("instance_dir", c.InstanceDir, isDirectoryOrNotExist),
		criterio.Run("agent.command", c.Agent.Command, notEmpty),
		nonNegative("agent.timeout_minutes", c.Agent.TimeoutMinutes),
		nonNegative("runner.max_runs", c.Runner.MaxRuns),
		nonNegative("runner.interval_seconds", c.Runner.IntervalSeconds),
		c.validateProjects(),
		c.validateRunnerProject(),
	)
}

func (c *Config) validateProjects() error {
	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool, len(c.Projects))

	for i, p := range c.Projects {
		field := fmt.Sprintf("projects[%d]", i)

		if !projectNameRe.MatchString(p.Name) {
			errs = errs.Append(field+".name", fmt.Errorf("invalid project name %q: letters, digits, '-' and '_' only", p.Name))
		}
		if seen[p.Name] {
			errs = errs.Append(field+".name", fmt.Errorf("duplicate project name %q", p.Name))
		}
		seen[p.Name] = true

		for j, pattern := range p.Patterns {
			if !doublestar.ValidatePattern(pattern) {
				errs = errs.Append(fmt.Sprintf("%s.patterns[%d]", field, j), fmt.Errorf("invalid glob pattern %q", pattern))
			}
		}
	}

	return errs.ToError()
}

// validateRunnerProject checks that a configured project filter refers to a
// known project.
func (c *Config) validateRunnerProject() error {
	if c.Runner.Project == "" || len(c.Projects) == 0 {
		return nil
	}
	if _, ok := c.ProjectByName(c.Runner.Project); !ok {
		return criterio.NewFieldErrors("runner.project", fmt.Errorf("unknown project %q", c.Runner.Project))
	}
	return nil
}

func notEmpty(v string) error {
	if v == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func nonNegative(field string, v int) error {
	if v < 0 {
		return criterio.NewFieldErrors(field, fmt.Errorf("cannot be negative"))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
