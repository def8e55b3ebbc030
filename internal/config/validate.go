package config

import (
	"fmt"
	"strings"

	"github.com/aiscrub/aiscrub/internal/errors"
	"github.com/aiscrub/aiscrub/internal/logging"
)

// ValidationResult holds validation errors and warnings for one Config.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result.
func (vr *ValidationResult) AddError(format string, args ...any) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result.
func (vr *ValidationResult) AddWarning(format string, args ...any) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors reports whether validation failed.
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Message returns a formatted multi-line report of errors and warnings.
func (vr *ValidationResult) Message() string {
	if !vr.HasErrors() && len(vr.Warnings) == 0 {
		return ""
	}

	var sb strings.Builder
	if vr.HasErrors() {
		sb.WriteString("configuration invalid:\n")
		for _, err := range vr.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err))
		}
	}
	if len(vr.Warnings) > 0 {
		sb.WriteString("warnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}
	return sb.String()
}

// Err converts a failed result into a typed configuration error, nil when
// the configuration is valid.
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	return errors.ConfigError(strings.TrimRight(vr.Message(), "\n"))
}

// Validate checks the configuration for contradictions and unusable values.
// Warnings never block a run; callers decide whether to surface them.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	if c.Repo == "" {
		result.AddError("repo path is empty")
	}

	c.validateBranch(result)
	c.validateRules(result)
	c.validateLog(result)
	c.validateRemoval(result)

	return result
}

func (c *Config) validateBranch(result *ValidationResult) {
	if c.Branch == "" {
		return
	}
	// A light subset of git check-ref-format: enough to reject names that
	// would make later git invocations fail with a confusing message.
	switch {
	case strings.HasPrefix(c.Branch, "-"):
		result.AddError("branch %q must not start with a dash", c.Branch)
	case strings.Contains(c.Branch, ".."):
		result.AddError("branch %q must not contain ..", c.Branch)
	case strings.ContainsAny(c.Branch, " \t~^:?*[\\"):
		result.AddError("branch %q contains characters git refuses in ref names", c.Branch)
	case strings.HasPrefix(c.Branch, "/") || strings.HasSuffix(c.Branch, "/"):
		result.AddError("branch %q must not start or end with a slash", c.Branch)
	}
}

func (c *Config) validateRules(result *ValidationResult) {
	for _, name := range c.Rules.Custom {
		if strings.TrimSpace(name) == "" {
			result.AddError("custom rule with empty name")
		}
		if strings.HasPrefix(name, "/") {
			result.AddWarning("custom rule %q looks like an absolute path; rules match names inside the repository", name)
		}
	}
	if c.Rules.Extended && c.Rules.NoDefaults {
		result.AddWarning("no_defaults has no effect when extended rules are selected")
	}
}

func (c *Config) validateLog(result *ValidationResult) {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		result.AddError("log level: %v", err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		result.AddError("log format %q unknown (want text or json)", c.Log.Format)
	}
}

func (c *Config) validateRemoval(result *ValidationResult) {
	if c.Removal.Command == "" && c.Removal.JarPath == "" {
		result.AddError("removal command is empty and no jar path is set")
	}
	// Existence of the tool is deliberately not checked here: dry runs never
	// touch it and must not fail when it is missing.
}
