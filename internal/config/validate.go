package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	validModes := []string{"poll", "stream"}
	if cfg.Run.Mode != "" && !slices.Contains(validModes, cfg.Run.Mode) {
		issues = append(issues, ValidationIssue{
			Path:    "run.mode",
			Message: fmt.Sprintf("must be one of %v, got %q", validModes, cfg.Run.Mode),
		})
	}

	if cfg.Run.PollInterval <= 0 {
		issues = append(issues, ValidationIssue{
			Path:    "run.pollInterval",
			Message: "must be positive",
		})
	}
	if cfg.Run.MaxAttempts <= 0 {
		issues = append(issues, ValidationIssue{
			Path:    "run.maxAttempts",
			Message: "must be positive",
		})
	}
	if cfg.Run.Timeout <= 0 {
		issues = append(issues, ValidationIssue{
			Path:    "run.timeout",
			Message: "must be positive",
		})
	}

	validStores := []string{"sqlite", "memory"}
	if cfg.History.Store != "" && !slices.Contains(validStores, cfg.History.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "history.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.History.Store),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validStyles := []string{"pretty", "json"}
	if cfg.Logging.Style != "" && !slices.Contains(validStyles, cfg.Logging.Style) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.style",
			Message: fmt.Sprintf("must be one of %v, got %q", validStyles, cfg.Logging.Style),
		})
	}

	return issues
}
