// Package config provides configuration for agentbridge.
//
// Configuration is layered: built-in defaults, an optional YAML config file,
// then environment overrides. A .env file in the working directory is loaded
// first so the Azure-style variables the service historically used keep
// working.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	Platform PlatformConfig `yaml:"platform,omitempty"`
	Blob     BlobConfig     `yaml:"blob,omitempty"`
	Run      RunConfig      `yaml:"run,omitempty"`
	Direct   DirectConfig   `yaml:"direct,omitempty"`
	History  HistoryConfig  `yaml:"history,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP gateway.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`

	// APIKey, when set, is required in the X-API-Key header on /agent routes.
	// Empty disables the check entirely.
	APIKey string `yaml:"apiKey,omitempty"`

	// StrictErrors maps turn failures to proper HTTP status codes instead of
	// the legacy "Error: <message>" 200-body behavior.
	StrictErrors bool `yaml:"strictErrors,omitempty"`
}

// PlatformConfig points at the agent platform.
type PlatformConfig struct {
	Endpoint   string `yaml:"endpoint,omitempty"`
	APIVersion string `yaml:"apiVersion,omitempty"`

	// APIKey authenticates with a static key. When empty, the client
	// credential fields below are used to mint short-lived tokens.
	APIKey       string `yaml:"apiKey,omitempty"`
	TenantID     string `yaml:"tenantId,omitempty"`
	ClientID     string `yaml:"clientId,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	Scope        string `yaml:"scope,omitempty"`

	// AgentID is the persisted agent used by /agent/chat.
	AgentID string `yaml:"agentId,omitempty"`

	// Model is the deployment used when creating agents on the fly.
	Model        string `yaml:"model,omitempty"`
	Instructions string `yaml:"instructions,omitempty"`
}

// BlobConfig points at durable blob storage for relayed files.
type BlobConfig struct {
	ConnectionString string `yaml:"connectionString,omitempty"`
	Container        string `yaml:"container,omitempty"`
}

// RunConfig bounds run execution.
type RunConfig struct {
	// Mode selects how runs are driven: "poll" or "stream".
	Mode string `yaml:"mode,omitempty"`

	PollInterval time.Duration `yaml:"pollInterval,omitempty"`
	MaxAttempts  int           `yaml:"maxAttempts,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
}

// DirectConfig controls the non-persisting execution path.
type DirectConfig struct {
	// DeleteAgent removes the per-turn agent after a direct turn completes.
	// Nil means the default (true).
	DeleteAgent *bool `yaml:"deleteAgent,omitempty"`
}

// HistoryConfig controls the turn audit store.
type HistoryConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "memory"
	Path  string `yaml:"path,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
}

// DeleteAgentAfterDirectTurn reports whether direct turns should delete the
// agent they created.
func (c *Config) DeleteAgentAfterDirectTurn() bool {
	if c.Direct.DeleteAgent == nil {
		return true
	}
	return *c.Direct.DeleteAgent
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{Port: 8000},
		Platform: PlatformConfig{
			APIVersion:   "2025-05-01",
			Scope:        "https://ai.azure.com/.default",
			Model:        "gpt-4o",
			Instructions: "You are helpful agent.",
		},
		Run: RunConfig{
			Mode:         "poll",
			PollInterval: time.Second,
			MaxAttempts:  120,
			Timeout:      2 * time.Minute,
		},
		History: HistoryConfig{Store: "sqlite", Path: "agentbridge.db"},
		Logging: LoggingConfig{Level: "info", Style: "pretty"},
	}
}
