package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so secrets can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Server.APIKey = expandEnvVars(cfg.Server.APIKey)
	cfg.Platform.APIKey = expandEnvVars(cfg.Platform.APIKey)
	cfg.Platform.ClientSecret = expandEnvVars(cfg.Platform.ClientSecret)
	cfg.Blob.ConnectionString = expandEnvVars(cfg.Blob.ConnectionString)
}

// Load reads the config file, applies environment overrides, and returns a
// merged Config. A missing file produces defaults plus env overrides only.
func Load(path string) (Config, error) {
	// Historical deployments configure everything through a .env file.
	_ = godotenv.Load()

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			expandSensitiveFields(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults after a file
// load partially overwrote the built-ins.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Platform.APIVersion == "" {
		cfg.Platform.APIVersion = def.Platform.APIVersion
	}
	if cfg.Platform.Scope == "" {
		cfg.Platform.Scope = def.Platform.Scope
	}
	if cfg.Platform.Model == "" {
		cfg.Platform.Model = def.Platform.Model
	}
	if cfg.Platform.Instructions == "" {
		cfg.Platform.Instructions = def.Platform.Instructions
	}
	if cfg.Run.Mode == "" {
		cfg.Run.Mode = def.Run.Mode
	}
	if cfg.Run.PollInterval == 0 {
		cfg.Run.PollInterval = def.Run.PollInterval
	}
	if cfg.Run.MaxAttempts == 0 {
		cfg.Run.MaxAttempts = def.Run.MaxAttempts
	}
	if cfg.Run.Timeout == 0 {
		cfg.Run.Timeout = def.Run.Timeout
	}
	if cfg.History.Store == "" {
		cfg.History.Store = def.History.Store
	}
	if cfg.History.Path == "" {
		cfg.History.Path = def.History.Path
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = def.Logging.Style
	}
}

// applyEnvOverrides reads environment variables and overrides config values.
// The AZURE_* names match what the service has always been deployed with.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGENTBRIDGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("AGENTBRIDGE_STRICT_ERRORS"); v != "" {
		cfg.Server.StrictErrors = v == "1" || v == "true"
	}
	if v := os.Getenv("AZURE_AI_AGENT_ENDPOINT"); v != "" {
		cfg.Platform.Endpoint = v
	}
	if v := os.Getenv("AZURE_AI_AGENT_API_KEY"); v != "" {
		cfg.Platform.APIKey = v
	}
	if v := os.Getenv("AZURE_TENANT_ID"); v != "" {
		cfg.Platform.TenantID = v
	}
	if v := os.Getenv("AZURE_CLIENT_ID"); v != "" {
		cfg.Platform.ClientID = v
	}
	if v := os.Getenv("AZURE_CLIENT_SECRET"); v != "" {
		cfg.Platform.ClientSecret = v
	}
	if v := os.Getenv("AZURE_AI_AGENT_ID"); v != "" {
		cfg.Platform.AgentID = v
	}
	if v := os.Getenv("AZURE_AI_AGENT_MODEL_DEPLOYMENT_NAME"); v != "" {
		cfg.Platform.Model = v
	}
	if v := os.Getenv("AZURE_BLOB_CONNECTION_STRING"); v != "" {
		cfg.Blob.ConnectionString = v
	}
	if v := os.Getenv("AZURE_BLOB_CONTAINER_NAME"); v != "" {
		cfg.Blob.Container = v
	}
	if v := os.Getenv("AGENTBRIDGE_RUN_MODE"); v != "" {
		cfg.Run.Mode = v
	}
	if v := os.Getenv("AGENTBRIDGE_RUN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Run.Timeout = d
		}
	}
	if v := os.Getenv("AGENTBRIDGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AGENTBRIDGE_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
}
