package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `json:"database" envPrefix:"CHARTSAFE_"`
	Schema   SchemaConfig   `json:"schema"   envPrefix:"CHARTSAFE_"`
	LLM      LLMConfig      `json:"llm"      envPrefix:"CHARTSAFE_"`
	Cache    CacheConfig    `json:"cache"    envPrefix:"CHARTSAFE_"`
	Limits   LimitsConfig   `json:"limits"   envPrefix:"CHARTSAFE_"`
	Logging  LoggingConfig  `json:"logging"  envPrefix:"CHARTSAFE_"`
}

// DatabaseConfig selects and configures the query backend. Driver "sqlserver"
// executes against a live SQL Server; "duckdb" runs against a local file and
// is mostly used for demos and tests.
type DatabaseConfig struct {
	Driver         string `json:"driver"           env:"DB_DRIVER"          envDefault:"sqlserver"`
	ConnString     string `json:"conn_string"      env:"DB_CONN_STRING"`
	DuckDBPath     string `json:"duckdb_path"      env:"DB_DUCKDB_PATH"     envDefault:"~/.config/chartsafe/demo.db"`
	MaxConnections int    `json:"max_connections"  env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	MaxIdleConns   int    `json:"max_idle_conns"   env:"DB_MAX_IDLE_CONNS"  envDefault:"5"`
	QueryTimeout   string `json:"query_timeout"    env:"DB_QUERY_TIMEOUT"   envDefault:"30s"`
}

// SchemaConfig controls catalog discovery and refresh.
type SchemaConfig struct {
	RefreshInterval string `json:"refresh_interval" env:"SCHEMA_REFRESH_INTERVAL" envDefault:"30m"`
	PIIColumns      string `json:"pii_columns"      env:"SCHEMA_PII_COLUMNS"      envDefault:"Email"` // comma-separated denylist
}

// LLMConfig configures the chart-request extraction provider.
type LLMConfig struct {
	APIKey      string  `json:"-"           env:"LLM_API_KEY"`
	BaseURL     string  `json:"base_url"    env:"LLM_BASE_URL"`
	Model       string  `json:"model"       env:"LLM_MODEL"       envDefault:"gpt-4o-mini"`
	MaxTokens   int     `json:"max_tokens"  env:"LLM_MAX_TOKENS"  envDefault:"1024"`
	Temperature float64 `json:"temperature" env:"LLM_TEMPERATURE" envDefault:"0"`
	Timeout     string  `json:"timeout"     env:"LLM_TIMEOUT"     envDefault:"30s"`
	MaxRetries  int     `json:"max_retries" env:"LLM_MAX_RETRIES" envDefault:"1"`
}

// CacheConfig configures the in-memory response cache.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"     env:"CACHE_ENABLED"     envDefault:"true"`
	TTL        string `json:"ttl"         env:"CACHE_TTL"         envDefault:"2m"`
	MaxEntries int    `json:"max_entries" env:"CACHE_MAX_ENTRIES" envDefault:"200"`
}

// LimitsConfig holds the query guardrails.
type LimitsConfig struct {
	MaxRows   int `json:"max_rows"   env:"LIMITS_MAX_ROWS"   envDefault:"5000"`
	MaxGroups int `json:"max_groups" env:"LIMITS_MAX_GROUPS" envDefault:"50"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"info"`                                  // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text"`                                  // text, json
	Output string `json:"output" env:"LOG_OUTPUT" envDefault:"stderr"`                                // stdout, stderr, file
	File   string `json:"file"   env:"LOG_FILE"   envDefault:"~/.config/chartsafe/logs/chartsafe.log"` // log file path when output is file
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads configuration with optional command-line flag
// overrides. Precedence, lowest to highest: envDefault tags, config file,
// environment variables, flags.
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	// Defaults come from the envDefault tags, parsed against an empty
	// environment so real variables cannot slip in below the file layer.
	defaults := &Config{}
	if err := env.ParseWithOptions(defaults, env.Options{
		Environment: map[string]string{},
	}); err != nil {
		return nil, fmt.Errorf("failed to load default configuration: %w", err)
	}

	config := &Config{}
	*config = *defaults

	// Layer the config file over the defaults; only keys present in the
	// file are touched.
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Environment variables beat the file. A second parse against the real
	// environment is diffed with the defaults so only fields a variable
	// actually set are applied.
	fromEnv := &Config{}
	if err := env.ParseWithOptions(fromEnv, env.Options{}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	applyEnvOverrides(config, fromEnv, defaults)

	if flagOverrides != nil {
		applyFlagOverrides(config, flagOverrides)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile decodes a JSON config file directly over config, so
// omitted keys keep whatever value config already holds.
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// applyFlagOverrides applies command-line flag overrides to configuration
func applyFlagOverrides(config *Config, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "driver":
			if str, ok := value.(string); ok && str != "" {
				config.Database.Driver = str
			}
		case "conn-string":
			if str, ok := value.(string); ok && str != "" {
				config.Database.ConnString = str
			}
		case "duckdb-path":
			if str, ok := value.(string); ok && str != "" {
				config.Database.DuckDBPath = str
			}
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		case "model":
			if str, ok := value.(string); ok && str != "" {
				config.LLM.Model = str
			}
		case "no-cache":
			if b, ok := value.(bool); ok && b {
				config.Cache.Enabled = false
			}
		}
	}
}

// applyEnvOverrides copies into target every field where the env-parsed
// config differs from the defaults, i.e. every field an environment variable
// actually set. Fields no variable touched are left alone, so file values
// survive the env layer.
func applyEnvOverrides(target, fromEnv, defaults *Config) {
	var applyValues func(t, e, d reflect.Value)
	applyValues = func(t, e, d reflect.Value) {
		if t.Kind() == reflect.Struct {
			for i := range t.NumField() {
				applyValues(t.Field(i), e.Field(i), d.Field(i))
			}
			return
		}
		if !e.Equal(d) {
			t.Set(e)
		}
	}

	applyValues(
		reflect.ValueOf(target).Elem(),
		reflect.ValueOf(fromEnv).Elem(),
		reflect.ValueOf(defaults).Elem(),
	)
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout, stderr, or file)",
			config.Logging.Output,
		)
	}

	validDrivers := map[string]bool{
		"sqlserver": true, "duckdb": true,
	}
	if !validDrivers[strings.ToLower(config.Database.Driver)] {
		return fmt.Errorf(
			"invalid database driver: %s (must be sqlserver or duckdb)",
			config.Database.Driver,
		)
	}

	for name, value := range map[string]string{
		"database query timeout":  config.Database.QueryTimeout,
		"schema refresh interval": config.Schema.RefreshInterval,
		"llm timeout":             config.LLM.Timeout,
		"cache ttl":               config.Cache.TTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %s", name, value)
		}
	}

	if config.Database.MaxConnections <= 0 {
		return fmt.Errorf(
			"database max connections must be positive: %d",
			config.Database.MaxConnections,
		)
	}

	if config.Limits.MaxRows <= 0 || config.Limits.MaxGroups <= 0 {
		return fmt.Errorf(
			"query limits must be positive: max_rows=%d max_groups=%d",
			config.Limits.MaxRows, config.Limits.MaxGroups,
		)
	}

	return nil
}

// QueryTimeoutDuration returns the parsed database query timeout.
func (c *Config) QueryTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Database.QueryTimeout)
	if err != nil {
		return 30 * time.Second
	}

	return d
}

// RefreshIntervalDuration returns the parsed schema refresh interval.
func (c *Config) RefreshIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.Schema.RefreshInterval)
	if err != nil {
		return 30 * time.Minute
	}

	return d
}

// CacheTTLDuration returns the parsed response cache TTL.
func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 2 * time.Minute
	}

	return d
}

// LLMTimeoutDuration returns the parsed LLM request timeout.
func (c *Config) LLMTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 30 * time.Second
	}

	return d
}

// PIIColumnList splits the configured denylist into column names.
func (c *Config) PIIColumnList() []string {
	var cols []string

	for _, col := range strings.Split(c.Schema.PIIColumns, ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}

	return cols
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv("CHARTSAFE_CONFIG"); configPath != "" {
		return expandPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(homeDir, ".config", "chartsafe", "config.json")
}

// expandPath expands ~ to home directory in file paths
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// ExpandAllPaths expands all paths in the configuration
func (c *Config) ExpandAllPaths() {
	c.Database.DuckDBPath = expandPath(c.Database.DuckDBPath)
	c.Logging.File = expandPath(c.Logging.File)
}

// GetConfigDir returns the configuration directory
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".config/chartsafe"
	}

	return filepath.Join(homeDir, ".config", "chartsafe")
}

// GetLogDir returns the log directory
func GetLogDir() string {
	return filepath.Join(GetConfigDir(), "logs")
}

// EnsureDirectories creates necessary directories for the configuration
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Database.DuckDBPath),
		filepath.Dir(c.Logging.File),
	}

	for _, dir := range dirs {
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}
