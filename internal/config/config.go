package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "MDSCHEMA_"

// Config represents the application configuration
type Config struct {
	Schema  SchemaConfig  `json:"schema"`
	Output  OutputConfig  `json:"output"`
	Logging LoggingConfig `json:"logging"`
	Debug   DebugConfig   `json:"debug"`
}

// SchemaConfig controls identity resolution and identifier generation
type SchemaConfig struct {
	UniqueDepth int    `json:"unique_depth" env:"UNIQUE_DEPTH"` // records at or above this depth never merge
	IDGenerator string `json:"id_generator" env:"ID_GENERATOR"` // random, seeded, sequential
	Seed        string `json:"seed"         env:"SEED"`         // used by the seeded generator
}

// OutputConfig controls rendering
type OutputConfig struct {
	DefaultFormat     string `json:"default_format"     env:"OUTPUT_FORMAT"`      // used when writing to stdout
	Indent            int    `json:"indent"             env:"OUTPUT_INDENT"`      // spaces per indent level
	DeclarationExport bool   `json:"declaration_export" env:"DECLARATION_EXPORT"` // prefix interfaces with export
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"`  // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT"` // text, json
	Output string `json:"output" env:"LOG_OUTPUT"` // stdout, stderr, file
	File   string `json:"file"   env:"LOG_FILE"`   // log file path when output is file
}

// DebugConfig represents debug configuration
type DebugConfig struct {
	Enabled bool `json:"enabled" env:"DEBUG"`
	Verbose bool `json:"verbose" env:"VERBOSE"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Schema: SchemaConfig{
			UniqueDepth: 0,
			IDGenerator: "random",
		},
		Output: OutputConfig{
			DefaultFormat:     "sql",
			Indent:            2,
			DeclarationExport: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
			File:   "~/.config/mdschema/logs/mdschema.log",
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads defaults, then the config file, then
// environment variables, then command-line flag overrides
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	config := DefaultConfig()

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if flagOverrides != nil {
		applyFlagOverrides(config, flagOverrides)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.Logging.File = expandPath(config.Logging.File)

	return config, nil
}

// loadConfigFromFile overlays the keys present in a JSON file
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
		case "unique-depth":
			if n, ok := value.(int); ok {
				config.Schema.UniqueDepth = n
			}
		case "id-generator":
			if str, ok := value.(string); ok && str != "" {
				config.Schema.IDGenerator = str
			}
		case "seed":
			if str, ok := value.(string); ok && str != "" {
				config.Schema.Seed = str
			}
		case "format":
			if str, ok := value.(string); ok && str != "" {
				config.Output.DefaultFormat = str
			}
		case "indent":
			if n, ok := value.(int); ok {
				config.Output.Indent = n
			}
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		case "verbose":
			if b, ok := value.(bool); ok {
				config.Debug.Verbose = b
			}
		case "debug":
			if b, ok := value.(bool); ok {
				config.Debug.Enabled = b
			}
		}
	}
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

	validGenerators := map[string]bool{
		"random": true, "seeded": true, "sequential": true,
	}
	if !validGenerators[config.Schema.IDGenerator] {
		return fmt.Errorf(
			"invalid id generator: %s (must be random, seeded, or sequential)",
			config.Schema.IDGenerator,
		)
	}

	validFormats := map[string]bool{
		"sql": true, "ts": true, "json": true, "md": true, "html": true,
	}
	if !validFormats[strings.ToLower(config.Output.DefaultFormat)] {
		return fmt.Errorf(
			"invalid default format: %s (must be sql, ts, json, md, or html)",
			config.Output.DefaultFormat,
		)
	}

	if config.Schema.UniqueDepth < 0 {
		return fmt.Errorf("unique depth must not be negative: %d", config.Schema.UniqueDepth)
	}

	if config.Output.Indent < 0 || config.Output.Indent > 8 {
		return fmt.Errorf("output indent must be between 0 and 8: %d", config.Output.Indent)
	}

	return nil
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

// GetConfigPath returns the path the configuration is read from
func GetConfigPath() string {
	return getConfigPath()
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv(envPrefix + "CONFIG"); configPath != "" {
		return expandPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(homeDir, ".config", "mdschema", "config.json")
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
