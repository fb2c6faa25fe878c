package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/go-bsl-flow/internal/log"
	"github.com/l3aro/go-bsl-flow/pkg/cfg"
	"github.com/l3aro/go-bsl-flow/pkg/preproc"
)

// Config holds all configuration for bslflow
type Config struct {
	// Graph construction switches
	ProduceLoopIterations         bool `yaml:"produce_loop_iterations" env:"BSLFLOW_LOOP_ITERATIONS"`
	ProducePreprocessorConditions bool `yaml:"produce_preprocessor_conditions" env:"BSLFLOW_PREPROCESSOR_CONDITIONS"`
	DetermineAdjacentDeadCode     bool `yaml:"determine_adjacent_dead_code" env:"BSLFLOW_DEAD_CODE"`

	// Platforms lists the compilation targets, e.g. [Server, ThinClient].
	// Empty means every standard target.
	Platforms []string `yaml:"platforms" env:"BSLFLOW_PLATFORMS"`

	// Batch settings. Zero workers means one per CPU. An empty CacheFile
	// disables the report cache.
	Workers    int    `yaml:"workers" env:"BSLFLOW_WORKERS"`
	IgnoreFile string `yaml:"ignore_file" env:"BSLFLOW_IGNORE_FILE"`
	CacheFile  string `yaml:"cache_file" env:"BSLFLOW_CACHE_FILE"`
	CacheSize  int    `yaml:"cache_size" env:"BSLFLOW_CACHE_SIZE"`

	// Output
	OutputFormat string `yaml:"output_format" env:"BSLFLOW_FORMAT"`

	// Logging
	LogLevel string `yaml:"log_level" env:"BSLFLOW_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"BSLFLOW_LOG_JSON"`
	Verbose  bool   `yaml:"verbose" env:"BSLFLOW_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ProduceLoopIterations:         true,
		ProducePreprocessorConditions: true,
		DetermineAdjacentDeadCode:     false,
		Platforms:                     nil,
		Workers:                       0,
		IgnoreFile:                    ".bslflowignore",
		CacheFile:                     "",
		CacheSize:                     10000,
		OutputFormat:                  string(cfg.FormatText),
		LogLevel:                      "info",
		LogJSON:                       false,
		Verbose:                       false,
	}
}

// GlobalConfigFilePath returns the global config file path (~/.bslflow/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bslflow/config.yaml"
	}
	return filepath.Join(home, ".bslflow", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.bslflow/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".bslflow", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.bslflow/config.yaml)
// 3. Global config (~/.bslflow/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	c := DefaultConfig()

	for _, path := range []string{GlobalConfigFilePath(), ProjectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	c := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("BSLFLOW_LOOP_ITERATIONS"); v != "" {
		c.ProduceLoopIterations = parseBool(v)
	}
	if v := os.Getenv("BSLFLOW_PREPROCESSOR_CONDITIONS"); v != "" {
		c.ProducePreprocessorConditions = parseBool(v)
	}
	if v := os.Getenv("BSLFLOW_DEAD_CODE"); v != "" {
		c.DetermineAdjacentDeadCode = parseBool(v)
	}
	if v := os.Getenv("BSLFLOW_PLATFORMS"); v != "" {
		c.Platforms = splitList(v)
	}
	if v := os.Getenv("BSLFLOW_WORKERS"); v != "" {
		if i := parseInt(v); i > 0 {
			c.Workers = i
		}
	}
	if v := os.Getenv("BSLFLOW_IGNORE_FILE"); v != "" {
		c.IgnoreFile = v
	}
	if v := os.Getenv("BSLFLOW_CACHE_FILE"); v != "" {
		c.CacheFile = v
	}
	if v := os.Getenv("BSLFLOW_CACHE_SIZE"); v != "" {
		if i := parseInt(v); i > 0 {
			c.CacheSize = i
		}
	}
	if v := os.Getenv("BSLFLOW_FORMAT"); v != "" {
		c.OutputFormat = v
	}
	if v := os.Getenv("BSLFLOW_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BSLFLOW_LOG_JSON"); v != "" {
		c.LogJSON = parseBool(v)
	}
	if v := os.Getenv("BSLFLOW_VERBOSE"); v != "" {
		c.Verbose = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if _, err := cfg.ParseFormat(c.OutputFormat); err != nil {
		return fmt.Errorf("invalid output_format: %w", err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative")
	}
	if _, err := preproc.ParseSet(c.Platforms); err != nil {
		return fmt.Errorf("invalid platforms: %w", err)
	}
	return nil
}

// AnalysisOptions converts the graph switches into builder options.
func (c *Config) AnalysisOptions() (cfg.Options, error) {
	platforms, err := preproc.ParseSet(c.Platforms)
	if err != nil {
		return cfg.Options{}, err
	}
	return cfg.Options{
		ProduceLoopIterations:         c.ProduceLoopIterations,
		ProducePreprocessorConditions: c.ProducePreprocessorConditions,
		DetermineAdjacentDeadCode:     c.DetermineAdjacentDeadCode,
		Platforms:                     platforms,
	}, nil
}

// Level returns the configured log level, raised to debug by Verbose.
func (c *Config) Level() log.Level {
	if c.Verbose {
		return log.DebugLevel
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
