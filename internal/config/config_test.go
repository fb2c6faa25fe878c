package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/go-bsl-flow/internal/log"
	"github.com/l3aro/go-bsl-flow/pkg/preproc"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"ProduceLoopIterations", cfg.ProduceLoopIterations, true},
		{"ProducePreprocessorConditions", cfg.ProducePreprocessorConditions, true},
		{"DetermineAdjacentDeadCode", cfg.DetermineAdjacentDeadCode, false},
		{"Workers", cfg.Workers, 0},
		{"IgnoreFile", cfg.IgnoreFile, ".bslflowignore"},
		{"CacheFile", cfg.CacheFile, ""},
		{"CacheSize", cfg.CacheSize, 10000},
		{"OutputFormat", cfg.OutputFormat, "text"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogJSON", cfg.LogJSON, false},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if len(cfg.Platforms) != 0 {
		t.Errorf("DefaultConfig().Platforms = %v, want empty", cfg.Platforms)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "dot format with platforms",
			mutate: func(c *Config) { c.OutputFormat = "dot"; c.Platforms = []string{"Server", "ThinClient"} },
		},
		{
			name:        "unknown format",
			mutate:      func(c *Config) { c.OutputFormat = "xml" },
			wantErr:     true,
			errContains: "invalid output_format",
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "trace" },
			wantErr:     true,
			errContains: "invalid log_level",
		},
		{
			name:        "negative workers",
			mutate:      func(c *Config) { c.Workers = -1 },
			wantErr:     true,
			errContains: "workers must be non-negative",
		},
		{
			name:        "negative cache size",
			mutate:      func(c *Config) { c.CacheSize = -5 },
			wantErr:     true,
			errContains: "cache_size must be non-negative",
		},
		{
			name:        "unknown platform",
			mutate:      func(c *Config) { c.Platforms = []string{"Mainframe"} },
			wantErr:     true,
			errContains: "invalid platforms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("BSLFLOW_LOOP_ITERATIONS", "false")
	t.Setenv("BSLFLOW_DEAD_CODE", "yes")
	t.Setenv("BSLFLOW_PLATFORMS", "Server, ThinClient,")
	t.Setenv("BSLFLOW_WORKERS", "4")
	t.Setenv("BSLFLOW_FORMAT", "json")
	t.Setenv("BSLFLOW_LOG_JSON", "1")
	t.Setenv("BSLFLOW_CACHE_FILE", "/tmp/bslflow.cache")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.ProduceLoopIterations {
		t.Error("ProduceLoopIterations should be overridden to false")
	}
	if !cfg.DetermineAdjacentDeadCode {
		t.Error("DetermineAdjacentDeadCode should be overridden to true")
	}
	if !cfg.ProducePreprocessorConditions {
		t.Error("ProducePreprocessorConditions should keep its default")
	}
	if len(cfg.Platforms) != 2 || cfg.Platforms[0] != "Server" || cfg.Platforms[1] != "ThinClient" {
		t.Errorf("Platforms = %v, want [Server ThinClient]", cfg.Platforms)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.OutputFormat != "json" {
		t.Errorf("OutputFormat = %q, want json", cfg.OutputFormat)
	}
	if !cfg.LogJSON {
		t.Error("LogJSON should be overridden to true")
	}
	if cfg.CacheFile != "/tmp/bslflow.cache" {
		t.Errorf("CacheFile = %q, want /tmp/bslflow.cache", cfg.CacheFile)
	}
}

func TestInvalidWorkersEnvIgnored(t *testing.T) {
	t.Setenv("BSLFLOW_WORKERS", "many")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `produce_loop_iterations: false
determine_adjacent_dead_code: true
platforms:
  - Server
  - ExternalConnection
workers: 2
output_format: yaml
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.ProduceLoopIterations {
		t.Error("ProduceLoopIterations should be false")
	}
	if !cfg.DetermineAdjacentDeadCode {
		t.Error("DetermineAdjacentDeadCode should be true")
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.OutputFormat != "yaml" {
		t.Errorf("OutputFormat = %q, want yaml", cfg.OutputFormat)
	}
	if cfg.IgnoreFile != ".bslflowignore" {
		t.Errorf("IgnoreFile = %q, want default", cfg.IgnoreFile)
	}

	opts, err := cfg.AnalysisOptions()
	if err != nil {
		t.Fatalf("AnalysisOptions() error = %v", err)
	}
	want := preproc.NewSet(preproc.Server, preproc.ExternalConnection)
	if opts.Platforms != want {
		t.Errorf("Platforms = %v, want %v", opts.Platforms, want)
	}
	if opts.ProduceLoopIterations || !opts.DetermineAdjacentDeadCode || !opts.ProducePreprocessorConditions {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("workers: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(broken); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("output_format: pdf\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(invalid); err == nil || !strings.Contains(err.Error(), "invalid output_format") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLoadPriority(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)

	global := DefaultConfig()
	global.Workers = 3
	global.OutputFormat = "json"
	if err := global.Save(GlobalConfigFilePath()); err != nil {
		t.Fatalf("Save(global) error = %v", err)
	}

	local := DefaultConfig()
	local.Workers = 3
	local.OutputFormat = "dot"
	if err := local.Save(ProjectConfigFilePath()); err != nil {
		t.Fatalf("Save(project) error = %v", err)
	}

	t.Setenv("BSLFLOW_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OutputFormat != "dot" {
		t.Errorf("OutputFormat = %q, want project value dot", cfg.OutputFormat)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want env value 8", cfg.Workers)
	}
}

func TestLoadWithoutFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OutputFormat != "text" {
		t.Errorf("OutputFormat = %q, want text", cfg.OutputFormat)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Platforms = []string{"MobileClient"}
	cfg.ProducePreprocessorConditions = false
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.ProducePreprocessorConditions {
		t.Error("ProducePreprocessorConditions should survive the round trip")
	}
	if len(loaded.Platforms) != 1 || loaded.Platforms[0] != "MobileClient" {
		t.Errorf("Platforms = %v, want [MobileClient]", loaded.Platforms)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		verbose  bool
		expected log.Level
	}{
		{"info", "info", false, log.InfoLevel},
		{"warn", "warn", false, log.WarnLevel},
		{"verbose wins", "error", true, log.DebugLevel},
		{"garbage falls back", "loud", false, log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{LogLevel: tt.level, Verbose: tt.verbose}
			if got := c.Level(); got != tt.expected {
				t.Errorf("Level() = %v, want %v", got, tt.expected)
			}
		})
	}
}
