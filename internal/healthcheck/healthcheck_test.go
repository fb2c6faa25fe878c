package healthcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/go-bsl-flow/internal/batch"
	"github.com/l3aro/go-bsl-flow/internal/config"
	"github.com/l3aro/go-bsl-flow/pkg/cache"
)

func TestCheckWithNilConfig(t *testing.T) {
	_, err := Check(nil, "", "")
	if err == nil {
		t.Error("Expected error for nil config, got nil")
	}
}

func TestCheckDefaults(t *testing.T) {
	result, err := Check(config.DefaultConfig(), "", t.TempDir())
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	if result.EffectiveScope != "" {
		t.Errorf("EffectiveScope = %q, want empty", result.EffectiveScope)
	}
	if result.Platforms.Status != StatusReady {
		t.Errorf("Platforms.Status = %q, want %q", result.Platforms.Status, StatusReady)
	}
	if !strings.Contains(result.Platforms.Detail, "SERVER") {
		t.Errorf("Platforms.Detail = %q, want SERVER listed", result.Platforms.Detail)
	}
	if result.IgnoreFile.Status != StatusMissing {
		t.Errorf("IgnoreFile.Status = %q, want %q", result.IgnoreFile.Status, StatusMissing)
	}
	if result.Cache.Status != StatusDisabled {
		t.Errorf("Cache.Status = %q, want %q", result.Cache.Status, StatusDisabled)
	}
	if result.Failed() {
		t.Error("Failed() = true for defaults")
	}
}

func TestCheckInvalidPlatforms(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Platforms = []string{"Mainframe"}

	result, err := Check(cfg, "", t.TempDir())
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.Platforms.Status != StatusError {
		t.Errorf("Platforms.Status = %q, want %q", result.Platforms.Status, StatusError)
	}
	if !result.Failed() {
		t.Error("Failed() = false with invalid platforms")
	}
}

func TestCheckIgnoreFile(t *testing.T) {
	root := t.TempDir()
	content := "# generated\nTemplates/\n\n*.tmp.yaml\n"
	if err := os.WriteFile(filepath.Join(root, ".bslflowignore"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := Check(config.DefaultConfig(), "", root)
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.IgnoreFile.Status != StatusReady {
		t.Fatalf("IgnoreFile.Status = %q, want %q", result.IgnoreFile.Status, StatusReady)
	}
	if !strings.Contains(result.IgnoreFile.Detail, "(2 rules)") {
		t.Errorf("IgnoreFile.Detail = %q, want 2 rules", result.IgnoreFile.Detail)
	}
}

func TestCheckCache(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		setup  func(path string)
		status string
		detail string
	}{
		{
			name:   "missing file",
			setup:  func(string) {},
			status: StatusMissing,
		},
		{
			name: "valid file",
			setup: func(path string) {
				c := cache.New[batch.CachedFile](cache.Options{})
				c.Set("k1", batch.CachedFile{Module: "A"})
				c.Set("k2", batch.CachedFile{Module: "B"})
				if err := c.SaveFile(path); err != nil {
					t.Fatal(err)
				}
			},
			status: StatusReady,
			detail: "(2 entries)",
		},
		{
			name: "corrupt file",
			setup: func(path string) {
				if err := os.WriteFile(path, []byte{0xc1}, 0644); err != nil {
					t.Fatal(err)
				}
			},
			status: StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.CacheFile = filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".cache")
			tt.setup(cfg.CacheFile)

			result, err := Check(cfg, "", dir)
			if err != nil {
				t.Fatalf("Check() failed: %v", err)
			}
			if result.Cache.Status != tt.status {
				t.Errorf("Cache.Status = %q, want %q (error %q)", result.Cache.Status, tt.status, result.Cache.Error)
			}
			if tt.detail != "" && !strings.Contains(result.Cache.Detail, tt.detail) {
				t.Errorf("Cache.Detail = %q, want %q", result.Cache.Detail, tt.detail)
			}
		})
	}
}

func TestScopeFromPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{filepath.Join(home, ".bslflow", "config.yaml"), "global"},
		{filepath.Join(".bslflow", "config.yaml"), "project"},
	}
	for _, tt := range tests {
		if got := scopeFromPath(tt.path); got != tt.want {
			t.Errorf("scopeFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
