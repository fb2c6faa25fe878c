package healthcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-bsl-flow/internal/batch"
	"github.com/l3aro/go-bsl-flow/internal/config"
	"github.com/l3aro/go-bsl-flow/internal/scanner"
	"github.com/l3aro/go-bsl-flow/pkg/cache"
	"github.com/l3aro/go-bsl-flow/pkg/preproc"
)

// Status values reported by a check.
const (
	StatusReady    = "ready"
	StatusDisabled = "disabled"
	StatusMissing  = "missing"
	StatusError    = "error"
)

// CheckStatus is the outcome of one check.
type CheckStatus struct {
	Name   string
	Detail string
	Status string
	Error  string
}

// Failed reports whether the check ended in an error.
func (s CheckStatus) Failed() bool {
	return s.Status == StatusError
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	EffectivePath  string
	EffectiveScope string // "global", "project" or "" for defaults
	Platforms      CheckStatus
	IgnoreFile     CheckStatus
	Cache          CheckStatus
}

// Checks lists the individual results in display order.
func (r *HealthCheckResult) Checks() []CheckStatus {
	return []CheckStatus{r.Platforms, r.IgnoreFile, r.Cache}
}

// Failed reports whether any check failed.
func (r *HealthCheckResult) Failed() bool {
	for _, c := range r.Checks() {
		if c.Failed() {
			return true
		}
	}
	return false
}

// Check performs a health check against the given config.
// effectivePath is the config file actually in use and may be empty when
// only defaults apply. root is the directory batch runs would scan.
func Check(cfg *config.Config, effectivePath, root string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &HealthCheckResult{
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
		Platforms:      checkPlatforms(cfg),
		IgnoreFile:     checkIgnoreFile(cfg, root),
		Cache:          checkCache(cfg),
	}, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, ".bslflow")
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}

	return "project"
}

func checkPlatforms(cfg *config.Config) CheckStatus {
	status := CheckStatus{Name: "Platforms"}
	set, err := preproc.ParseSet(cfg.Platforms)
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	status.Status = StatusReady
	status.Detail = strings.Join(set.Names(), ", ")
	return status
}

// checkIgnoreFile parses the top-level ignore file of root, if any.
func checkIgnoreFile(cfg *config.Config, root string) CheckStatus {
	status := CheckStatus{Name: "Ignore file"}
	if cfg.IgnoreFile == "" {
		status.Status = StatusDisabled
		return status
	}

	path := filepath.Join(root, cfg.IgnoreFile)
	status.Detail = path
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		status.Status = StatusMissing
		return status
	}
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	defer f.Close()

	list, err := scanner.ReadIgnoreList("", f)
	if err != nil {
		status.Status = StatusError
		status.Error = fmt.Sprintf("reading %s: %v", path, err)
		return status
	}
	status.Status = StatusReady
	status.Detail = fmt.Sprintf("%s (%d rules)", path, list.Len())
	return status
}

// checkCache verifies the report cache file decodes.
func checkCache(cfg *config.Config) CheckStatus {
	status := CheckStatus{Name: "Report cache"}
	if cfg.CacheFile == "" {
		status.Status = StatusDisabled
		return status
	}

	status.Detail = cfg.CacheFile
	if _, err := os.Stat(cfg.CacheFile); os.IsNotExist(err) {
		status.Status = StatusMissing
		return status
	}

	c := cache.New[batch.CachedFile](cache.Options{MaxSize: cfg.CacheSize})
	if err := c.LoadFile(cfg.CacheFile); err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	status.Status = StatusReady
	status.Detail = fmt.Sprintf("%s (%d entries)", cfg.CacheFile, c.Len())
	return status
}
