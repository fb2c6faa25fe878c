package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-bsl-flow/internal/config"
	"github.com/l3aro/go-bsl-flow/internal/healthcheck"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [dir]",
		Short: "Run health checks on configuration and batch inputs",
		Long: `Checks the configuration, the target platforms, the ignore file of the
scanned directory (default: current directory), and the report cache.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			result, err := healthcheck.Check(a.cfg, a.effectiveConfigPath(), root)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			displayDoctorResult(cmd.OutOrStdout(), result)

			if result.Failed() {
				return fmt.Errorf("health check failed: one or more checks reported errors")
			}
			return nil
		},
	}
}

// effectiveConfigPath returns the highest priority config file in use.
func (a *app) effectiveConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	for _, path := range []string{config.ProjectConfigFilePath(), config.GlobalConfigFilePath()} {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func displayDoctorResult(w io.Writer, result *healthcheck.HealthCheckResult) {
	if result.EffectivePath == "" {
		fmt.Fprintln(w, "Using config: defaults (no config file found)")
	} else {
		fmt.Fprintf(w, "Using config: %s (%s)\n", result.EffectivePath, result.EffectiveScope)
	}

	for _, c := range result.Checks() {
		fmt.Fprintf(w, "\n%s:\n", c.Name)
		if c.Detail != "" {
			fmt.Fprintf(w, "  %s\n", c.Detail)
		}
		fmt.Fprintf(w, "  Status: %s %s\n", formatStatusIcon(c.Status), c.Status)
		if c.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", c.Error)
		}
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case healthcheck.StatusReady:
		return "✓"
	case healthcheck.StatusDisabled, healthcheck.StatusMissing:
		return "-"
	case healthcheck.StatusError:
		return "✗"
	default:
		return "?"
	}
}
