// Package commands provides the CLI commands for bslflow.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-bsl-flow/internal/config"
	"github.com/l3aro/go-bsl-flow/internal/log"
)

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	verbose    bool
	logJSON    bool

	cfg    *config.Config
	logger log.Logger
}

// load resolves the configuration and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	var (
		c   *config.Config
		err error
	)
	if a.configPath != "" {
		c, err = config.LoadFromFile(a.configPath)
	} else {
		c, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.verbose {
		c.Verbose = true
	}
	if a.logJSON {
		c.LogJSON = true
	}
	a.cfg = c
	a.logger = log.New(log.LoggerConfig{
		Level:      c.Level(),
		JSONOutput: c.LogJSON,
		Stderr:     cmd.ErrOrStderr(),
	})
	return nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "bslflow",
		Short: "bslflow - Control flow graphs for BSL code",
		Long: `bslflow builds control flow graphs from exported BSL syntax trees.

Commands:
  cfg         Build the control flow graph of a method
  render      Re-encode a saved control flow graph
  expr        Print the expression tree of an expression node
  preproc     Evaluate a preprocessor condition to its platform set
  batch       Build graphs for every tree file under a directory
  init        Create a configuration file interactively
  doctor      Check configuration, ignore file, and report cache

Use "bslflow [command] --help" for more information about a command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file path")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Verbose logging")
	cmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Log as JSON lines")

	cmd.AddCommand(newCfgCmd(a))
	cmd.AddCommand(newRenderCmd(a))
	cmd.AddCommand(newExprCmd(a))
	cmd.AddCommand(newPreprocCmd(a))
	cmd.AddCommand(newBatchCmd(a))
	cmd.AddCommand(newInitCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	return cmd
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}
