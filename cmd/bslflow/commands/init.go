package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-bsl-flow/internal/config"
	"github.com/l3aro/go-bsl-flow/pkg/cfg"
	"github.com/l3aro/go-bsl-flow/pkg/preproc"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Guides you through setting up bslflow configuration step by step.
Creates a config file with graph construction switches, target platforms,
and the default output format.`,
		// An existing broken config must not stop init from replacing it.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd)
		},
	}
}

// platformChoices are the symbols offered for selection.
var platformChoices = []preproc.Symbol{
	preproc.Server,
	preproc.ThinClient,
	preproc.WebClient,
	preproc.MobileClient,
	preproc.ManagedThickClient,
	preproc.OrdinaryThickClient,
	preproc.ExternalConnection,
	preproc.MobileAppClient,
	preproc.MobileAppServer,
	preproc.MobileStandaloneServer,
}

func runInit(cmd *cobra.Command) error {
	c := config.DefaultConfig()

	// === SECTION 1: Graph construction ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Loop iterations").
				Description("Add back edges from loop bodies to their headers?").
				Value(&c.ProduceLoopIterations),
			huh.NewConfirm().
				Title("Preprocessor conditions").
				Description("Evaluate #If conditions and drop arms no target platform compiles?").
				Value(&c.ProducePreprocessorConditions),
			huh.NewConfirm().
				Title("Dead code").
				Description("Link Return/Raise/Goto to the code after them and mark it unreachable?").
				Value(&c.DetermineAdjacentDeadCode),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Target platforms ===
	options := make([]huh.Option[string], 0, len(platformChoices))
	for _, sym := range platformChoices {
		options = append(options, huh.NewOption(sym.String(), sym.String()))
	}
	var platforms []string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Target platforms").
				Description("Leave empty to analyze for every platform").
				Options(options...).
				Value(&platforms),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	c.Platforms = platforms

	// === SECTION 3: Output ===
	formatOptions := make([]huh.Option[string], 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		formatOptions = append(formatOptions, huh.NewOption(string(f), string(f)))
	}
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default output format").
				Options(formatOptions...).
				Value(&c.OutputFormat),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 4: Config location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.bslflow/config.yaml)", "global"),
					huh.NewOption("Project (./.bslflow/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := c.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", configPath)
	return nil
}
