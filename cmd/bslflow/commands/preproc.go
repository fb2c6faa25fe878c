package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-bsl-flow/pkg/expr"
	"github.com/l3aro/go-bsl-flow/pkg/preproc"
	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

type conditionResult struct {
	Condition string   `json:"condition"`
	Platforms []string `json:"platforms"`
	Targets   []string `json:"targets,omitempty"`
	Compiled  *bool    `json:"compiled,omitempty"`
}

func newPreprocCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		targets    []string
	)

	cmd := &cobra.Command{
		Use:   "preproc <node-file>",
		Short: "Evaluate a preprocessor condition to its platform set",
		Long: `Evaluates the condition of a #If directive, stored as a single expression
node, to the set of platforms on which the guarded code is compiled.
With --platform the result is also checked against the given targets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := syntax.LoadNode(args[0])
			if err != nil {
				return err
			}
			e := expr.Build(n)
			if err := preproc.Validate(e); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			set := preproc.Evaluate(e)

			result := conditionResult{
				Condition: expr.Format(e),
				Platforms: set.Names(),
			}
			if cmd.Flags().Changed("platform") {
				target, err := preproc.ParseSet(targets)
				if err != nil {
					return err
				}
				compiled := !set.Intersect(target).IsEmpty()
				result.Targets = target.Names()
				result.Compiled = &compiled
			}
			a.logger.Debug("evaluated condition", "condition", result.Condition, "platforms", set)

			w := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling JSON: %w", err)
				}
				fmt.Fprintln(w, string(data))
				return nil
			}

			fmt.Fprintf(w, "Condition: %s\n", result.Condition)
			fmt.Fprintf(w, "Platforms: %s\n", set)
			if result.Compiled != nil {
				fmt.Fprintf(w, "Targets: %v\n", result.Targets)
				fmt.Fprintf(w, "Compiled: %t\n", *result.Compiled)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringSliceVar(&targets, "platform", nil, "Target platform to check against, repeatable")
	return cmd
}
