package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-bsl-flow/internal/batch"
	"github.com/l3aro/go-bsl-flow/pkg/cfg"
	"github.com/l3aro/go-bsl-flow/pkg/preproc"
	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

func newCfgCmd(a *app) *cobra.Command {
	var (
		format     string
		jsonOutput bool
		noLoops    bool
		noPreproc  bool
		deadCode   bool
		platforms  []string
	)

	cmd := &cobra.Command{
		Use:   "cfg <tree-file> [method]",
		Short: "Build the control flow graph of a method",
		Long: `Builds the control flow graph (CFG) of one method of an exported syntax tree.
Without a method name the only method of the file is used, or the module body
when the file has no methods.

Outputs blocks, edges, and cyclomatic complexity as text, JSON, YAML,
msgpack, or Graphviz DOT.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			file, err := syntax.LoadFile(path)
			if err != nil {
				return err
			}

			var methodName string
			if len(args) == 2 {
				methodName = args[1]
			}
			name, body, err := selectBody(file, methodName)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			opts, err := a.cfg.AnalysisOptions()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("no-loop-iterations") {
				opts.ProduceLoopIterations = !noLoops
			}
			if flags.Changed("no-preprocessor") {
				opts.ProducePreprocessorConditions = !noPreproc
			}
			if flags.Changed("dead-code") {
				opts.DetermineAdjacentDeadCode = deadCode
			}
			if flags.Changed("platform") {
				set, err := preproc.ParseSet(platforms)
				if err != nil {
					return err
				}
				opts.Platforms = set
			}

			outFormat := a.cfg.OutputFormat
			if flags.Changed("format") {
				outFormat = format
			}
			if jsonOutput {
				outFormat = string(cfg.FormatJSON)
			}
			f, err := cfg.ParseFormat(outFormat)
			if err != nil {
				return err
			}

			g, err := cfg.Build(body, opts)
			if err != nil {
				return fmt.Errorf("%s: method %s: %w", path, name, err)
			}
			for _, d := range g.Diagnostics() {
				a.logger.Warn(d.Message, "method", name, "at", d.Span)
			}
			a.logger.Debug("built graph", "method", name, "blocks", len(g.BasicBlocks()), "edges", len(g.Edges()))

			return cfg.Encode(cmd.OutOrStdout(), g.Info(name), f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format ("+formatNames()+")")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().BoolVar(&noLoops, "no-loop-iterations", false, "Do not add loop back edges")
	cmd.Flags().BoolVar(&noPreproc, "no-preprocessor", false, "Keep every #If arm instead of evaluating conditions")
	cmd.Flags().BoolVar(&deadCode, "dead-code", false, "Link jumps to the code after them and mark it unreachable")
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "Target platform, repeatable (e.g. Server, ThinClient)")
	return cmd
}

// selectBody picks the statements to analyze from a tree file.
func selectBody(file *syntax.File, methodName string) (string, *syntax.Node, error) {
	if methodName != "" {
		m, err := file.Method(methodName)
		if err != nil {
			if errors.Is(err, syntax.ErrMethodNotFound) {
				if s := suggestName(methodName, file.MethodNames()); s != "" {
					return "", nil, fmt.Errorf("%w\nDid you mean: %s?", err, s)
				}
			}
			return "", nil, err
		}
		return m.Name, m.Body, nil
	}

	switch {
	case len(file.Methods) == 1:
		return file.Methods[0].Name, file.Methods[0].Body, nil
	case len(file.Methods) == 0 && file.Body != nil:
		return batch.ModuleBody, file.Body, nil
	case len(file.Methods) == 0:
		return "", nil, errors.New("file has no methods and no module body")
	}
	return "", nil, fmt.Errorf("file has %d methods, name one of: %s",
		len(file.Methods), strings.Join(file.MethodNames(), ", "))
}

// suggestName returns the closest candidate by fuzzy ranking, or "".
func suggestName(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func formatNames() string {
	names := make([]string, 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		names = append(names, string(f))
	}
	return strings.Join(names, "|")
}
