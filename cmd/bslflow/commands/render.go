package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-bsl-flow/pkg/cfg"
)

func newRenderCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render <cfg-file>",
		Short: "Re-encode a saved control flow graph",
		Long: `Reads a graph saved by "bslflow cfg" as JSON, YAML, or msgpack and writes it
in another format, e.g. DOT for Graphviz. The input format follows the file
extension (.json, .yaml, .yml, .msgpack).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			in, err := cfg.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			outFormat := a.cfg.OutputFormat
			if cmd.Flags().Changed("format") {
				outFormat = format
			}
			out, err := cfg.ParseFormat(outFormat)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := cfg.Decode(f, in)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			a.logger.Debug("decoded graph", "method", info.FunctionName, "blocks", len(info.Blocks))
			return cfg.Encode(cmd.OutOrStdout(), info, out)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format ("+formatNames()+")")
	return cmd
}
