package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-bsl-flow/internal/batch"
	"github.com/l3aro/go-bsl-flow/internal/log"
	"github.com/l3aro/go-bsl-flow/internal/scanner"
	"github.com/l3aro/go-bsl-flow/pkg/cache"
)

type batchOutput struct {
	Summary batch.Summary  `json:"summary"`
	Reports []batch.Report `json:"reports"`
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		workers    int
		cachePath  string
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Build graphs for every tree file under a directory",
		Long: `Scans a directory for exported syntax trees (.yaml, .yml, .json), builds the
control flow graph of every method in parallel, and prints a summary.
Files matched by .bslflowignore are skipped. With --cache, reports of files
whose contents and options are unchanged are reused from the cache file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := scanner.DefaultOptions()
			opts.IgnoreFileName = a.cfg.IgnoreFile
			files, err := scanner.New(opts).Scan(args[0])
			if err != nil {
				return err
			}
			a.logger.Info("scanned", "root", args[0], "files", len(files))

			analysis, err := a.cfg.AnalysisOptions()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}

			if !cmd.Flags().Changed("cache") {
				cachePath = a.cfg.CacheFile
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			runOpts := batch.Options{
				Analysis: analysis,
				Workers:  workers,
				Logger:   a.logger,
			}
			if cachePath != "" {
				runOpts.Cache = cache.New[batch.CachedFile](cache.Options{MaxSize: a.cfg.CacheSize})
				if err := runOpts.Cache.LoadFile(cachePath); err != nil {
					a.logger.Warn("ignoring unreadable cache", "path", cachePath, "error", err)
					runOpts.Cache.Clear()
				}
			}
			var progress *log.Progress
			if !jsonOutput && log.IsTTY() {
				progress = log.NewProgress(os.Stderr, "building graphs", len(files))
				progress.Start(100 * time.Millisecond)
				runOpts.OnFileDone = func(batch.Report) { progress.Increment() }
			}

			start := time.Now()
			reports, runErr := batch.Run(ctx, files, runOpts)
			progress.Stop()
			summary := batch.Summarize(reports)
			a.logger.Debug("batch finished", "elapsed", time.Since(start).Round(time.Millisecond))

			if runOpts.Cache != nil {
				stats := runOpts.Cache.Stats()
				a.logger.Debug("cache", "hits", stats.Hits, "misses", stats.Misses, "entries", runOpts.Cache.Len())
				if err := runOpts.Cache.SaveFile(cachePath); err != nil {
					a.logger.Warn("saving cache failed", "path", cachePath, "error", err)
				}
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(batchOutput{Summary: summary, Reports: reports}, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling JSON: %w", err)
				}
				fmt.Fprintln(w, string(data))
			} else {
				printBatch(w, reports, summary)
			}

			if runErr != nil {
				return runErr
			}
			if summary.FailedFiles > 0 || summary.FailedMethods > 0 {
				return fmt.Errorf("%d files and %d methods failed", summary.FailedFiles, summary.FailedMethods)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files built in parallel (0 = one per CPU)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "Report cache file reused across runs")
	return cmd
}

// printBatch prints one line per file plus failures and totals.
func printBatch(w io.Writer, reports []batch.Report, s batch.Summary) {
	for _, r := range reports {
		if r.Path == "" {
			continue
		}
		if r.Error != "" {
			fmt.Fprintf(w, "FAIL %s: %s\n", r.Path, r.Error)
			continue
		}
		complexity := 0
		for _, m := range r.Methods {
			complexity += m.CyclomaticComplexity
		}
		fmt.Fprintf(w, "ok   %s (%d methods, complexity %d)\n", r.Path, len(r.Methods), complexity)
		for _, m := range r.Methods {
			if m.Error != "" {
				fmt.Fprintf(w, "  FAIL %s: %s\n", m.Name, m.Error)
			}
			for _, d := range m.Diagnostics {
				fmt.Fprintf(w, "  %s %s: %s\n", m.Name, d.Span, d.Message)
			}
			if m.UnreachableBlocks > 0 {
				fmt.Fprintf(w, "  %s: %d unreachable blocks\n", m.Name, m.UnreachableBlocks)
			}
		}
	}
	fmt.Fprintf(w, "\n%d files, %d methods, %d failed files, %d failed methods, %d unreachable blocks, %d diagnostics\n",
		s.Files, s.Methods, s.FailedFiles, s.FailedMethods, s.UnreachableBlocks, s.Diagnostics)
}
