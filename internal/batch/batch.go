// Package batch builds control flow graphs for many tree files in parallel.
package batch

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/l3aro/go-bsl-flow/internal/log"
	"github.com/l3aro/go-bsl-flow/internal/scanner"
	"github.com/l3aro/go-bsl-flow/pkg/cache"
	"github.com/l3aro/go-bsl-flow/pkg/cfg"
	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

// ModuleBody names the report entry for module-level statements.
const ModuleBody = "<module>"

// MethodReport summarizes the graph of one method.
type MethodReport struct {
	Name                 string           `json:"name"`
	Blocks               int              `json:"blocks"`
	Edges                int              `json:"edges"`
	CyclomaticComplexity int              `json:"cyclomatic_complexity"`
	UnreachableBlocks    int              `json:"unreachable_blocks"`
	Diagnostics          []cfg.Diagnostic `json:"diagnostics,omitempty"`
	Error                string           `json:"error,omitempty"`
}

// Report is the outcome for one tree file. Error is set when the file could
// not be read or decoded; per-method failures stay in Methods.
type Report struct {
	Path    string         `json:"path"`
	Digest  string         `json:"digest,omitempty"`
	Module  string         `json:"module,omitempty"`
	Methods []MethodReport `json:"methods"`
	Cached  bool           `json:"cached,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// CachedFile is what the cache keeps per file digest and option set.
type CachedFile struct {
	Module  string         `msgpack:"module"`
	Methods []MethodReport `msgpack:"methods"`
}

// Failed reports whether the file or any of its methods failed.
func (r *Report) Failed() bool {
	if r.Error != "" {
		return true
	}
	for _, m := range r.Methods {
		if m.Error != "" {
			return true
		}
	}
	return false
}

// Options configures a batch run.
type Options struct {
	Analysis cfg.Options
	// Workers bounds concurrent files. Zero means runtime.NumCPU.
	Workers int
	Logger  log.Logger
	// OnFileDone is called after each file, from the worker goroutine.
	OnFileDone func(Report)
	// Cache, when set, skips files whose contents were already analyzed
	// with the same options.
	Cache *cache.Cache[CachedFile]
}

// Summary aggregates a run.
type Summary struct {
	Files             int `json:"files"`
	Methods           int `json:"methods"`
	FailedFiles       int `json:"failed_files"`
	FailedMethods     int `json:"failed_methods"`
	UnreachableBlocks int `json:"unreachable_blocks"`
	Diagnostics       int `json:"diagnostics"`
}

// Run builds every method of every file. Reports come back in the order of
// files. Cancellation is checked between files; a canceled run returns the
// context error together with the reports finished so far.
func Run(ctx context.Context, files []scanner.FileInfo, opts Options) ([]Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	reports := make([]Report, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = analyzeFile(f, opts, logger.With("file", f.Path))
			if opts.OnFileDone != nil {
				opts.OnFileDone(reports[i])
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return reports, fmt.Errorf("batch canceled: %w", err)
	}
	return reports, nil
}

func analyzeFile(f scanner.FileInfo, opts Options, logger log.Logger) Report {
	report := Report{Path: f.Path}

	data, err := os.ReadFile(f.FullPath)
	if err != nil {
		report.Error = fmt.Sprintf("reading tree file: %v", err)
		logger.Warn("skipping file", "error", err)
		return report
	}
	report.Digest = Digest(data)

	key := cacheKey(report.Digest, opts.Analysis)
	if opts.Cache != nil {
		if hit, ok := opts.Cache.Get(key); ok {
			report.Module = hit.Module
			report.Methods = hit.Methods
			report.Cached = true
			logger.Debug("cache hit", "digest", report.Digest)
			return report
		}
	}

	file, err := syntax.Parse(data)
	if err != nil {
		report.Error = err.Error()
		logger.Warn("skipping file", "error", err)
		return report
	}
	report.Module = file.Module

	builder := cfg.NewBuilder(opts.Analysis)
	if file.Body != nil {
		report.Methods = append(report.Methods, analyzeMethod(builder, ModuleBody, file.Body, logger))
	}
	for _, m := range file.Methods {
		report.Methods = append(report.Methods, analyzeMethod(builder, m.Name, m.Body, logger))
	}
	logger.Debug("file done", "methods", len(report.Methods))
	if opts.Cache != nil {
		opts.Cache.Set(key, CachedFile{Module: report.Module, Methods: report.Methods})
	}
	return report
}

// cacheKey ties a digest to the options that shape the graph.
func cacheKey(digest string, opts cfg.Options) string {
	return fmt.Sprintf("%s:%t%t%t:%d", digest,
		opts.ProduceLoopIterations, opts.ProducePreprocessorConditions, opts.DetermineAdjacentDeadCode,
		uint16(opts.Platforms))
}

func analyzeMethod(b *cfg.Builder, name string, body *syntax.Node, logger log.Logger) MethodReport {
	mr := MethodReport{Name: name}
	g, err := b.Build(body)
	if err != nil {
		mr.Error = err.Error()
		logger.Warn("graph build failed", "method", name, "error", err)
		return mr
	}
	mr.Blocks = len(g.BasicBlocks())
	mr.Edges = len(g.Edges())
	mr.CyclomaticComplexity = g.CyclomaticComplexity()
	mr.UnreachableBlocks = len(g.UnreachableBlocks())
	mr.Diagnostics = g.Diagnostics()
	logger.Debug("built graph", "method", name, "blocks", mr.Blocks, "complexity", mr.CyclomaticComplexity)
	return mr
}

// Digest returns the hex BLAKE3 hash of a tree file's contents.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Summarize totals a set of reports.
func Summarize(reports []Report) Summary {
	var s Summary
	for _, r := range reports {
		if r.Path == "" {
			continue
		}
		s.Files++
		if r.Error != "" {
			s.FailedFiles++
		}
		for _, m := range r.Methods {
			s.Methods++
			if m.Error != "" {
				s.FailedMethods++
			}
			s.UnreachableBlocks += m.UnreachableBlocks
			s.Diagnostics += len(m.Diagnostics)
		}
	}
	return s
}
