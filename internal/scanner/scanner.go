// Package scanner finds exported BSL syntax trees under a directory. It
// respects .bslflowignore files with gitignore-style patterns.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo represents information about a discovered tree file.
type FileInfo struct {
	Path     string // Relative path from root
	FullPath string // Absolute path
	Format   string // yaml or json
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	DefaultExcludes []string // Directory names never entered
	IgnoreFileName  string   // Name of the ignore file (default: .bslflowignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".bslflowignore",
		DefaultExcludes: []string{
			".git",
			".hg",
			".svn",
			"node_modules",
			"vendor",
			"out",
		},
	}
}

// Scanner walks a directory tree.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = ".bslflowignore"
	}
	return &Scanner{opts: opts}
}

// Scan returns every tree file under root, sorted by path. A root that is a
// file is returned as is when it has a tree extension.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	st, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if !st.IsDir() {
		format := DetectFormat(filepath.Ext(absRoot))
		if format == "" {
			return nil, fmt.Errorf("%s is not a syntax tree file", root)
		}
		return []FileInfo{{Path: filepath.Base(absRoot), FullPath: absRoot, Format: format, Size: st.Size()}}, nil
	}

	var (
		files []FileInfo
		lists []*IgnoreList
	)
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if rel == "." {
			list, err := s.loadIgnoreList(path, "")
			if err != nil {
				return err
			}
			if list != nil {
				lists = append(lists, list)
			}
			return nil
		}

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isDefaultExcluded(d.Name()) || Ignored(lists, rel, true) {
				return filepath.SkipDir
			}
			list, err := s.loadIgnoreList(path, rel)
			if err != nil {
				return err
			}
			if list != nil {
				lists = append(lists, list)
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		format := DetectFormat(filepath.Ext(path))
		if format == "" || Ignored(lists, rel, false) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:     rel,
			FullPath: path,
			Format:   format,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnoreList reads the ignore file in dir, if any.
func (s *Scanner) loadIgnoreList(dir, base string) (*IgnoreList, error) {
	ignorePath := filepath.Join(dir, s.opts.IgnoreFileName)
	f, err := os.Open(ignorePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}
	defer f.Close()

	list, err := ReadIgnoreList(base, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ignorePath, err)
	}
	if list.Len() == 0 {
		return nil, nil
	}
	return list, nil
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}
