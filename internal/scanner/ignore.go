package scanner

import (
	"bufio"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreRule is one line of a .bslflowignore file, in gitignore syntax.
type IgnoreRule struct {
	raw      string
	negate   bool // "!pattern"
	dirOnly  bool // "pattern/"
	anchored bool // "/pattern" or "a/b"
	segments []string
}

// ParseIgnoreRule parses one ignore line. Blank lines and comments yield
// ok == false.
func ParseIgnoreRule(line string) (rule IgnoreRule, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return IgnoreRule{}, false
	}
	rule.raw = line
	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		rule.anchored = true
		line = strings.TrimLeft(line, "/")
	} else if strings.Contains(line, "/") {
		rule.anchored = true
	}
	if line == "" {
		return IgnoreRule{}, false
	}
	rule.segments = strings.Split(line, "/")
	if len(rule.segments) > 0 && rule.segments[0] == "**" {
		rule.anchored = false
		rule.segments = rule.segments[1:]
	}
	return rule, len(rule.segments) > 0
}

// String returns the rule as written.
func (r IgnoreRule) String() string { return r.raw }

// IsNegation reports whether the rule re-includes what it matches.
func (r IgnoreRule) IsNegation() bool { return r.negate }

// Match reports whether rel, a slash-separated path relative to the ignore
// file's directory, or any directory above it matches the rule.
func (r IgnoreRule) Match(rel string, isDir bool) bool {
	parts := strings.Split(path.Clean(filepath.ToSlash(rel)), "/")
	for end := len(parts); end >= 1; end-- {
		if end == len(parts) && r.dirOnly && !isDir {
			continue
		}
		if r.matchPath(parts[:end]) {
			return true
		}
	}
	return false
}

func (r IgnoreRule) matchPath(parts []string) bool {
	if r.anchored {
		return matchSegments(r.segments, parts)
	}
	for i := range parts {
		if matchSegments(r.segments, parts[i:]) {
			return true
		}
	}
	return false
}

// matchSegments matches glob segments against path segments; "**" spans any
// number of directories.
func matchSegments(pattern, parts []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for i := 0; i <= len(parts); i++ {
				if matchSegments(pattern[1:], parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 {
			return false
		}
		if ok, err := path.Match(pattern[0], parts[0]); err != nil || !ok {
			return false
		}
		pattern, parts = pattern[1:], parts[1:]
	}
	return len(parts) == 0
}

// IgnoreList is the rules of one ignore file, bound to the directory that
// holds it.
type IgnoreList struct {
	base  string
	rules []IgnoreRule
}

// ReadIgnoreList reads rules from r. base is the slash-separated directory
// of the ignore file relative to the scan root, "" for the root itself.
func ReadIgnoreList(base string, r io.Reader) (*IgnoreList, error) {
	list := &IgnoreList{base: base}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if rule, ok := ParseIgnoreRule(sc.Text()); ok {
			list.rules = append(list.rules, rule)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Len returns the number of rules.
func (l *IgnoreList) Len() int { return len(l.rules) }

// verdict applies the rules to rel in order. The last matching rule wins;
// decided is false when no rule matches.
func (l *IgnoreList) verdict(rel string, isDir bool) (ignored, decided bool) {
	if l.base != "" {
		if !strings.HasPrefix(rel, l.base+"/") {
			return false, false
		}
		rel = strings.TrimPrefix(rel, l.base+"/")
	}
	for _, rule := range l.rules {
		if rule.Match(rel, isDir) {
			ignored, decided = !rule.negate, true
		}
	}
	return ignored, decided
}

// Ignored reports whether rel is excluded by the stack of lists. Deeper
// lists come later and override shallower ones.
func Ignored(lists []*IgnoreList, rel string, isDir bool) bool {
	ignored := false
	for _, l := range lists {
		if v, ok := l.verdict(rel, isDir); ok {
			ignored = v
		}
	}
	return ignored
}
