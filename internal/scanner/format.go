package scanner

import (
	"path/filepath"
	"strings"
)

// Tree file encodings understood by syntax.LoadFile.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

var formatMap = map[string]string{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".json": FormatJSON,
}

// DetectFormat returns the tree encoding for a file extension, or "" when
// the extension does not hold a syntax tree.
func DetectFormat(ext string) string {
	return formatMap[strings.ToLower(ext)]
}

// IsTreeFile reports whether name looks like an exported syntax tree.
func IsTreeFile(name string) bool {
	return DetectFormat(filepath.Ext(name)) != ""
}
