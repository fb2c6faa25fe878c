package syntax

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMethodNotFound is returned when a tree file has no method of the
// requested name.
var ErrMethodNotFound = errors.New("method not found")

// Method is a single procedure or function body.
type Method struct {
	Name string `json:"name" yaml:"name"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
	Body *Node  `json:"body" yaml:"body"`
}

// File is a serialized module tree: the module-level statements plus each
// method body. YAML and JSON documents are both accepted.
type File struct {
	Module  string   `json:"module,omitempty" yaml:"module,omitempty"`
	Body    *Node    `json:"body,omitempty" yaml:"body,omitempty"`
	Methods []Method `json:"methods,omitempty" yaml:"methods,omitempty"`
}

// Load decodes a tree file from r.
func Load(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}
	return Parse(data)
}

// Parse decodes a tree file from memory.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	return &f, nil
}

// LoadFile reads and decodes the tree file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree file %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing tree file %s: %w", path, err)
	}
	return f, nil
}

// LoadNode reads a file holding a single bare node, such as one expression.
func LoadNode(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading node file %s: %w", path, err)
	}
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parsing node file %s: %w", path, err)
	}
	if n.Type == "" {
		return nil, fmt.Errorf("node file %s: missing node type", path)
	}
	return &n, nil
}

// Method looks up a method by name. BSL identifiers are case-insensitive.
func (f *File) Method(name string) (*Method, error) {
	for i := range f.Methods {
		if strings.EqualFold(f.Methods[i].Name, name) {
			return &f.Methods[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrMethodNotFound)
}

// MethodNames returns the sorted method names.
func (f *File) MethodNames() []string {
	names := make([]string, 0, len(f.Methods))
	for _, m := range f.Methods {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}
