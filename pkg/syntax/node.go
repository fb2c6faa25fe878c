// Package syntax holds the parse tree handed over by an external BSL parser.
//
// The tree is deliberately generic: every node carries its grammar rule (or
// token kind for terminals), the source text it covers, its position and its
// children. Analysis packages switch on Type.
package syntax

import (
	"fmt"
	"strings"
)

// Span is a source range. Lines and columns are 1-based; a zero Span means
// the position is unknown.
type Span struct {
	StartLine   int `json:"start_line" yaml:"start_line" msgpack:"start_line"`
	StartColumn int `json:"start_column" yaml:"start_column" msgpack:"start_column"`
	EndLine     int `json:"end_line" yaml:"end_line" msgpack:"end_line"`
	EndColumn   int `json:"end_column" yaml:"end_column" msgpack:"end_column"`
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	if s.IsZero() {
		return "?"
	}
	if s.StartLine == s.EndLine {
		return fmt.Sprintf("%d:%d-%d", s.StartLine, s.StartColumn, s.EndColumn)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartColumn, s.EndLine, s.EndColumn)
}

// Cover returns the smallest span containing both s and o.
func (s Span) Cover(o Span) Span {
	if s.IsZero() {
		return o
	}
	if o.IsZero() {
		return s
	}
	out := s
	if o.StartLine < out.StartLine || (o.StartLine == out.StartLine && o.StartColumn < out.StartColumn) {
		out.StartLine, out.StartColumn = o.StartLine, o.StartColumn
	}
	if o.EndLine > out.EndLine || (o.EndLine == out.EndLine && o.EndColumn > out.EndColumn) {
		out.EndLine, out.EndColumn = o.EndLine, o.EndColumn
	}
	return out
}

// Node is a single parse tree node.
type Node struct {
	Type      string  `json:"type" yaml:"type"`
	Text      string  `json:"text,omitempty" yaml:"text,omitempty"`
	Line      int     `json:"line,omitempty" yaml:"line,omitempty"`
	Column    int     `json:"column,omitempty" yaml:"column,omitempty"`
	EndLine   int     `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndColumn int     `json:"end_column,omitempty" yaml:"end_column,omitempty"`
	Children  []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewNode creates a rule node with the given children.
func NewNode(typ string, children ...*Node) *Node {
	return &Node{Type: typ, Children: children}
}

// NewToken creates a terminal node.
func NewToken(typ, text string) *Node {
	return &Node{Type: typ, Text: text}
}

// At sets the node position and returns the node, for fluent construction.
func (n *Node) At(line, column, endLine, endColumn int) *Node {
	n.Line, n.Column, n.EndLine, n.EndColumn = line, column, endLine, endColumn
	return n
}

// WithText sets the node text and returns the node.
func (n *Node) WithText(text string) *Node {
	n.Text = text
	return n
}

// Span returns the node's own position. If the node carries none, the span is
// derived from its children.
func (n *Node) Span() Span {
	if n == nil {
		return Span{}
	}
	if n.Line > 0 {
		end, endCol := n.EndLine, n.EndColumn
		if end == 0 {
			end = n.Line
		}
		if endCol == 0 {
			endCol = n.Column + len([]rune(n.Text))
		}
		return Span{StartLine: n.Line, StartColumn: n.Column, EndLine: end, EndColumn: endCol}
	}
	var s Span
	for _, c := range n.Children {
		s = s.Cover(c.Span())
	}
	return s
}

// IsTerminal reports whether the node is a token (no children, upper-case kind).
func (n *Node) IsTerminal() bool {
	return len(n.Children) == 0 && n.Type != "" && n.Type == strings.ToUpper(n.Type)
}

// IsError reports whether the node marks a parser recovery point.
func (n *Node) IsError() bool {
	return n != nil && n.Type == KindError
}

// ChildByType returns the first direct child of the given type.
func (n *Node) ChildByType(typ string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Type == typ {
			return c
		}
	}
	return nil
}

// ChildrenByType returns all direct children of the given type.
func (n *Node) ChildrenByType(typ string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// HasErrorChild reports whether any direct child is an error node.
func (n *Node) HasErrorChild() bool {
	if n == nil {
		return false
	}
	for _, c := range n.Children {
		if c.IsError() {
			return true
		}
	}
	return false
}

// FirstTerminal returns the leftmost terminal in the subtree.
func (n *Node) FirstTerminal() *Node {
	if n == nil {
		return nil
	}
	if n.IsTerminal() {
		return n
	}
	for _, c := range n.Children {
		if t := c.FirstTerminal(); t != nil {
			return t
		}
	}
	return nil
}

// SourceText returns the node text, or the space-joined text of its terminals
// when the node has none of its own.
func (n *Node) SourceText() string {
	if n == nil {
		return ""
	}
	if n.Text != "" {
		return n.Text
	}
	var parts []string
	for _, c := range n.Children {
		if t := c.SourceText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
