package cfg

import (
	"github.com/l3aro/go-bsl-flow/pkg/expr"
	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

// Vertex is a node of a ControlFlowGraph: *Entry, *Exit, *BasicBlock,
// *Branching or *Label.
type Vertex interface {
	ID() string
	Type() VertexType
}

type vertexBase struct {
	id string
}

func (v *vertexBase) ID() string { return v.id }

type Entry struct{ vertexBase }

func (*Entry) Type() VertexType { return VertexEntry }

type Exit struct{ vertexBase }

func (*Exit) Type() VertexType { return VertexExit }

// BasicBlock holds straight-line statements.
type BasicBlock struct {
	vertexBase
	Statements []*syntax.Node
	// Unreachable is set when the block only follows a jump in the same
	// statement sequence. Only computed with DetermineAdjacentDeadCode.
	Unreachable bool
}

func (*BasicBlock) Type() VertexType { return VertexBasicBlock }

// IsEmpty reports whether the block holds no statements.
func (b *BasicBlock) IsEmpty() bool { return len(b.Statements) == 0 }

// Span covers all statements of the block.
func (b *BasicBlock) Span() syntax.Span {
	var s syntax.Span
	for _, st := range b.Statements {
		s = s.Cover(st.Span())
	}
	return s
}

// Branching is a decision point: an If or ElsIf condition, a loop header, a
// Try, or a preprocessor #If. Condition is nil for Try.
type Branching struct {
	vertexBase
	Kind      BranchKind
	Condition expr.Expression
	Node      *syntax.Node
}

func (*Branching) Type() VertexType { return VertexBranch }

// Label is the target of Goto.
type Label struct {
	vertexBase
	Name string
	Node *syntax.Node
}

func (*Label) Type() VertexType { return VertexLabel }
