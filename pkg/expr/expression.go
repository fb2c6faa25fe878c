// Package expr reconstructs precedence-correct expression trees from the flat
// operand/operator sequences produced by the BSL parser.
package expr

import "github.com/l3aro/go-bsl-flow/pkg/syntax"

// Expression is a node of an expression tree. Trees are immutable once built
// and no node is shared between trees.
type Expression interface {
	// Span is the source range the node was built from.
	Span() syntax.Span
	// Source is the syntax node the expression was built from. May be nil.
	Source() *syntax.Node
	expression()
}

type node struct {
	src *syntax.Node
}

func (n node) Source() *syntax.Node { return n.src }
func (n node) Span() syntax.Span    { return n.src.Span() }
func (node) expression()            {}

// LiteralKind tells literal values apart.
type LiteralKind int

const (
	LiteralUnknown LiteralKind = iota
	LiteralString
	LiteralNumber
	LiteralDate
	LiteralBoolean
	LiteralNull
	LiteralUndefined
	LiteralPreprocessorSymbol
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "string"
	case LiteralNumber:
		return "number"
	case LiteralDate:
		return "date"
	case LiteralBoolean:
		return "boolean"
	case LiteralNull:
		return "null"
	case LiteralUndefined:
		return "undefined"
	case LiteralPreprocessorSymbol:
		return "preprocessor_symbol"
	default:
		return "unknown"
	}
}

type Literal struct {
	node
	Kind  LiteralKind
	Value string
}

type Identifier struct {
	node
	Name string
}

type UnaryOp struct {
	node
	Op      Operator
	Operand Expression
}

type BinaryOp struct {
	node
	Op          Operator
	Left, Right Expression
}

// ConstructorCall is a New expression. For the dynamic form New("T", args)
// TypeName is empty and TypeExpr holds the first argument.
type ConstructorCall struct {
	node
	TypeName string
	TypeExpr Expression
	Args     []Expression
}

// IsStatic reports whether the type name was written literally.
func (c *ConstructorCall) IsStatic() bool {
	return c.TypeExpr == nil
}

// MethodCall is a global call, or the right side of a DEREFERENCE when a
// method is called on an object.
type MethodCall struct {
	node
	Name string
	Args []Expression
}

// Ternary is ?(Cond, Then, Else).
type Ternary struct {
	node
	Cond, Then, Else Expression
}

// SkippedArgument stands for an omitted positional argument: f(a, , c).
type SkippedArgument struct {
	node
}

// ErrorExpression replaces input that could not be reduced to a valid tree.
type ErrorExpression struct {
	node
	// Reason is a short description for diagnostics. May be empty.
	Reason string
}

// NewError returns an ErrorExpression spanning src.
func NewError(src *syntax.Node) *ErrorExpression {
	return &ErrorExpression{node: node{src}}
}

// NewLiteral returns a literal built from src.
func NewLiteral(kind LiteralKind, value string, src *syntax.Node) *Literal {
	return &Literal{node: node{src}, Kind: kind, Value: value}
}

// NewIdentifier returns an identifier built from src.
func NewIdentifier(name string, src *syntax.Node) *Identifier {
	return &Identifier{node: node{src}, Name: name}
}

// NewUnary returns op applied to operand.
func NewUnary(op Operator, operand Expression, src *syntax.Node) *UnaryOp {
	return &UnaryOp{node: node{src}, Op: op, Operand: operand}
}

// NewBinary returns left op right.
func NewBinary(op Operator, left, right Expression, src *syntax.Node) *BinaryOp {
	return &BinaryOp{node: node{src}, Op: op, Left: left, Right: right}
}

// ContainsError reports whether any node of the tree is an ErrorExpression.
func ContainsError(e Expression) bool {
	found := false
	Walk(e, func(n Expression) bool {
		if _, ok := n.(*ErrorExpression); ok {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits the tree in pre-order until fn returns false.
func Walk(e Expression, fn func(Expression) bool) {
	walk(e, fn)
}

func walk(e Expression, fn func(Expression) bool) bool {
	if e == nil {
		return true
	}
	if !fn(e) {
		return false
	}
	switch n := e.(type) {
	case *UnaryOp:
		return walk(n.Operand, fn)
	case *BinaryOp:
		return walk(n.Left, fn) && walk(n.Right, fn)
	case *ConstructorCall:
		if !walk(n.TypeExpr, fn) {
			return false
		}
		return walkAll(n.Args, fn)
	case *MethodCall:
		return walkAll(n.Args, fn)
	case *Ternary:
		return walk(n.Cond, fn) && walk(n.Then, fn) && walk(n.Else, fn)
	}
	return true
}

func walkAll(list []Expression, fn func(Expression) bool) bool {
	for _, a := range list {
		if !walk(a, fn) {
			return false
		}
	}
	return true
}

// Span covers the operator and its operand.
func (u *UnaryOp) Span() syntax.Span {
	s := u.src.Span()
	if u.Operand != nil {
		s = s.Cover(u.Operand.Span())
	}
	return s
}

// Span covers both operands and the operator between them.
func (b *BinaryOp) Span() syntax.Span {
	s := b.src.Span()
	if b.Left != nil {
		s = s.Cover(b.Left.Span())
	}
	if b.Right != nil {
		s = s.Cover(b.Right.Span())
	}
	return s
}
