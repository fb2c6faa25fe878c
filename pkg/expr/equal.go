package expr

import "strings"

// Equal reports whether a and b are structurally identical: same node kinds,
// operators, literal values and names. Names and keyword literals compare
// case-insensitively, string literals exactly. An ErrorExpression equals
// nothing, and neither do member accesses (a.b, a[b]), since each access
// may observe a different value.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isError(a) || isError(b) {
		return false
	}
	if a == b {
		return true
	}

	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)
		if !ok || x.Kind != y.Kind {
			return false
		}
		if x.Kind == LiteralString {
			return x.Value == y.Value
		}
		return strings.EqualFold(x.Value, y.Value)
	case *Identifier:
		y, ok := b.(*Identifier)
		return ok && strings.EqualFold(x.Name, y.Name)
	case *UnaryOp:
		y, ok := b.(*UnaryOp)
		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		if !ok || x.Op != y.Op || x.Op == OpDereference || x.Op == OpIndexAccess {
			return false
		}
		return Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Ternary:
		y, ok := b.(*Ternary)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.Then, y.Then) && Equal(x.Else, y.Else)
	case *SkippedArgument:
		_, ok := b.(*SkippedArgument)
		return ok
	case *MethodCall:
		y, ok := b.(*MethodCall)
		return ok && strings.EqualFold(x.Name, y.Name) && equalArgs(x.Args, y.Args)
	case *ConstructorCall:
		y, ok := b.(*ConstructorCall)
		return ok && strings.EqualFold(x.TypeName, y.TypeName) &&
			Equal(x.TypeExpr, y.TypeExpr) && equalArgs(x.Args, y.Args)
	}
	return false
}

func isError(e Expression) bool {
	_, ok := e.(*ErrorExpression)
	return ok
}

func equalArgs(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// popularDivisors are literal dividends that commonly divide by themselves
// in unit conversions, e.g. 60 / 60.
var popularDivisors = map[string]bool{"60": true, "1024": true}

// IdenticalOperands returns the binary operations of e whose two operands
// are Equal, such as A = A or B - B. Addition and multiplication are left
// out since X + X and X * X are meaningful.
func IdenticalOperands(e Expression) []*BinaryOp {
	var out []*BinaryOp
	Walk(e, func(n Expression) bool {
		bin, ok := n.(*BinaryOp)
		if !ok {
			return true
		}
		switch bin.Op {
		case OpAdd, OpMultiply, OpDereference, OpIndexAccess:
			return true
		}
		if !Equal(bin.Left, bin.Right) {
			return true
		}
		if lit, ok := bin.Left.(*Literal); ok && bin.Op == OpDivide &&
			lit.Kind == LiteralNumber && popularDivisors[lit.Value] {
			return true
		}
		out = append(out, bin)
		return true
	})
	return out
}
