package expr

import (
	"strings"
)

// Format renders the tree with every binary and unary node parenthesised, so
// the shape of the tree is visible: a + b * c prints as (a + (b * c)).
func Format(e Expression) string {
	var sb strings.Builder
	format(&sb, e)
	return sb.String()
}

func format(sb *strings.Builder, e Expression) {
	switch n := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Literal:
		sb.WriteString(n.Value)
	case *Identifier:
		sb.WriteString(n.Name)
	case *UnaryOp:
		sb.WriteString("(")
		sb.WriteString(n.Op.Symbol())
		if n.Op == OpNot {
			sb.WriteString(" ")
		}
		format(sb, n.Operand)
		sb.WriteString(")")
	case *BinaryOp:
		switch n.Op {
		case OpDereference:
			format(sb, n.Left)
			sb.WriteString(".")
			format(sb, n.Right)
		case OpIndexAccess:
			format(sb, n.Left)
			sb.WriteString("[")
			format(sb, n.Right)
			sb.WriteString("]")
		default:
			sb.WriteString("(")
			format(sb, n.Left)
			sb.WriteString(" ")
			sb.WriteString(n.Op.Symbol())
			sb.WriteString(" ")
			format(sb, n.Right)
			sb.WriteString(")")
		}
	case *ConstructorCall:
		sb.WriteString("New ")
		if n.IsStatic() {
			sb.WriteString(n.TypeName)
			sb.WriteString("(")
			formatList(sb, n.Args)
		} else {
			sb.WriteString("(")
			format(sb, n.TypeExpr)
			if len(n.Args) > 0 {
				sb.WriteString(", ")
				formatList(sb, n.Args)
			}
		}
		sb.WriteString(")")
	case *MethodCall:
		sb.WriteString(n.Name)
		sb.WriteString("(")
		formatList(sb, n.Args)
		sb.WriteString(")")
	case *Ternary:
		sb.WriteString("?(")
		formatList(sb, []Expression{n.Cond, n.Then, n.Else})
		sb.WriteString(")")
	case *SkippedArgument:
	case *ErrorExpression:
		sb.WriteString("<error>")
	}
}

func formatList(sb *strings.Builder, list []Expression) {
	for i, a := range list {
		if i > 0 {
			sb.WriteString(", ")
		}
		format(sb, a)
	}
}
