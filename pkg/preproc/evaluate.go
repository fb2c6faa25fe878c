package preproc

import (
	"fmt"

	"github.com/l3aro/go-bsl-flow/pkg/expr"
)

// ContractViolation is the panic value raised when Evaluate is handed an
// expression that is not boolean algebra over platform symbols.
type ContractViolation struct {
	Expr   expr.Expression
	Reason string
}

func (c *ContractViolation) Error() string {
	return fmt.Sprintf("preprocessor condition at %s: %s", c.Expr.Span(), c.Reason)
}

// Evaluate returns the platforms on which a preprocessor condition holds.
//
// The condition must consist of preprocessor symbol literals combined with
// NOT, AND and OR. Anything else is an integration bug, not a problem with the
// analysed code, and Evaluate panics with a *ContractViolation. Use Validate
// first when the shape is not known to be right.
func Evaluate(e expr.Expression) Set {
	switch n := e.(type) {
	case *expr.Literal:
		if n.Kind != expr.LiteralPreprocessorSymbol {
			panic(&ContractViolation{Expr: e, Reason: "literal is not a platform symbol"})
		}
		sym := SymbolFor(n.Value)
		if sym == Client {
			return ClientConstraints
		}
		return NewSet(sym)
	case *expr.UnaryOp:
		if n.Op != expr.OpNot {
			panic(&ContractViolation{Expr: e, Reason: "unexpected unary " + n.Op.String()})
		}
		return DefaultConstraints.Difference(Evaluate(n.Operand))
	case *expr.BinaryOp:
		switch n.Op {
		case expr.OpAnd:
			return Evaluate(n.Left).Intersect(Evaluate(n.Right))
		case expr.OpOr:
			return Evaluate(n.Left).Union(Evaluate(n.Right))
		}
		panic(&ContractViolation{Expr: e, Reason: "unexpected operator " + n.Op.String()})
	case nil:
		panic(&ContractViolation{Expr: &expr.ErrorExpression{}, Reason: "missing condition"})
	}
	panic(&ContractViolation{Expr: e, Reason: fmt.Sprintf("unexpected %T", e)})
}

// Validate reports whether Evaluate accepts e.
func Validate(e expr.Expression) error {
	ok := true
	var bad expr.Expression
	expr.Walk(e, func(n expr.Expression) bool {
		switch v := n.(type) {
		case *expr.Literal:
			ok = v.Kind == expr.LiteralPreprocessorSymbol
		case *expr.UnaryOp:
			ok = v.Op == expr.OpNot
		case *expr.BinaryOp:
			ok = v.Op == expr.OpAnd || v.Op == expr.OpOr
		default:
			ok = false
		}
		if !ok {
			bad = n
		}
		return ok
	})
	if e == nil {
		return fmt.Errorf("missing condition")
	}
	if !ok {
		return fmt.Errorf("unsupported %T in preprocessor condition at %s", bad, bad.Span())
	}
	return nil
}
