package expr

import "github.com/l3aro/go-bsl-flow/pkg/syntax"

// Operator is a closed enumeration of the operators an expression tree can hold.
type Operator int

const (
	OpInvalid Operator = iota

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo

	OpAnd
	OpOr

	OpEqual
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual

	OpUnaryPlus
	OpUnaryMinus
	OpNot

	OpDereference
	OpIndexAccess
)

// Arity classifies operators by operand count.
type Arity int

const (
	Unary Arity = iota + 1
	Binary
)

func (a Arity) String() string {
	switch a {
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

type operatorInfo struct {
	name     string
	symbol   string
	priority int
	arity    Arity
}

// Lower priority binds tighter. An incoming operator reduces every stacked
// operator whose priority is lower or equal.
var operators = map[Operator]operatorInfo{
	OpDereference:    {"DEREFERENCE", ".", 0, Binary},
	OpIndexAccess:    {"INDEX_ACCESS", "[]", 0, Binary},
	OpUnaryPlus:      {"PLUS", "+", 1, Unary},
	OpUnaryMinus:     {"MINUS", "-", 1, Unary},
	OpMultiply:       {"MULTIPLY", "*", 2, Binary},
	OpDivide:         {"DIVIDE", "/", 2, Binary},
	OpModulo:         {"MODULO", "%", 2, Binary},
	OpAdd:            {"ADD", "+", 3, Binary},
	OpSubtract:       {"SUBTRACT", "-", 3, Binary},
	OpEqual:          {"EQUAL", "=", 4, Binary},
	OpNotEqual:       {"NOT_EQUAL", "<>", 4, Binary},
	OpLess:           {"LESS", "<", 4, Binary},
	OpLessOrEqual:    {"LESS_OR_EQUAL", "<=", 4, Binary},
	OpGreater:        {"GREATER", ">", 4, Binary},
	OpGreaterOrEqual: {"GREATER_OR_EQUAL", ">=", 4, Binary},
	OpNot:            {"NOT", "NOT", 5, Unary},
	OpAnd:            {"AND", "AND", 6, Binary},
	OpOr:             {"OR", "OR", 7, Binary},
}

// Priority returns the binding priority. Invalid operators get the loosest
// possible priority.
func (o Operator) Priority() int {
	if info, ok := operators[o]; ok {
		return info.priority
	}
	return int(^uint(0) >> 1)
}

// Arity returns whether the operator takes one or two operands.
func (o Operator) Arity() Arity {
	return operators[o].arity
}

// Symbol returns the operator as written in source.
func (o Operator) Symbol() string {
	return operators[o].symbol
}

func (o Operator) String() string {
	if info, ok := operators[o]; ok {
		return info.name
	}
	return "INVALID"
}

// binaryTokens maps upstream token kinds onto binary operators. This and
// unaryTokens are the only places that know the parser's token names.
var binaryTokens = map[string]Operator{
	syntax.TokenPlus:           OpAdd,
	syntax.TokenMinus:          OpSubtract,
	syntax.TokenMul:            OpMultiply,
	syntax.TokenQuotient:       OpDivide,
	syntax.TokenModulo:         OpModulo,
	syntax.TokenAnd:            OpAnd,
	syntax.TokenOr:             OpOr,
	syntax.TokenAssign:         OpEqual,
	syntax.TokenNotEqual:       OpNotEqual,
	syntax.TokenLess:           OpLess,
	syntax.TokenLessOrEqual:    OpLessOrEqual,
	syntax.TokenGreater:        OpGreater,
	syntax.TokenGreaterOrEqual: OpGreaterOrEqual,
}

var unaryTokens = map[string]Operator{
	syntax.TokenPlus:  OpUnaryPlus,
	syntax.TokenMinus: OpUnaryMinus,
	syntax.TokenNot:   OpNot,
}

// BinaryOperatorFor maps a raw token kind to a binary operator.
func BinaryOperatorFor(tokenType string) (Operator, bool) {
	op, ok := binaryTokens[tokenType]
	return op, ok
}

// UnaryOperatorFor maps a raw token kind to a unary operator.
func UnaryOperatorFor(tokenType string) (Operator, bool) {
	op, ok := unaryTokens[tokenType]
	return op, ok
}
