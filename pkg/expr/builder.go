package expr

import (
	"errors"
	"strings"
	"unicode"

	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

// buildError aborts the current build. The whole expression then becomes an
// ErrorExpression spanning src.
type buildError struct {
	src    *syntax.Node
	reason string
}

func (e *buildError) Error() string {
	return e.reason + " at " + e.src.Span().String()
}

func fail(src *syntax.Node, reason string) error {
	return &buildError{src: src, reason: reason}
}

type stackedOperator struct {
	op  Operator
	src *syntax.Node
}

// builder holds the operand and operator stacks of one Build call. It is
// never reused: nested groups and arguments get their own builder.
type builder struct {
	operands  []Expression
	operators []stackedOperator
}

// Build turns an expression node (an ordered list of member and operation
// children) into a precedence-correct tree. Malformed input never panics; it
// comes back as an ErrorExpression.
func Build(n *syntax.Node) Expression {
	b := &builder{}
	return b.build(n)
}

func (b *builder) build(n *syntax.Node) Expression {
	if n == nil {
		return &ErrorExpression{Reason: "missing expression"}
	}
	if n.Type == syntax.KindMember {
		n = syntax.NewNode(syntax.KindExpression, n)
	}
	if n.Type != syntax.KindExpression {
		return errorAt(n, "not an expression")
	}
	if len(n.Children) == 0 {
		return errorAt(n, "empty expression")
	}
	if n.HasErrorChild() {
		return errorAt(n, "expression contains syntax errors")
	}

	expectOperand := true
	var lastOperation *syntax.Node
	for _, child := range n.Children {
		switch child.Type {
		case syntax.KindPreprocessor:
			continue
		case syntax.KindMember:
			if !expectOperand {
				return errorAt(child, "operator expected")
			}
			if err := b.visitMember(child); err != nil {
				return fromBuildError(err)
			}
			expectOperand = false
		case syntax.KindOperation:
			if expectOperand {
				return errorAt(child, "operand expected")
			}
			op, ok := operationOperator(child)
			if !ok {
				return errorAt(child, "unknown operator")
			}
			if err := b.pushOperator(op, child); err != nil {
				return fromBuildError(err)
			}
			expectOperand = true
			lastOperation = child
		default:
			return errorAt(child, "unexpected "+child.Type)
		}
	}
	if expectOperand {
		if lastOperation != nil {
			return errorAt(lastOperation, "dangling operator")
		}
		return errorAt(n, "empty expression")
	}

	for len(b.operators) > 0 {
		if err := b.reduce(); err != nil {
			return fromBuildError(err)
		}
	}
	if len(b.operands) != 1 {
		return errorAt(n, "unbalanced expression")
	}
	return b.operands[0]
}

func errorAt(src *syntax.Node, reason string) *ErrorExpression {
	return &ErrorExpression{node: node{src}, Reason: reason}
}

func fromBuildError(err error) Expression {
	var be *buildError
	if errors.As(err, &be) {
		return errorAt(be.src, be.reason)
	}
	return &ErrorExpression{Reason: err.Error()}
}

func operationOperator(n *syntax.Node) (Operator, bool) {
	tok := n.FirstTerminal()
	if tok == nil {
		return OpInvalid, false
	}
	return BinaryOperatorFor(tok.Type)
}

// pushOperator reduces every stacked operator that binds at least as tight as
// op, then stacks op.
func (b *builder) pushOperator(op Operator, src *syntax.Node) error {
	for len(b.operators) > 0 && b.operators[len(b.operators)-1].op.Priority() <= op.Priority() {
		if err := b.reduce(); err != nil {
			return err
		}
	}
	b.operators = append(b.operators, stackedOperator{op: op, src: src})
	return nil
}

func (b *builder) reduce() error {
	top := b.operators[len(b.operators)-1]
	b.operators = b.operators[:len(b.operators)-1]

	switch top.op.Arity() {
	case Unary:
		operand, ok := b.popOperand()
		if !ok {
			return fail(top.src, "missing operand")
		}
		b.operands = append(b.operands, NewUnary(top.op, operand, top.src))
	case Binary:
		right, ok := b.popOperand()
		if !ok {
			return fail(top.src, "missing operand")
		}
		left, ok := b.popOperand()
		if !ok {
			return fail(top.src, "missing operand")
		}
		b.operands = append(b.operands, NewBinary(top.op, left, right, top.src))
	default:
		return fail(top.src, "unknown operator")
	}
	return nil
}

func (b *builder) popOperand() (Expression, bool) {
	if len(b.operands) == 0 {
		return nil, false
	}
	e := b.operands[len(b.operands)-1]
	b.operands = b.operands[:len(b.operands)-1]
	return e, true
}

// visitMember pushes an optional unary modifier and then the member's operand.
func (b *builder) visitMember(member *syntax.Node) error {
	children := member.Children
	i := 0
	if i < len(children) && children[i].Type == syntax.KindUnaryModifier {
		mod := children[i]
		tok := mod.FirstTerminal()
		if tok == nil {
			return fail(mod, "empty unary modifier")
		}
		op, ok := UnaryOperatorFor(tok.Type)
		if !ok {
			return fail(mod, "unknown unary modifier")
		}
		b.operators = append(b.operators, stackedOperator{op: op, src: mod})
		i++
	}
	if i >= len(children) {
		return fail(member, "operand expected")
	}

	primary, rest := children[i], children[i+1:]
	var operand Expression
	if primary.Type == syntax.TokenLParen {
		inner, tail := splitGroup(rest)
		if inner == nil || len(inner.Children) == 0 {
			operand = errorAt(member, "empty parentheses")
		} else {
			operand = Build(inner)
		}
		rest = tail
	} else {
		var err error
		operand, err = b.operand(primary)
		if err != nil {
			return err
		}
	}

	operand, err := b.applyModifiers(operand, rest)
	if err != nil {
		return err
	}
	b.operands = append(b.operands, operand)
	return nil
}

// splitGroup separates "expression RPAREN modifier..." after an LPAREN.
func splitGroup(nodes []*syntax.Node) (inner *syntax.Node, tail []*syntax.Node) {
	for i, n := range nodes {
		switch n.Type {
		case syntax.KindExpression:
			inner = n
		case syntax.TokenRParen:
			return inner, nodes[i+1:]
		default:
			return inner, nodes[i:]
		}
	}
	return inner, nil
}

func (b *builder) operand(n *syntax.Node) (Expression, error) {
	switch n.Type {
	case syntax.KindConstValue:
		text := n.SourceText()
		kind := LiteralUnknown
		if tok := n.FirstTerminal(); tok != nil {
			kind = literalKindForToken(tok.Type)
		}
		if kind == LiteralUnknown {
			kind = literalKindForText(text)
		}
		return NewLiteral(kind, text, n), nil
	case syntax.KindPreprocSymbol:
		return NewLiteral(LiteralPreprocessorSymbol, n.SourceText(), n), nil
	case syntax.TokenIdentifier:
		return NewIdentifier(n.Text, n), nil
	case syntax.KindComplexIdentifier:
		if len(n.Children) == 0 {
			if n.Text != "" {
				return NewIdentifier(n.Text, n), nil
			}
			return nil, fail(n, "empty identifier")
		}
		head, err := b.operand(n.Children[0])
		if err != nil {
			return nil, err
		}
		return b.applyModifiers(head, n.Children[1:])
	case syntax.KindGlobalMethodCall, syntax.KindMethodCall:
		return methodCall(n), nil
	case syntax.KindNewExpression:
		return newExpression(n), nil
	case syntax.KindTernaryOperator:
		exprs := n.ChildrenByType(syntax.KindExpression)
		if len(exprs) != 3 {
			return errorAt(n, "ternary needs three operands"), nil
		}
		return &Ternary{node: node{n}, Cond: Build(exprs[0]), Then: Build(exprs[1]), Else: Build(exprs[2])}, nil
	case syntax.KindWaitExpression:
		return Build(n.ChildByType(syntax.KindExpression)), nil
	case syntax.KindError:
		return errorAt(n, "syntax error"), nil
	}
	return nil, fail(n, "unsupported operand "+n.Type)
}

// applyModifiers folds property access, indexing and method calls onto target.
func (b *builder) applyModifiers(target Expression, mods []*syntax.Node) (Expression, error) {
	for _, mod := range mods {
		if mod.Type != syntax.KindModifier || len(mod.Children) == 0 {
			return nil, fail(mod, "unsupported member access")
		}
		access := mod.Children[0]
		switch access.Type {
		case syntax.KindAccessProperty:
			name := access.ChildByType(syntax.TokenIdentifier)
			if name == nil {
				return nil, fail(access, "property name expected")
			}
			target = NewBinary(OpDereference, target, NewIdentifier(name.Text, name), mod)
		case syntax.KindAccessIndex:
			index := Build(access.ChildByType(syntax.KindExpression))
			target = NewBinary(OpIndexAccess, target, index, mod)
		case syntax.KindAccessCall:
			call := access.ChildByType(syntax.KindMethodCall)
			if call == nil {
				return nil, fail(access, "method call expected")
			}
			target = NewBinary(OpDereference, target, methodCall(call), mod)
		default:
			return nil, fail(access, "unsupported member access")
		}
	}
	return target, nil
}

func methodCall(n *syntax.Node) Expression {
	nameNode := n.ChildByType(syntax.KindMethodName)
	if nameNode == nil {
		nameNode = n.ChildByType(syntax.TokenIdentifier)
	}
	name := nameNode.SourceText()
	if name == "" {
		return errorAt(n, "method name expected")
	}
	return &MethodCall{node: node{n}, Name: name, Args: callArgs(n.ChildByType(syntax.KindDoCall))}
}

// newExpression handles New T(args) and New("T", args).
func newExpression(n *syntax.Node) Expression {
	if n.HasErrorChild() {
		return errorAt(n, "malformed constructor")
	}
	doCall := n.ChildByType(syntax.KindDoCall)
	args := callArgs(doCall)

	if typeName := n.ChildByType(syntax.KindTypeName); typeName != nil && typeName.SourceText() != "" {
		return &ConstructorCall{node: node{n}, TypeName: typeName.SourceText(), Args: args}
	}
	if len(args) == 0 {
		return errorAt(n, "constructor type expected")
	}
	switch args[0].(type) {
	case *SkippedArgument, *ErrorExpression:
		return errorAt(n, "constructor type expected")
	}
	return &ConstructorCall{node: node{n}, TypeExpr: args[0], Args: args[1:]}
}

// callArgs builds positional arguments. Omitted arguments become
// SkippedArgument and broken ones ErrorExpression, so the list keeps its
// positions.
func callArgs(doCall *syntax.Node) []Expression {
	if doCall == nil {
		return nil
	}
	list := doCall.ChildByType(syntax.KindCallParamList)
	if list == nil {
		list = doCall
	}
	params := list.ChildrenByType(syntax.KindCallParam)
	if len(params) == 1 && params[0].ChildByType(syntax.KindExpression) == nil {
		return nil
	}

	args := make([]Expression, 0, len(params))
	for _, p := range params {
		e := p.ChildByType(syntax.KindExpression)
		if e == nil {
			args = append(args, &SkippedArgument{node: node{p}})
			continue
		}
		args = append(args, Build(e))
	}
	return args
}

func literalKindForToken(tokenType string) LiteralKind {
	switch tokenType {
	case syntax.TokenString:
		return LiteralString
	case syntax.TokenNumber:
		return LiteralNumber
	case syntax.TokenDateTime:
		return LiteralDate
	case syntax.TokenTrue, syntax.TokenFalse:
		return LiteralBoolean
	case syntax.TokenNull:
		return LiteralNull
	case syntax.TokenUndefined:
		return LiteralUndefined
	}
	return LiteralUnknown
}

func literalKindForText(text string) LiteralKind {
	if text == "" {
		return LiteralUnknown
	}
	switch strings.ToLower(text) {
	case "истина", "ложь", "true", "false":
		return LiteralBoolean
	case "неопределено", "undefined":
		return LiteralUndefined
	case "null":
		return LiteralNull
	}
	first := []rune(text)[0]
	switch {
	case first == '"' || first == '|':
		return LiteralString
	case first == '\'':
		return LiteralDate
	case unicode.IsDigit(first):
		return LiteralNumber
	}
	return LiteralUnknown
}
