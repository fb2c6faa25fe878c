package cfg

import (
	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

// Helpers that assemble upstream trees the way the parser shapes them.

func assign(text string) *syntax.Node {
	return syntax.NewNode(syntax.KindAssignment).WithText(text)
}

func assignAt(line int, text string) *syntax.Node {
	return assign(text).At(line, 1, line, len(text)+1)
}

func callStmt(text string) *syntax.Node {
	return syntax.NewNode(syntax.KindCallStatement).WithText(text)
}

func code(stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindCodeBlock, stmts...)
}

func ident(name string) *syntax.Node {
	return syntax.NewNode(syntax.KindMember,
		syntax.NewNode(syntax.KindComplexIdentifier, syntax.NewToken(syntax.TokenIdentifier, name)))
}

func num(text string) *syntax.Node {
	return syntax.NewNode(syntax.KindMember,
		syntax.NewNode(syntax.KindConstValue, syntax.NewToken(syntax.TokenNumber, text)))
}

func str(text string) *syntax.Node {
	return syntax.NewNode(syntax.KindMember,
		syntax.NewNode(syntax.KindConstValue, syntax.NewToken(syntax.TokenString, text)))
}

func op(tok string) *syntax.Node {
	return syntax.NewNode(syntax.KindOperation, syntax.NewToken(tok, tok))
}

func expression(children ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindExpression, children...)
}

// eq builds "left = right".
func eq(left, right *syntax.Node) *syntax.Node {
	return expression(left, op(syntax.TokenAssign), right)
}

func ifStmt(branches ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindIfStatement, branches...)
}

func ifBranch(cond *syntax.Node, stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindIfBranch, cond, code(stmts...))
}

func elsifBranch(cond *syntax.Node, stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindElsifBranch, cond, code(stmts...))
}

func elseBranch(stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindElseBranch, code(stmts...))
}

func whileStmt(cond *syntax.Node, stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindWhileStatement, cond, code(stmts...))
}

func forStmt(from, to *syntax.Node, stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindForStatement,
		syntax.NewToken(syntax.TokenIdentifier, "i"), expression(from), expression(to), code(stmts...))
}

func forEachStmt(collection *syntax.Node, stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindForEachStatement,
		syntax.NewToken(syntax.TokenIdentifier, "item"), expression(collection), code(stmts...))
}

func tryStmt(body []*syntax.Node, handler ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindTryStatement,
		syntax.NewNode(syntax.KindTryCodeBlock, body...),
		syntax.NewNode(syntax.KindExceptCodeBlock, handler...))
}

func returnStmt() *syntax.Node {
	return syntax.NewNode(syntax.KindReturnStatement).WithText("Return")
}

func breakStmt() *syntax.Node {
	return syntax.NewNode(syntax.KindBreakStatement).WithText("Break")
}

func continueStmt() *syntax.Node {
	return syntax.NewNode(syntax.KindContinueStatement).WithText("Continue")
}

func raiseStmt() *syntax.Node {
	return syntax.NewNode(syntax.KindRaiseStatement).WithText("Raise")
}

func labelRef(name string) *syntax.Node {
	return syntax.NewNode(syntax.KindLabelName, syntax.NewToken("TILDA", "~"), syntax.NewToken(syntax.TokenIdentifier, name))
}

func labelStmt(name string) *syntax.Node {
	return syntax.NewNode(syntax.KindLabel, labelRef(name), syntax.NewToken("COLON", ":"))
}

func gotoStmt(name string) *syntax.Node {
	return syntax.NewNode(syntax.KindGotoStatement, syntax.NewToken("GOTO_KEYWORD", "Goto"), labelRef(name))
}

func psym(name string) *syntax.Node {
	return syntax.NewNode(syntax.KindMember, syntax.NewToken(syntax.KindPreprocSymbol, name))
}

func preprocIf(branches ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindPreprocIf, branches...)
}

func preprocIfBranch(cond *syntax.Node, stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindPreprocIfBranch, cond, code(stmts...))
}

func preprocElsifBranch(cond *syntax.Node, stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindPreprocElsifBranch, cond, code(stmts...))
}

func preprocElseBranch(stmts ...*syntax.Node) *syntax.Node {
	return syntax.NewNode(syntax.KindPreprocElseBranch, code(stmts...))
}

func stmts(nodes ...*syntax.Node) []*syntax.Node { return nodes }

// textOf returns the statement texts of a block, or nil for other vertices.
func textOf(v Vertex) []string {
	b, ok := v.(*BasicBlock)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(b.Statements))
	for _, st := range b.Statements {
		out = append(out, st.SourceText())
	}
	return out
}

func edgesOfType(edges []*Edge, typ EdgeType) []*Edge {
	var out []*Edge
	for _, e := range edges {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
