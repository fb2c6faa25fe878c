package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-bsl-flow/pkg/expr"
	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

func newExprCmd(a *app) *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:   "expr <node-file>",
		Short: "Print the expression tree of an expression node",
		Long: `Builds the expression tree of a file holding a single expression node and
prints it one node per line. Malformed input shows up as <error> nodes.
Comparisons and other operations whose two operands are the same expression
are listed after the tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := syntax.LoadNode(args[0])
			if err != nil {
				return err
			}
			e := expr.Build(n)
			if expr.ContainsError(e) {
				a.logger.Warn("expression contains errors", "file", args[0])
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, expr.Format(e))
			if !flat {
				fmt.Fprintln(w)
				printExpression(w, e, 0)
			}
			for _, op := range expr.IdenticalOperands(e) {
				fmt.Fprintf(w, "Identical operands: %s\n", expr.Format(op))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "Print only the parenthesised form")
	return cmd
}

// printExpression writes the tree one node per line, children indented.
func printExpression(w io.Writer, e expr.Expression, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := e.(type) {
	case *expr.Literal:
		fmt.Fprintf(w, "%sLiteral %s %s\n", indent, n.Kind, n.Value)
	case *expr.Identifier:
		fmt.Fprintf(w, "%sIdentifier %s\n", indent, n.Name)
	case *expr.UnaryOp:
		fmt.Fprintf(w, "%sUnary %s\n", indent, n.Op)
		printExpression(w, n.Operand, depth+1)
	case *expr.BinaryOp:
		fmt.Fprintf(w, "%sBinary %s\n", indent, n.Op)
		printExpression(w, n.Left, depth+1)
		printExpression(w, n.Right, depth+1)
	case *expr.ConstructorCall:
		if n.IsStatic() {
			fmt.Fprintf(w, "%sNew %s\n", indent, n.TypeName)
		} else {
			fmt.Fprintf(w, "%sNew (dynamic)\n", indent)
			printExpression(w, n.TypeExpr, depth+1)
		}
		for _, arg := range n.Args {
			printExpression(w, arg, depth+1)
		}
	case *expr.MethodCall:
		fmt.Fprintf(w, "%sCall %s\n", indent, n.Name)
		for _, arg := range n.Args {
			printExpression(w, arg, depth+1)
		}
	case *expr.Ternary:
		fmt.Fprintf(w, "%sTernary\n", indent)
		printExpression(w, n.Cond, depth+1)
		printExpression(w, n.Then, depth+1)
		printExpression(w, n.Else, depth+1)
	case *expr.SkippedArgument:
		fmt.Fprintf(w, "%sSkipped\n", indent)
	case *expr.ErrorExpression:
		if n.Reason != "" {
			fmt.Fprintf(w, "%sError %s\n", indent, n.Reason)
		} else {
			fmt.Fprintf(w, "%sError\n", indent)
		}
	case nil:
		fmt.Fprintf(w, "%s<nil>\n", indent)
	}
}
