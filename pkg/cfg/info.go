package cfg

import (
	"github.com/l3aro/go-bsl-flow/pkg/expr"
	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

// Info converts the graph into its exported form.
func (c *ControlFlowGraph) Info(functionName string) *CFGInfo {
	info := &CFGInfo{
		FunctionName:         functionName,
		Blocks:               make(map[string]CFGBlock, c.g.VertexCount()),
		Edges:                make([]CFGEdge, 0, c.g.EdgeCount()),
		EntryBlockID:         c.entry.ID(),
		ExitBlockIDs:         []string{c.exit.ID()},
		CyclomaticComplexity: c.CyclomaticComplexity(),
		Diagnostics:          c.Diagnostics(),
	}

	for _, v := range c.g.Vertices() {
		block := CFGBlock{
			ID:           v.ID(),
			Type:         v.Type(),
			Statements:   []string{},
			Predecessors: []string{},
		}
		var span syntax.Span
		switch x := v.(type) {
		case *BasicBlock:
			span = x.Span()
			for _, st := range x.Statements {
				block.Statements = append(block.Statements, st.SourceText())
			}
			block.Unreachable = x.Unreachable
		case *Branching:
			span = x.Node.Span()
			block.Kind = x.Kind
			if x.Condition != nil {
				block.Condition = expr.Format(x.Condition)
			}
		case *Label:
			span = x.Node.Span()
			block.Label = x.Name
		}
		block.StartLine, block.EndLine = span.StartLine, span.EndLine
		for _, e := range c.g.Incoming(v) {
			if e.Type.IsFlow() {
				block.Predecessors = append(block.Predecessors, e.Source.ID())
			}
		}
		info.Blocks[block.ID] = block
	}

	for _, e := range c.g.Edges() {
		edge := CFGEdge{SourceID: e.Source.ID(), TargetID: e.Target.ID(), EdgeType: e.Type}
		if br, ok := e.Source.(*Branching); ok && e.Type == EdgeTrueBranch && br.Condition != nil {
			edge.Condition = expr.Format(br.Condition)
		}
		info.Edges = append(info.Edges, edge)
	}

	for _, b := range c.UnreachableBlocks() {
		info.UnreachableBlockIDs = append(info.UnreachableBlockIDs, b.ID())
	}
	return info
}
