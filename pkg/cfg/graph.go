package cfg

import (
	"github.com/l3aro/go-bsl-flow/pkg/graph"
	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

// Edge is a typed CFG edge.
type Edge = graph.Edge[Vertex, EdgeType]

// EdgeFilter selects the edges a traversal follows.
type EdgeFilter = graph.EdgeFilter[Vertex, EdgeType]

// FlowEdges follows every edge control can take, skipping ADJACENT_CODE.
var FlowEdges EdgeFilter = func(e *Edge) bool { return e.Type.IsFlow() }

// ControlFlowGraph is the result of Build. It is read-only.
type ControlFlowGraph struct {
	g           *graph.Graph[Vertex, EdgeType]
	entry       *Entry
	exit        *Exit
	blockOf     map[*syntax.Node]*BasicBlock
	diagnostics []Diagnostic
}

func (c *ControlFlowGraph) Entry() *Entry { return c.entry }
func (c *ControlFlowGraph) Exit() *Exit   { return c.exit }

// Vertices returns all vertices in creation order.
func (c *ControlFlowGraph) Vertices() []Vertex { return c.g.Vertices() }

// Edges returns all edges grouped by source vertex.
func (c *ControlFlowGraph) Edges() []*Edge { return c.g.Edges() }

func (c *ControlFlowGraph) Outgoing(v Vertex) []*Edge { return c.g.Outgoing(v) }
func (c *ControlFlowGraph) Incoming(v Vertex) []*Edge { return c.g.Incoming(v) }
func (c *ControlFlowGraph) Contains(v Vertex) bool    { return c.g.Contains(v) }

// Diagnostics lists recoverable problems found in the input.
func (c *ControlFlowGraph) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), c.diagnostics...)
}

// DFS walks depth-first from start. A nil filter follows every edge.
func (c *ControlFlowGraph) DFS(start Vertex, filter EdgeFilter, visit func(Vertex) bool) {
	c.g.DFS(start, filter, visit)
}

// BFS walks breadth-first from start. A nil filter follows every edge.
func (c *ControlFlowGraph) BFS(start Vertex, filter EdgeFilter, visit func(Vertex) bool) {
	c.g.BFS(start, filter, visit)
}

// BasicBlocks returns the basic blocks in creation order.
func (c *ControlFlowGraph) BasicBlocks() []*BasicBlock {
	var out []*BasicBlock
	for _, v := range c.g.Vertices() {
		if b, ok := v.(*BasicBlock); ok {
			out = append(out, b)
		}
	}
	return out
}

// BlockOf returns the basic block holding the statement node.
func (c *ControlFlowGraph) BlockOf(statement *syntax.Node) (*BasicBlock, bool) {
	b, ok := c.blockOf[statement]
	return b, ok
}

// Reachable returns the vertices control can reach from Entry.
func (c *ControlFlowGraph) Reachable() []Vertex {
	return c.g.Reachable(c.entry, FlowEdges)
}

// IsReachable reports whether control can reach v from Entry.
func (c *ControlFlowGraph) IsReachable(v Vertex) bool {
	return c.g.IsReachable(c.entry, v, FlowEdges)
}

// UnreachableBlocks returns the non-empty basic blocks control never reaches.
func (c *ControlFlowGraph) UnreachableBlocks() []*BasicBlock {
	reach := make(map[Vertex]bool)
	for _, v := range c.Reachable() {
		reach[v] = true
	}
	var out []*BasicBlock
	for _, b := range c.BasicBlocks() {
		if !reach[b] && !b.IsEmpty() {
			out = append(out, b)
		}
	}
	return out
}

// CyclomaticComplexity is E - N + 2 over the part of the graph reachable from
// Entry.
func (c *ControlFlowGraph) CyclomaticComplexity() int {
	reach := c.Reachable()
	inReach := make(map[Vertex]bool, len(reach))
	for _, v := range reach {
		inReach[v] = true
	}
	edges := 0
	for _, v := range reach {
		for _, e := range c.g.Outgoing(v) {
			if e.Type.IsFlow() && inReach[e.Target] {
				edges++
			}
		}
	}
	return edges - len(reach) + 2
}
