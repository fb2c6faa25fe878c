// Package graph is a small directed multigraph with typed edges. It knows
// nothing about control flow; pkg/cfg builds on it.
package graph

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Edge connects Source to Target. Edges are compared by identity, so two
// edges with the same endpoints and type are still distinct.
type Edge[V comparable, T comparable] struct {
	Source V
	Target V
	Type   T
}

type vertexEntry[V comparable, T comparable] struct {
	id       uint32
	vertex   V
	outgoing []*Edge[V, T]
	incoming []*Edge[V, T]
}

// Graph stores vertices in insertion order, so every query and traversal is
// deterministic.
type Graph[V comparable, T comparable] struct {
	entries map[V]*vertexEntry[V, T]
	order   []*vertexEntry[V, T]
	nextID  uint32
	edges   int
}

// New returns an empty graph.
func New[V comparable, T comparable]() *Graph[V, T] {
	return &Graph[V, T]{entries: make(map[V]*vertexEntry[V, T])}
}

// AddVertex adds v. Adding a vertex twice is a no-op.
func (g *Graph[V, T]) AddVertex(v V) {
	if _, ok := g.entries[v]; ok {
		return
	}
	e := &vertexEntry[V, T]{id: g.nextID, vertex: v}
	g.nextID++
	g.entries[v] = e
	g.order = append(g.order, e)
}

// Contains reports whether v is in the graph.
func (g *Graph[V, T]) Contains(v V) bool {
	_, ok := g.entries[v]
	return ok
}

// AddEdge connects src to dst. Both must have been added with AddVertex and
// not removed since; AddEdge panics otherwise.
func (g *Graph[V, T]) AddEdge(src, dst V, typ T) *Edge[V, T] {
	s, ok := g.entries[src]
	if !ok {
		panic(fmt.Sprintf("graph: edge from unknown vertex %v", src))
	}
	d, ok := g.entries[dst]
	if !ok {
		panic(fmt.Sprintf("graph: edge to unknown vertex %v", dst))
	}
	edge := &Edge[V, T]{Source: src, Target: dst, Type: typ}
	s.outgoing = append(s.outgoing, edge)
	d.incoming = append(d.incoming, edge)
	g.edges++
	return edge
}

// RemoveEdge deletes edge. Unknown edges are ignored.
func (g *Graph[V, T]) RemoveEdge(edge *Edge[V, T]) {
	s, ok := g.entries[edge.Source]
	if !ok {
		return
	}
	if !removeFrom(&s.outgoing, edge) {
		return
	}
	if d, ok := g.entries[edge.Target]; ok {
		removeFrom(&d.incoming, edge)
	}
	g.edges--
}

// RemoveVertex deletes v together with every edge touching it.
func (g *Graph[V, T]) RemoveVertex(v V) {
	e, ok := g.entries[v]
	if !ok {
		return
	}
	for _, edge := range append([]*Edge[V, T](nil), e.outgoing...) {
		g.RemoveEdge(edge)
	}
	for _, edge := range append([]*Edge[V, T](nil), e.incoming...) {
		g.RemoveEdge(edge)
	}
	delete(g.entries, v)
	for i, o := range g.order {
		if o == e {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func removeFrom[V comparable, T comparable](list *[]*Edge[V, T], edge *Edge[V, T]) bool {
	for i, e := range *list {
		if e == edge {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// Vertices returns all vertices in insertion order.
func (g *Graph[V, T]) Vertices() []V {
	out := make([]V, 0, len(g.order))
	for _, e := range g.order {
		out = append(out, e.vertex)
	}
	return out
}

// Edges returns all edges, grouped by source in vertex order.
func (g *Graph[V, T]) Edges() []*Edge[V, T] {
	out := make([]*Edge[V, T], 0, g.edges)
	for _, e := range g.order {
		out = append(out, e.outgoing...)
	}
	return out
}

// VertexCount returns the number of vertices.
func (g *Graph[V, T]) VertexCount() int { return len(g.entries) }

// EdgeCount returns the number of edges.
func (g *Graph[V, T]) EdgeCount() int { return g.edges }

// Outgoing returns the edges leaving v, in insertion order.
func (g *Graph[V, T]) Outgoing(v V) []*Edge[V, T] {
	if e, ok := g.entries[v]; ok {
		return append([]*Edge[V, T](nil), e.outgoing...)
	}
	return nil
}

// Incoming returns the edges entering v, in insertion order.
func (g *Graph[V, T]) Incoming(v V) []*Edge[V, T] {
	if e, ok := g.entries[v]; ok {
		return append([]*Edge[V, T](nil), e.incoming...)
	}
	return nil
}

// EdgeFilter selects which edges a traversal follows. A nil filter follows
// every edge.
type EdgeFilter[V comparable, T comparable] func(*Edge[V, T]) bool

// OfType returns a filter following only the given edge types.
func OfType[V comparable, T comparable](types ...T) EdgeFilter[V, T] {
	return func(e *Edge[V, T]) bool {
		for _, t := range types {
			if e.Type == t {
				return true
			}
		}
		return false
	}
}

// ExceptType returns a filter following every edge not of the given types.
func ExceptType[V comparable, T comparable](types ...T) EdgeFilter[V, T] {
	only := OfType[V, T](types...)
	return func(e *Edge[V, T]) bool { return !only(e) }
}

// DFS walks depth-first from start, visiting each vertex once. Returning
// false from visit stops the walk.
func (g *Graph[V, T]) DFS(start V, filter EdgeFilter[V, T], visit func(V) bool) {
	first, ok := g.entries[start]
	if !ok {
		return
	}
	seen := roaring.New()
	stack := []*vertexEntry[V, T]{first}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.Contains(cur.id) {
			continue
		}
		seen.Add(cur.id)
		if !visit(cur.vertex) {
			return
		}
		// Push in reverse so the first outgoing edge is explored first.
		for i := len(cur.outgoing) - 1; i >= 0; i-- {
			edge := cur.outgoing[i]
			if filter != nil && !filter(edge) {
				continue
			}
			next := g.entries[edge.Target]
			if !seen.Contains(next.id) {
				stack = append(stack, next)
			}
		}
	}
}

// BFS walks breadth-first from start, visiting each vertex once. Returning
// false from visit stops the walk.
func (g *Graph[V, T]) BFS(start V, filter EdgeFilter[V, T], visit func(V) bool) {
	first, ok := g.entries[start]
	if !ok {
		return
	}
	seen := roaring.New()
	seen.Add(first.id)
	queue := []*vertexEntry[V, T]{first}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !visit(cur.vertex) {
			return
		}
		for _, edge := range cur.outgoing {
			if filter != nil && !filter(edge) {
				continue
			}
			next := g.entries[edge.Target]
			if !seen.Contains(next.id) {
				seen.Add(next.id)
				queue = append(queue, next)
			}
		}
	}
}

// Reachable returns the vertices reachable from start, in insertion order.
func (g *Graph[V, T]) Reachable(start V, filter EdgeFilter[V, T]) []V {
	bm := g.reachableSet(start, filter)
	out := make([]V, 0, bm.GetCardinality())
	for _, e := range g.order {
		if bm.Contains(e.id) {
			out = append(out, e.vertex)
		}
	}
	return out
}

// IsReachable reports whether to can be reached from from.
func (g *Graph[V, T]) IsReachable(from, to V, filter EdgeFilter[V, T]) bool {
	target, ok := g.entries[to]
	if !ok {
		return false
	}
	return g.reachableSet(from, filter).Contains(target.id)
}

func (g *Graph[V, T]) reachableSet(start V, filter EdgeFilter[V, T]) *roaring.Bitmap {
	bm := roaring.New()
	g.DFS(start, filter, func(v V) bool {
		bm.Add(g.entries[v].id)
		return true
	})
	return bm
}
