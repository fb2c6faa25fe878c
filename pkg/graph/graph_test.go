package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kind string

const (
	plain kind = "plain"
	back  kind = "back"
)

// diamond: a -> b -> d, a -> c -> d, d -back-> a
func diamond() *Graph[string, kind] {
	g := New[string, kind]()
	for _, v := range []string{"a", "b", "c", "d"} {
		g.AddVertex(v)
	}
	g.AddEdge("a", "b", plain)
	g.AddEdge("a", "c", plain)
	g.AddEdge("b", "d", plain)
	g.AddEdge("c", "d", plain)
	g.AddEdge("d", "a", back)
	return g
}

func TestGraphAddAndQuery(t *testing.T) {
	g := diamond()

	assert.Equal(t, []string{"a", "b", "c", "d"}, g.Vertices())
	assert.Equal(t, 4, g.VertexCount())
	assert.Equal(t, 5, g.EdgeCount())
	assert.Len(t, g.Edges(), 5)

	out := g.Outgoing("a")
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Target)
	assert.Equal(t, "c", out[1].Target)

	in := g.Incoming("a")
	require.Len(t, in, 1)
	assert.Equal(t, back, in[0].Type)

	assert.Nil(t, g.Outgoing("missing"))
	assert.True(t, g.Contains("d"))
	assert.False(t, g.Contains("e"))
}

func TestGraphAddVertexTwice(t *testing.T) {
	g := New[int, kind]()
	g.AddVertex(1)
	g.AddVertex(1)
	assert.Equal(t, 1, g.VertexCount())
}

func TestGraphParallelEdges(t *testing.T) {
	g := New[int, kind]()
	g.AddVertex(1)
	g.AddVertex(2)
	first := g.AddEdge(1, 2, plain)
	g.AddEdge(1, 2, back)
	assert.Len(t, g.Outgoing(1), 2)

	g.RemoveEdge(first)
	out := g.Outgoing(1)
	require.Len(t, out, 1)
	assert.Equal(t, back, out[0].Type)
	assert.Len(t, g.Incoming(2), 1)

	// removing twice is harmless
	g.RemoveEdge(first)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraphRemoveVertex(t *testing.T) {
	g := diamond()
	g.RemoveVertex("b")

	assert.Equal(t, []string{"a", "c", "d"}, g.Vertices())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Len(t, g.Outgoing("a"), 1)
	assert.Len(t, g.Incoming("d"), 1)
	assert.False(t, g.Contains("b"))
}

func TestGraphRemovedVertexStaysRemoved(t *testing.T) {
	g := diamond()
	g.RemoveVertex("b")

	assert.Panics(t, func() { g.AddEdge("a", "b", plain) })
	assert.Panics(t, func() { g.AddEdge("b", "a", plain) })
	assert.Panics(t, func() { g.AddEdge("a", "missing", plain) })
	assert.False(t, g.Contains("b"))
	assert.Equal(t, 3, g.EdgeCount())

	// re-adding gets a fresh identity and is appended at the end
	g.AddVertex("b")
	g.AddEdge("d", "b", plain)
	assert.Equal(t, []string{"a", "c", "d", "b"}, g.Vertices())
	assert.True(t, g.IsReachable("a", "b", nil))
	assert.Equal(t, []string{"a", "c", "d", "b"}, g.Reachable("a", nil))
}

func TestGraphRemoveVertexWithSelfLoop(t *testing.T) {
	g := New[string, kind]()
	g.AddVertex("x")
	g.AddVertex("y")
	g.AddEdge("x", "x", back)
	g.AddEdge("x", "y", plain)
	g.RemoveVertex("x")
	assert.Equal(t, 0, g.EdgeCount())
	assert.Empty(t, g.Incoming("y"))
}

func TestGraphDFS(t *testing.T) {
	g := diamond()
	var order []string
	g.DFS("a", nil, func(v string) bool {
		order = append(order, v)
		return true
	})
	assert.Equal(t, []string{"a", "b", "d", "c"}, order)
}

func TestGraphBFS(t *testing.T) {
	g := diamond()
	var order []string
	g.BFS("a", nil, func(v string) bool {
		order = append(order, v)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
}

func TestGraphTraversalStops(t *testing.T) {
	g := diamond()
	count := 0
	g.BFS("a", nil, func(string) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)

	count = 0
	g.DFS("a", nil, func(string) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestGraphFilters(t *testing.T) {
	g := diamond()
	reach := g.Reachable("d", ExceptType[string, kind](back))
	assert.Equal(t, []string{"d"}, reach)

	reach = g.Reachable("d", OfType[string, kind](back, plain))
	assert.Equal(t, []string{"a", "b", "c", "d"}, reach)

	assert.True(t, g.IsReachable("a", "d", nil))
	assert.False(t, g.IsReachable("d", "a", OfType[string, kind](plain)))
	assert.False(t, g.IsReachable("a", "missing", nil))
}

func TestGraphUnknownStart(t *testing.T) {
	g := diamond()
	called := false
	g.DFS("zzz", nil, func(string) bool { called = true; return true })
	g.BFS("zzz", nil, func(string) bool { called = true; return true })
	assert.False(t, called)
	assert.Empty(t, g.Reachable("zzz", nil))
}
