package cfg

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRoute is returned by WalkNext when no outgoing edge matches.
	ErrNoRoute = errors.New("no matching route")
	// ErrAmbiguousRoute is returned by WalkNext without edge types when the
	// current vertex has more than one way out.
	ErrAmbiguousRoute = errors.New("ambiguous route")
)

// Walker steps through a graph one edge at a time. It only follows edges
// control can take.
type Walker struct {
	g       *ControlFlowGraph
	current Vertex
}

func NewWalker(g *ControlFlowGraph) *Walker {
	return &Walker{g: g, current: g.Entry()}
}

// Start moves to the first vertex after Entry.
func (w *Walker) Start() {
	w.current = w.g.Entry()
	if routes := w.AvailableRoutes(); len(routes) > 0 {
		w.current = routes[0].Target
	}
}

func (w *Walker) Current() Vertex { return w.current }

// IsOnBranch reports whether the current vertex is a decision point.
func (w *Walker) IsOnBranch() bool {
	_, ok := w.current.(*Branching)
	return ok
}

// AvailableRoutes lists the outgoing edges of the current vertex.
func (w *Walker) AvailableRoutes() []*Edge {
	var routes []*Edge
	for _, e := range w.g.Outgoing(w.current) {
		if e.Type.IsFlow() {
			routes = append(routes, e)
		}
	}
	return routes
}

// WalkNext follows the first edge of one of the given types. Without types
// the current vertex must have exactly one way out.
func (w *Walker) WalkNext(types ...EdgeType) error {
	routes := w.AvailableRoutes()
	if len(types) == 0 {
		switch len(routes) {
		case 0:
			return fmt.Errorf("leaving %s: %w", w.current.ID(), ErrNoRoute)
		case 1:
			w.current = routes[0].Target
			return nil
		default:
			return fmt.Errorf("leaving %s: %d routes: %w", w.current.ID(), len(routes), ErrAmbiguousRoute)
		}
	}
	for _, e := range routes {
		for _, t := range types {
			if e.Type == t {
				w.current = e.Target
				return nil
			}
		}
	}
	return fmt.Errorf("leaving %s by %v: %w", w.current.ID(), types, ErrNoRoute)
}
