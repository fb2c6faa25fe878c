package cfg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/l3aro/go-bsl-flow/pkg/expr"
	"github.com/l3aro/go-bsl-flow/pkg/graph"
	"github.com/l3aro/go-bsl-flow/pkg/preproc"
	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

// ErrContractViolation is wrapped by Build errors caused by a syntax tree that
// does not follow the expected node shapes.
var ErrContractViolation = errors.New("syntax tree contract violation")

type unexpectedNode struct {
	node *syntax.Node
}

func (e *unexpectedNode) Error() string {
	return fmt.Sprintf("unexpected %s node at %s", e.node.Type, e.node.Span())
}

// jumpTargets are the vertices early exits go to from inside a segment.
type jumpTargets struct {
	methodReturn     Vertex
	loopContinue     Vertex
	loopBreak        Vertex
	exceptionHandler Vertex
}

// segment is the cursor threaded through the traversal. It spans the
// subgraph built so far for one statement sequence: begin is its first
// vertex, end the current tail and block the open basic block receiving
// statements.
type segment struct {
	begin     Vertex
	end       Vertex
	block     *BasicBlock
	jumps     jumpTargets
	platforms preproc.Set
}

func (s *segment) add(stmt *syntax.Node) {
	s.block.Statements = append(s.block.Statements, stmt)
}

func (s *segment) replaceEnd(v Vertex) {
	if s.begin == s.end {
		s.begin = v
	}
	s.end = v
}

// Builder turns a statement sequence into a ControlFlowGraph. Build resets
// all state, so a Builder may be reused sequentially but not concurrently.
type Builder struct {
	opts Options

	g           *graph.Graph[Vertex, EdgeType]
	nextID      int
	entry       *Entry
	exit        *Exit
	labels      map[string]*Label
	labelOrder  []string
	defined     map[string]bool
	diagnostics []Diagnostic
}

// NewBuilder returns a builder using opts.
func NewBuilder(opts Options) *Builder {
	if opts.Platforms.IsEmpty() {
		opts.Platforms = preproc.DefaultConstraints
	}
	return &Builder{opts: opts}
}

// Build builds the graph of one statement sequence with a fresh builder.
func Build(body *syntax.Node, opts Options) (*ControlFlowGraph, error) {
	return NewBuilder(opts).Build(body)
}

// Build builds the graph of body, normally a codeBlock node. Malformed code
// is represented in the graph; an error is only returned when the tree
// itself breaks the expected shape, and then wraps ErrContractViolation.
func (b *Builder) Build(body *syntax.Node) (result *ControlFlowGraph, err error) {
	defer func() {
		if r := recover(); r != nil {
			var cause error
			switch v := r.(type) {
			case *preproc.ContractViolation:
				cause = v
			case *unexpectedNode:
				cause = v
			default:
				panic(r)
			}
			result = nil
			err = fmt.Errorf("building control flow graph: %w: %w", ErrContractViolation, cause)
		}
	}()

	b.reset()

	b.entry = &Entry{b.newBase()}
	b.exit = &Exit{b.newBase()}
	b.g.AddVertex(b.entry)
	b.g.AddVertex(b.exit)

	root := b.newSegment(jumpTargets{methodReturn: b.exit, exceptionHandler: b.exit}, b.opts.Platforms)
	b.g.AddEdge(b.entry, root.begin, EdgeDirect)
	if body != nil {
		b.processBlock(body, root)
	}
	b.connectTail(root, b.exit, EdgeDirect)

	b.resolveLabels()
	b.removeOrphans()
	if b.opts.DetermineAdjacentDeadCode {
		b.markUnreachable()
	}

	return &ControlFlowGraph{
		g:           b.g,
		entry:       b.entry,
		exit:        b.exit,
		blockOf:     b.indexStatements(),
		diagnostics: b.diagnostics,
	}, nil
}

func (b *Builder) reset() {
	b.g = graph.New[Vertex, EdgeType]()
	b.nextID = 0
	b.entry, b.exit = nil, nil
	b.labels = make(map[string]*Label)
	b.labelOrder = nil
	b.defined = make(map[string]bool)
	b.diagnostics = nil
}

func (b *Builder) newBase() vertexBase {
	id := fmt.Sprintf("block_%d", b.nextID)
	b.nextID++
	return vertexBase{id: id}
}

func (b *Builder) newBlock() *BasicBlock {
	block := &BasicBlock{vertexBase: b.newBase()}
	b.g.AddVertex(block)
	return block
}

func (b *Builder) newSegment(jumps jumpTargets, platforms preproc.Set) *segment {
	block := b.newBlock()
	return &segment{begin: block, end: block, block: block, jumps: jumps, platforms: platforms}
}

// split opens a fresh, unconnected block as the segment tail.
func (b *Builder) split(s *segment) *BasicBlock {
	block := b.newBlock()
	s.block = block
	s.end = block
	return block
}

func (b *Builder) diagnose(n *syntax.Node, format string, args ...interface{}) {
	b.diagnostics = append(b.diagnostics, Diagnostic{Span: n.Span(), Message: fmt.Sprintf(format, args...)})
}

// connectTail links the segment tail to target. An empty tail block is
// dropped instead and its incoming edges re-targeted; re-targeted DIRECT
// edges take typ.
func (b *Builder) connectTail(s *segment, target Vertex, typ EdgeType) {
	tail, ok := s.end.(*BasicBlock)
	if !ok || !tail.IsEmpty() {
		b.g.AddEdge(s.end, target, typ)
		return
	}
	for _, e := range b.g.Incoming(tail) {
		if e.Type == EdgeAdjacentCode {
			continue
		}
		t := e.Type
		if t == EdgeDirect {
			t = typ
		}
		b.g.AddEdge(e.Source, target, t)
	}
	b.g.RemoveVertex(tail)
	s.replaceEnd(target)
}

// isDeadEnd reports whether v is an empty block nothing flows into, as left
// behind by a jump at the end of an arm.
func (b *Builder) isDeadEnd(v Vertex) bool {
	block, ok := v.(*BasicBlock)
	if !ok || !block.IsEmpty() {
		return false
	}
	for _, e := range b.g.Incoming(block) {
		if e.Type.IsFlow() {
			return false
		}
	}
	return true
}

func (b *Builder) processBlock(n *syntax.Node, s *segment) {
	for _, st := range n.Children {
		b.processStatement(st, s)
	}
}

func (b *Builder) processStatement(n *syntax.Node, s *segment) {
	switch n.Type {
	case syntax.KindStatement, syntax.KindCodeBlock, syntax.KindTryCodeBlock, syntax.KindExceptCodeBlock:
		b.processBlock(n, s)
	case syntax.KindAssignment, syntax.KindCallStatement, syntax.KindWaitStatement,
		syntax.KindExecuteStatement, syntax.KindAddHandlerStatement, syntax.KindRemoveHandlerStatement,
		syntax.KindError:
		s.add(n)
	case syntax.KindPreprocessor:
	case syntax.KindIfStatement:
		b.processConditional(n, s, ifBranches)
	case syntax.KindPreprocIf:
		if b.opts.ProducePreprocessorConditions {
			b.processPreprocIf(n, s)
		} else {
			b.processConditional(n, s, preprocBranches)
		}
	case syntax.KindWhileStatement:
		b.processLoop(n, s, BranchWhile, n.ChildByType(syntax.KindExpression))
	case syntax.KindForStatement:
		exprs := n.ChildrenByType(syntax.KindExpression)
		var bound *syntax.Node
		if len(exprs) > 0 {
			bound = exprs[len(exprs)-1]
		}
		b.processLoop(n, s, BranchFor, bound)
	case syntax.KindForEachStatement:
		b.processLoop(n, s, BranchForEach, n.ChildByType(syntax.KindExpression))
	case syntax.KindTryStatement:
		b.processTry(n, s)
	case syntax.KindReturnStatement:
		s.add(n)
		b.jump(s, s.jumps.methodReturn, EdgeDirect)
	case syntax.KindBreakStatement:
		s.add(n)
		b.jump(s, b.loopTarget(n, s.jumps.loopBreak), EdgeLoopExit)
	case syntax.KindContinueStatement:
		s.add(n)
		b.jump(s, b.loopTarget(n, s.jumps.loopContinue), EdgeLoopBack)
	case syntax.KindRaiseStatement:
		s.add(n)
		b.jump(s, s.jumps.exceptionHandler, EdgeDirect)
	case syntax.KindGotoStatement:
		s.add(n)
		b.jump(s, b.label(labelName(n), n), EdgeDirect)
	case syntax.KindLabel:
		b.processLabel(n, s)
	default:
		panic(&unexpectedNode{node: n})
	}
}

func (b *Builder) loopTarget(n *syntax.Node, target Vertex) Vertex {
	if target == nil {
		b.diagnose(n, "%s outside of a loop", n.Type)
		return b.exit
	}
	return target
}

// jump ends the open block with an edge to target and opens a fresh block
// for whatever follows.
func (b *Builder) jump(s *segment, target Vertex, typ EdgeType) {
	from := s.block
	b.g.AddEdge(from, target, typ)
	dead := b.split(s)
	if b.opts.DetermineAdjacentDeadCode {
		b.g.AddEdge(from, dead, EdgeAdjacentCode)
	}
}

// condition builds the expression of a condition node, recording a
// diagnostic when it is malformed.
func (b *Builder) condition(n, cond *syntax.Node) expr.Expression {
	e := expr.Build(cond)
	if expr.ContainsError(e) {
		b.diagnose(n, "malformed condition in %s", n.Type)
	}
	return e
}

func (b *Builder) newBranching(kind BranchKind, n *syntax.Node, cond expr.Expression) *Branching {
	br := &Branching{vertexBase: b.newBase(), Kind: kind, Condition: cond, Node: n}
	b.g.AddVertex(br)
	return br
}

func (b *Builder) buildArm(code *syntax.Node, parent *segment, platforms preproc.Set) *segment {
	arm := b.newSegment(parent.jumps, platforms)
	if code != nil {
		b.processBlock(code, arm)
	}
	return arm
}

// closeArm links the tail of a nested segment to target. A tail left dead
// by a jump is dropped. An arm whose tail is still its first vertex keeps it:
// the edge into begin is added by the caller afterwards, so begin has no
// incoming flow yet even when it is live.
func (b *Builder) closeArm(arm *segment, target Vertex, typ EdgeType) {
	switch {
	case arm.end == arm.begin:
		b.g.AddEdge(arm.end, target, typ)
	case b.isDeadEnd(arm.end):
		b.g.RemoveVertex(arm.end)
	default:
		b.connectTail(arm, target, typ)
	}
}

// join opens the block following a branching construct and connects the
// pending FALSE edge and every arm to it.
func (b *Builder) join(s *segment, pendingFalse Vertex, arms []*segment) {
	next := b.split(s)
	if pendingFalse != nil {
		b.g.AddEdge(pendingFalse, next, EdgeFalseBranch)
	}
	for _, arm := range arms {
		b.closeArm(arm, next, EdgeDirect)
	}
}

type branchKinds struct {
	first, next, otherwise string
	firstKind, nextKind    BranchKind
}

var (
	ifBranches = branchKinds{
		first: syntax.KindIfBranch, next: syntax.KindElsifBranch, otherwise: syntax.KindElseBranch,
		firstKind: BranchIf, nextKind: BranchElsif,
	}
	preprocBranches = branchKinds{
		first: syntax.KindPreprocIfBranch, next: syntax.KindPreprocElsifBranch, otherwise: syntax.KindPreprocElseBranch,
		firstKind: BranchPreprocessor, nextKind: BranchPreprocessor,
	}
)

// processConditional builds If/ElsIf/Else: a chain of Branching vertices
// linked by FALSE edges, each with a TRUE edge into its arm.
func (b *Builder) processConditional(n *syntax.Node, s *segment, kinds branchKinds) {
	if n.ChildByType(kinds.first) == nil {
		b.diagnose(n, "%s without a condition branch", n.Type)
		return
	}

	var arms []*segment
	var pending Vertex
	for _, branch := range n.Children {
		switch branch.Type {
		case kinds.first, kinds.next:
			kind := kinds.nextKind
			if branch.Type == kinds.first {
				kind = kinds.firstKind
			}
			cond := b.newBranching(kind, branch, b.condition(branch, branch.ChildByType(syntax.KindExpression)))
			if pending == nil {
				b.connectTail(s, cond, EdgeDirect)
			} else {
				b.g.AddEdge(pending, cond, EdgeFalseBranch)
			}
			arm := b.buildArm(branch.ChildByType(syntax.KindCodeBlock), s, s.platforms)
			b.g.AddEdge(cond, arm.begin, EdgeTrueBranch)
			arms = append(arms, arm)
			pending = cond
		case kinds.otherwise:
			if pending == nil {
				continue
			}
			arm := b.buildArm(branch.ChildByType(syntax.KindCodeBlock), s, s.platforms)
			b.g.AddEdge(pending, arm.begin, EdgeFalseBranch)
			arms = append(arms, arm)
			pending = nil
		case syntax.KindPreprocessor:
		default:
			panic(&unexpectedNode{node: branch})
		}
	}
	b.join(s, pending, arms)
}

// processPreprocIf builds #If/#ElsIf/#Else for the platforms of the
// segment. Each arm only sees the platforms earlier arms left over. An arm
// no remaining platform compiles gets no vertices at all, and an arm every
// remaining platform compiles is entered without a decision.
func (b *Builder) processPreprocIf(n *syntax.Node, s *segment) {
	if n.ChildByType(syntax.KindPreprocIfBranch) == nil {
		b.diagnose(n, "%s without a condition branch", n.Type)
		return
	}

	remaining := s.platforms
	entered := false
	var pending Vertex
	var arms []*segment
	enter := func(v Vertex) {
		switch {
		case pending != nil:
			b.g.AddEdge(pending, v, EdgeFalseBranch)
		case !entered:
			b.connectTail(s, v, EdgeDirect)
		}
		entered = true
	}

	for _, branch := range n.Children {
		if remaining.IsEmpty() {
			break
		}
		switch branch.Type {
		case syntax.KindPreprocIfBranch, syntax.KindPreprocElsifBranch:
			code := branch.ChildByType(syntax.KindCodeBlock)
			cond := b.condition(branch, branch.ChildByType(syntax.KindExpression))
			reach := remaining
			if !expr.ContainsError(cond) {
				holds := preproc.Evaluate(cond)
				reach = holds.Intersect(remaining)
				if reach.Equal(remaining) {
					arm := b.buildArm(code, s, reach)
					enter(arm.begin)
					arms = append(arms, arm)
					pending = nil
					remaining = 0
					continue
				}
				remaining = remaining.Difference(holds)
			}
			if reach.IsEmpty() {
				continue
			}
			br := b.newBranching(BranchPreprocessor, branch, cond)
			enter(br)
			arm := b.buildArm(code, s, reach)
			b.g.AddEdge(br, arm.begin, EdgeTrueBranch)
			arms = append(arms, arm)
			pending = br
		case syntax.KindPreprocElseBranch:
			arm := b.buildArm(branch.ChildByType(syntax.KindCodeBlock), s, remaining)
			enter(arm.begin)
			arms = append(arms, arm)
			pending = nil
			remaining = 0
		case syntax.KindPreprocessor:
		default:
			panic(&unexpectedNode{node: branch})
		}
	}
	if !entered {
		return
	}
	b.join(s, pending, arms)
}

func (b *Builder) processLoop(n *syntax.Node, s *segment, kind BranchKind, cond *syntax.Node) {
	header := b.newBranching(kind, n, b.condition(n, cond))
	b.connectTail(s, header, EdgeLoopEnter)
	exit := b.split(s)

	jumps := s.jumps
	jumps.loopContinue = header
	jumps.loopBreak = exit
	body := b.newSegment(jumps, s.platforms)
	if code := n.ChildByType(syntax.KindCodeBlock); code != nil {
		b.processBlock(code, body)
	}

	b.g.AddEdge(header, body.begin, EdgeTrueBranch)
	b.g.AddEdge(header, exit, EdgeFalseBranch)
	if b.opts.ProduceLoopIterations {
		b.closeArm(body, header, EdgeLoopBack)
	} else {
		b.closeArm(body, exit, EdgeDirect)
	}
}

// processTry builds Try/Except as a Branching vertex with the try body on
// the TRUE edge and the handler on the FALSE edge. Raise inside the body goes
// to the handler.
func (b *Builder) processTry(n *syntax.Node, s *segment) {
	try := b.newBranching(BranchTry, n, nil)
	b.connectTail(s, try, EdgeDirect)

	handler := b.buildArm(n.ChildByType(syntax.KindExceptCodeBlock), s, s.platforms)

	jumps := s.jumps
	jumps.exceptionHandler = handler.begin
	body := b.newSegment(jumps, s.platforms)
	if code := n.ChildByType(syntax.KindTryCodeBlock); code != nil {
		b.processBlock(code, body)
	}

	b.g.AddEdge(try, body.begin, EdgeTrueBranch)
	b.g.AddEdge(try, handler.begin, EdgeFalseBranch)
	b.join(s, nil, []*segment{body, handler})
}

func (b *Builder) processLabel(n *syntax.Node, s *segment) {
	name := labelName(n)
	lbl := b.label(name, n)
	key := strings.ToLower(name)
	if b.defined[key] {
		b.diagnose(n, "label %s defined twice", name)
	}
	b.defined[key] = true
	lbl.Node = n

	b.connectTail(s, lbl, EdgeDirect)
	next := b.split(s)
	b.g.AddEdge(lbl, next, EdgeDirect)
}

// label returns the vertex for a label name, creating it on first use so
// forward Goto works. Names are case-insensitive.
func (b *Builder) label(name string, n *syntax.Node) *Label {
	key := strings.ToLower(name)
	if lbl, ok := b.labels[key]; ok {
		return lbl
	}
	lbl := &Label{vertexBase: b.newBase(), Name: name, Node: n}
	b.g.AddVertex(lbl)
	b.labels[key] = lbl
	b.labelOrder = append(b.labelOrder, key)
	return lbl
}

func labelName(n *syntax.Node) string {
	ln := n.ChildByType(syntax.KindLabelName)
	if ln == nil {
		ln = n
	}
	if id := ln.ChildByType(syntax.TokenIdentifier); id != nil {
		return id.Text
	}
	return strings.Trim(ln.SourceText(), "~: ")
}

// resolveLabels routes Goto targets that were never defined to Exit.
func (b *Builder) resolveLabels() {
	for _, key := range b.labelOrder {
		if b.defined[key] {
			continue
		}
		lbl := b.labels[key]
		b.diagnose(lbl.Node, "label %s is not defined", lbl.Name)
		b.g.AddEdge(lbl, b.exit, EdgeDirect)
	}
}

// removeOrphans drops vertices nothing connects to, and empty blocks whose
// only link is the ADJACENT_CODE edge of a preceding jump.
func (b *Builder) removeOrphans() {
	for _, v := range b.g.Vertices() {
		if v == Vertex(b.entry) || v == Vertex(b.exit) {
			continue
		}
		in, out := b.g.Incoming(v), b.g.Outgoing(v)
		if len(in)+len(out) == 0 {
			b.g.RemoveVertex(v)
			continue
		}
		if len(out) == 0 && b.isDeadEnd(v) {
			b.g.RemoveVertex(v)
		}
	}
}

// markUnreachable flags blocks entered only through ADJACENT_CODE edges.
func (b *Builder) markUnreachable() {
	for _, v := range b.g.Vertices() {
		block, ok := v.(*BasicBlock)
		if !ok {
			continue
		}
		in := b.g.Incoming(block)
		if len(in) == 0 {
			continue
		}
		adjacentOnly := true
		for _, e := range in {
			if e.Type.IsFlow() {
				adjacentOnly = false
				break
			}
		}
		block.Unreachable = adjacentOnly
	}
}

func (b *Builder) indexStatements() map[*syntax.Node]*BasicBlock {
	idx := make(map[*syntax.Node]*BasicBlock)
	for _, v := range b.g.Vertices() {
		if block, ok := v.(*BasicBlock); ok {
			for _, st := range block.Statements {
				idx[st] = block
			}
		}
	}
	return idx
}
