// Package cfg builds control flow graphs for BSL method bodies and exports
// them in a serializable form.
package cfg

import (
	"sort"
	"strconv"
	"strings"

	"github.com/l3aro/go-bsl-flow/pkg/syntax"
)

// VertexType is the kind of a CFG vertex.
type VertexType string

const (
	VertexEntry      VertexType = "entry"       // Unit entry point
	VertexExit       VertexType = "exit"        // Unit exit point
	VertexBasicBlock VertexType = "basic_block" // Straight-line statements
	VertexBranch     VertexType = "branch"      // Condition, loop header or try
	VertexLabel      VertexType = "label"       // Goto target
)

// EdgeType is the kind of a CFG edge.
type EdgeType string

const (
	EdgeDirect       EdgeType = "direct"        // Unconditional fall-through or jump
	EdgeTrueBranch   EdgeType = "true_branch"   // Condition holds, loop has another iteration, try body
	EdgeFalseBranch  EdgeType = "false_branch"  // Condition fails, loop exhausted, except body
	EdgeLoopEnter    EdgeType = "loop_enter"    // Fall-through into a loop header
	EdgeLoopBack     EdgeType = "loop_back"     // Body end or Continue back to the header
	EdgeLoopExit     EdgeType = "loop_exit"     // Break out of a loop
	EdgeAdjacentCode EdgeType = "adjacent_code" // Jump to the dead code written right after it
)

// IsFlow reports whether control can actually travel along the edge.
func (t EdgeType) IsFlow() bool {
	return t != EdgeAdjacentCode
}

// BranchKind tells the constructs that produce a Branching vertex apart.
type BranchKind string

const (
	BranchIf           BranchKind = "if"
	BranchElsif        BranchKind = "elsif"
	BranchWhile        BranchKind = "while"
	BranchFor          BranchKind = "for"
	BranchForEach      BranchKind = "foreach"
	BranchTry          BranchKind = "try"
	BranchPreprocessor BranchKind = "preprocessor"
)

// IsLoop reports whether the kind is a loop header.
func (k BranchKind) IsLoop() bool {
	return k == BranchWhile || k == BranchFor || k == BranchForEach
}

// Diagnostic describes recoverable malformed input met while building.
type Diagnostic struct {
	Span    syntax.Span `json:"span" yaml:"span" msgpack:"span"`
	Message string      `json:"message" yaml:"message" msgpack:"message"`
}

// CFGBlock is the exported form of a vertex.
type CFGBlock struct {
	ID           string     `json:"id" yaml:"id" msgpack:"id"`
	Type         VertexType `json:"type" yaml:"type" msgpack:"type"`
	Kind         BranchKind `json:"kind,omitempty" yaml:"kind,omitempty" msgpack:"kind,omitempty"`
	StartLine    int        `json:"start_line" yaml:"start_line" msgpack:"start_line"`
	EndLine      int        `json:"end_line" yaml:"end_line" msgpack:"end_line"`
	Statements   []string   `json:"statements" yaml:"statements" msgpack:"statements"`
	Condition    string     `json:"condition,omitempty" yaml:"condition,omitempty" msgpack:"condition,omitempty"`
	Label        string     `json:"label,omitempty" yaml:"label,omitempty" msgpack:"label,omitempty"`
	Predecessors []string   `json:"predecessors" yaml:"predecessors" msgpack:"predecessors"`
	Unreachable  bool       `json:"unreachable,omitempty" yaml:"unreachable,omitempty" msgpack:"unreachable,omitempty"`
}

// CFGEdge is the exported form of an edge.
type CFGEdge struct {
	SourceID  string   `json:"source_id" yaml:"source_id" msgpack:"source_id"`
	TargetID  string   `json:"target_id" yaml:"target_id" msgpack:"target_id"`
	EdgeType  EdgeType `json:"edge_type" yaml:"edge_type" msgpack:"edge_type"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty" msgpack:"condition,omitempty"`
}

// CFGInfo is the complete exported graph of one method.
type CFGInfo struct {
	FunctionName         string              `json:"function_name" yaml:"function_name" msgpack:"function_name"`
	Blocks               map[string]CFGBlock `json:"blocks" yaml:"blocks" msgpack:"blocks"`
	Edges                []CFGEdge           `json:"edges" yaml:"edges" msgpack:"edges"`
	EntryBlockID         string              `json:"entry_block_id" yaml:"entry_block_id" msgpack:"entry_block_id"`
	ExitBlockIDs         []string            `json:"exit_block_ids" yaml:"exit_block_ids" msgpack:"exit_block_ids"`
	UnreachableBlockIDs  []string            `json:"unreachable_block_ids,omitempty" yaml:"unreachable_block_ids,omitempty" msgpack:"unreachable_block_ids,omitempty"`
	CyclomaticComplexity int                 `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity" msgpack:"cyclomatic_complexity"`
	Diagnostics          []Diagnostic        `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
}

// BlockIDs returns the block IDs in creation order.
func (info *CFGInfo) BlockIDs() []string {
	ids := make([]string, 0, len(info.Blocks))
	for id := range info.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return blockOrdinal(ids[i]) < blockOrdinal(ids[j])
	})
	return ids
}

func blockOrdinal(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "block_"))
	if err != nil {
		return -1
	}
	return n
}
