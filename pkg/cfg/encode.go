package cfg

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding for CFGInfo.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
	FormatDOT     Format = "dot"
	FormatText    Format = "text"
)

// Formats lists every supported output format.
var Formats = []Format{FormatJSON, FormatYAML, FormatMsgpack, FormatDOT, FormatText}

// ParseFormat resolves a format name, case-insensitively. "yml" and
// "graphviz" are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack":
		return FormatMsgpack, nil
	case "dot", "graphviz":
		return FormatDOT, nil
	case "text", "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Encode writes info to w in the given format.
func Encode(w io.Writer, info *CFGInfo, format Format) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(info); err != nil {
			return fmt.Errorf("marshaling msgpack: %w", err)
		}
		return nil
	case FormatDOT:
		return writeDOT(w, info)
	case FormatText:
		return writeText(w, info)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// Decode reads a CFGInfo written by Encode. Only the structured formats can
// be read back.
func Decode(r io.Reader, format Format) (*CFGInfo, error) {
	var info CFGInfo
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&info)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&info)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&info)
	default:
		return nil, fmt.Errorf("format %q cannot be decoded", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	return &info, nil
}

var dotShapes = map[VertexType]string{
	VertexEntry:      "circle",
	VertexExit:       "doublecircle",
	VertexBasicBlock: "box",
	VertexBranch:     "diamond",
	VertexLabel:      "cds",
}

var dotStyles = map[EdgeType]string{
	EdgeTrueBranch:   `color="darkgreen"`,
	EdgeFalseBranch:  `color="red"`,
	EdgeLoopBack:     `style="dashed"`,
	EdgeLoopExit:     `color="blue"`,
	EdgeAdjacentCode: `style="dotted", color="gray"`,
}

func writeDOT(w io.Writer, info *CFGInfo) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %s {\n", dotQuote(info.FunctionName))
	sb.WriteString("  node [fontname=\"monospace\"];\n")
	for _, id := range info.BlockIDs() {
		block := info.Blocks[id]
		shape := dotShapes[block.Type]
		if block.Kind.IsLoop() {
			shape = "hexagon"
		}
		attrs := fmt.Sprintf("shape=%s, label=%s", shape, dotQuote(blockCaption(block)))
		if block.Unreachable {
			attrs += ", style=\"filled\", fillcolor=\"lightgray\""
		}
		fmt.Fprintf(&sb, "  %s [%s];\n", dotQuote(id), attrs)
	}
	for _, e := range info.Edges {
		attrs := fmt.Sprintf("label=%s", dotQuote(string(e.EdgeType)))
		if style, ok := dotStyles[e.EdgeType]; ok {
			attrs += ", " + style
		}
		fmt.Fprintf(&sb, "  %s -> %s [%s];\n", dotQuote(e.SourceID), dotQuote(e.TargetID), attrs)
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func blockCaption(b CFGBlock) string {
	switch b.Type {
	case VertexEntry:
		return "entry"
	case VertexExit:
		return "exit"
	case VertexBranch:
		if b.Condition == "" {
			return string(b.Kind)
		}
		return string(b.Kind) + " " + b.Condition
	case VertexLabel:
		return "~" + b.Label
	}
	if len(b.Statements) == 0 {
		return b.ID
	}
	return strings.Join(b.Statements, "\n")
}

func dotQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\l`)
	return `"` + r.Replace(s) + `"`
}

func writeText(w io.Writer, info *CFGInfo) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== CFG for method: %s ===\n", info.FunctionName)
	fmt.Fprintf(&sb, "Cyclomatic Complexity: %d\n", info.CyclomaticComplexity)
	fmt.Fprintf(&sb, "Entry Block: %s\n", info.EntryBlockID)
	fmt.Fprintf(&sb, "Exit Blocks: %v\n", info.ExitBlockIDs)
	if len(info.UnreachableBlockIDs) > 0 {
		fmt.Fprintf(&sb, "Unreachable Blocks: %v\n", info.UnreachableBlockIDs)
	}

	fmt.Fprintf(&sb, "\nBlocks (%d):\n", len(info.Blocks))
	for _, id := range info.BlockIDs() {
		block := info.Blocks[id]
		fmt.Fprintf(&sb, "  %s (%s", id, block.Type)
		if block.Kind != "" {
			fmt.Fprintf(&sb, " %s", block.Kind)
		}
		fmt.Fprintf(&sb, ", lines %d-%d)", block.StartLine, block.EndLine)
		switch {
		case block.Condition != "":
			fmt.Fprintf(&sb, " ? %s", block.Condition)
		case block.Label != "":
			fmt.Fprintf(&sb, " ~%s", block.Label)
		}
		sb.WriteString("\n")
		for _, stmt := range block.Statements {
			fmt.Fprintf(&sb, "    %s\n", stmt)
		}
	}

	fmt.Fprintf(&sb, "\nEdges (%d):\n", len(info.Edges))
	for _, edge := range info.Edges {
		fmt.Fprintf(&sb, "  %s --%s--> %s\n", edge.SourceID, edge.EdgeType, edge.TargetID)
	}

	if len(info.Diagnostics) > 0 {
		fmt.Fprintf(&sb, "\nDiagnostics (%d):\n", len(info.Diagnostics))
		for _, d := range info.Diagnostics {
			fmt.Fprintf(&sb, "  %s: %s\n", d.Span, d.Message)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
