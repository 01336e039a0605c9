package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/archlens/archlens/pkg/types"
)

// Mermaid writes a `flowchart TB` document with one subgraph per layer
// and an arrow per dependency edge.
func Mermaid(w io.Writer, result *types.AnalysisResult) error {
	var sb strings.Builder
	sb.WriteString("flowchart TB\n")

	for _, layer := range result.Layers {
		fmt.Fprintf(&sb, "  subgraph %s[\"%s\"]\n", mermaidID("layer_"+layer.ID), layer.Name)
		for _, module := range layer.Modules {
			label := module
			if n, ok := result.Graph.Nodes[module]; ok && n.Name != "" {
				label = n.Name
			}
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", mermaidID(module), label)
		}
		sb.WriteString("  end\n")
	}

	for _, e := range result.Graph.Edges {
		fmt.Fprintf(&sb, "  %s --> %s\n", mermaidID(e.Source), mermaidID(e.Target))
	}

	for _, layer := range result.Layers {
		fmt.Fprintf(&sb, "  style %s fill:%s\n", mermaidID("layer_"+layer.ID), layer.Color)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// mermaidID sanitizes an identifier to [A-Za-z0-9_], prefixing an
// underscore when it would start with a digit.
func mermaidID(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	id := sb.String()
	if id == "" {
		return "_"
	}
	if id[0] >= '0' && id[0] <= '9' {
		return "_" + id
	}
	return id
}
