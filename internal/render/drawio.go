// Package render emits the analysis result as draw.io XML, Mermaid,
// an HTML dashboard, JSON, or a colorized terminal summary. Every
// renderer consumes the AnalysisResult, and the draw.io renderer also the
// planned layout; nothing here feeds back into the analysis core.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/archlens/archlens/internal/layout"
	"github.com/archlens/archlens/pkg/types"
)

// xmlEscaper covers every character that must be escaped in attribute
// and text positions.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string {
	return xmlEscaper.Replace(s)
}

// DrawIO writes a draw.io mxGraph document: one swimlane cell per layer
// group, a rounded rectangle per module, and orthogonal edges.
func DrawIO(w io.Writer, result *types.AnalysisResult, d *layout.Diagram) error {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&sb, `<mxfile host="archlens" modified="%s" agent="archlens" version="1.0" type="device">`+"\n",
		esc(result.GeneratedAt.Format("2006-01-02T15:04:05Z")))
	sb.WriteString(`  <diagram id="architecture" name="Architecture">` + "\n")
	fmt.Fprintf(&sb, `    <mxGraphModel dx="%d" dy="%d" grid="0" gridSize="10" guides="1" tooltips="1" connect="1" arrows="1" fold="1" page="1" pageScale="1" pageWidth="%d" pageHeight="%d" math="0" shadow="0">`+"\n",
		int(d.Width), int(d.Height), int(d.Width), int(d.Height))
	sb.WriteString("      <root>\n")
	sb.WriteString(`        <mxCell id="0" />` + "\n")
	sb.WriteString(`        <mxCell id="1" parent="0" />` + "\n")

	for _, n := range d.Nodes {
		parent := "1"
		if n.Parent != "" {
			parent = n.Parent
		}
		fmt.Fprintf(&sb,
			`        <mxCell id="%s" value="%s" style="%s" vertex="1" parent="%s">`+"\n",
			esc(cellID(n.ID)), esc(n.Label), esc(cellStyle(n)), esc(cellID(parent)))
		fmt.Fprintf(&sb,
			`          <mxGeometry x="%d" y="%d" width="%d" height="%d" as="geometry" />`+"\n",
			int(n.X), int(n.Y), int(n.Width), int(n.Height))
		sb.WriteString("        </mxCell>\n")
	}

	for _, e := range d.Edges {
		fmt.Fprintf(&sb,
			`        <mxCell id="%s" style="%s" edge="1" parent="1" source="%s" target="%s">`+"\n",
			esc(e.ID), esc(edgeStyle(e)), esc(cellID(e.Source)), esc(cellID(e.Target)))
		sb.WriteString(`          <mxGeometry relative="1" as="geometry" />` + "\n")
		sb.WriteString("        </mxCell>\n")
	}

	sb.WriteString("      </root>\n")
	sb.WriteString("    </mxGraphModel>\n")
	sb.WriteString("  </diagram>\n")
	sb.WriteString("</mxfile>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// cellID keeps module-path ids distinct from the two reserved mxGraph
// root cells.
func cellID(id string) string {
	if id == "0" || id == "1" {
		return "cell-" + id
	}
	return id
}

func cellStyle(n layout.Node) string {
	if n.IsGroup {
		return fmt.Sprintf(
			"swimlane;startSize=30;rounded=1;fillColor=%s;strokeColor=%s;fontColor=%s;fontSize=14;fontStyle=1;horizontal=1;",
			n.Fill, n.Stroke, n.FontColor)
	}
	return fmt.Sprintf(
		"rounded=1;whiteSpace=wrap;html=1;fillColor=%s;strokeColor=%s;fontColor=%s;fontSize=11;",
		n.Fill, n.Stroke, n.FontColor)
}

func edgeStyle(e layout.Edge) string {
	return fmt.Sprintf(
		"edgeStyle=orthogonalEdgeStyle;curved=1;rounded=1;strokeWidth=%.1f;strokeColor=#7f8c8d;endArrow=blockThin;",
		e.StrokeWidth)
}
