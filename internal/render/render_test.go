package render

import (
	"strings"
	"testing"
	"time"

	"github.com/archlens/archlens/internal/layout"
	"github.com/archlens/archlens/pkg/types"
)

func sampleResult() *types.AnalysisResult {
	g := &types.DependencyGraph{
		Nodes: map[string]*types.ModuleNode{
			"src/a.ts": {Path: "src/a.ts", Name: "a", Layer: "src", OutDegree: 1},
			"src/b.ts": {Path: "src/b.ts", Name: "b", Layer: "src", InDegree: 1},
		},
		Edges: []*types.ModuleEdge{
			{Source: "src/a.ts", Target: "src/b.ts", Weight: 1, Kinds: []types.ImportKind{types.KindES6Default}},
		},
		Externals: []string{"lodash"},
	}
	return &types.AnalysisResult{
		Root:  "/proj",
		Graph: g,
		Layers: []*types.Layer{
			{ID: "src", Name: "Src", Modules: []string{"src/a.ts", "src/b.ts"}, Color: "#3498db", Level: 0},
		},
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		FileCount:   2,
		EdgeCount:   1,
		Health: &types.HealthSummary{
			Score: 100, Grade: "A", Status: "healthy",
		},
	}
}

func TestDrawIOWellFormed(t *testing.T) {
	result := sampleResult()
	d := layout.Plan(result, layout.Options{})

	var sb strings.Builder
	if err := DrawIO(&sb, result, d); err != nil {
		t.Fatalf("DrawIO: %v", err)
	}
	xml := sb.String()

	for _, want := range []string{
		"<mxfile", "<mxGraphModel", "swimlane", "rounded=1",
		`id="src/a.ts"`, `id="edge-1"`, `source="src/a.ts"`, `target="src/b.ts"`,
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("XML missing %q", want)
		}
	}
}

func TestDrawIOEscapesSpecials(t *testing.T) {
	result := sampleResult()
	result.Graph.Nodes["src/a.ts"].Name = `<a & "b" 'c'>`
	d := layout.Plan(result, layout.Options{})

	var sb strings.Builder
	if err := DrawIO(&sb, result, d); err != nil {
		t.Fatalf("DrawIO: %v", err)
	}
	xml := sb.String()

	if !strings.Contains(xml, "&lt;a &amp; &quot;b&quot; &apos;c&apos;&gt;") {
		t.Errorf("special characters not escaped in: %s", xml)
	}
	if strings.Contains(xml, `value="<a`) {
		t.Error("raw < leaked into attribute position")
	}
}

func TestMermaidOutput(t *testing.T) {
	var sb strings.Builder
	if err := Mermaid(&sb, sampleResult()); err != nil {
		t.Fatalf("Mermaid: %v", err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "flowchart TB\n") {
		t.Errorf("missing flowchart header: %q", out[:20])
	}
	for _, want := range []string{
		"subgraph layer_src", "src_a_ts", "src_b_ts", "src_a_ts --> src_b_ts",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid missing %q in:\n%s", want, out)
		}
	}
}

func TestMermaidIDSanitization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/a.ts", "src_a_ts"},
		{"3rd-party", "_3rd_party"},
		{"ok_name", "ok_name"},
		{"", "_"},
	}
	for _, tt := range tests {
		if got := mermaidID(tt.in); got != tt.want {
			t.Errorf("mermaidID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHTMLDashboard(t *testing.T) {
	var sb strings.Builder
	if err := HTML(&sb, sampleResult()); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := sb.String()

	for _, want := range []string{"<!DOCTYPE html>", "healthy", "Src", "score 100"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestSummaryPlain(t *testing.T) {
	var sb strings.Builder
	Summary(&sb, sampleResult())
	out := sb.String()

	for _, want := range []string{"Modules:", "Dependencies:", "grade A", "healthy"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q in:\n%s", want, out)
		}
	}
}

func TestJSONRoundTrips(t *testing.T) {
	var sb strings.Builder
	if err := JSON(&sb, sampleResult()); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(sb.String(), `"src/a.ts"`) {
		t.Error("JSON output missing node key")
	}
}
