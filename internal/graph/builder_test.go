package graph

import (
	"testing"

	"github.com/archlens/archlens/pkg/types"
)

// tsFile builds a ParsedFile for a TypeScript module with the given
// imports.
func tsFile(rel string, imports ...types.ImportRecord) types.ParsedFile {
	return types.ParsedFile{
		File: types.SourceFile{
			Path:     "/proj/" + rel,
			RelPath:  rel,
			Language: types.LangTypeScript,
		},
		Imports: imports,
	}
}

func relImport(source string, kind types.ImportKind) types.ImportRecord {
	return types.ImportRecord{Source: source, Kind: kind, IsRelative: true, Line: 1}
}

func extImport(source string) types.ImportRecord {
	return types.ImportRecord{Source: source, Kind: types.KindES6Default, IsExternal: true, Line: 1}
}

func TestBuildSimpleChain(t *testing.T) {
	g := Build([]types.ParsedFile{
		tsFile("src/a.ts", relImport("./b", types.KindES6Default)),
		tsFile("src/b.ts", relImport("./c", types.KindES6Default)),
		tsFile("src/c.ts"),
	})

	if len(g.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(g.Nodes))
	}
	if len(g.Edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(g.Edges))
	}
	if len(g.Cycles) != 0 {
		t.Errorf("cycles = %d, want 0", len(g.Cycles))
	}

	if got := g.Nodes["src/c.ts"].InDegree; got != 1 {
		t.Errorf("c in-degree = %d, want 1", got)
	}
	if got := g.Nodes["src/a.ts"].OutDegree; got != 1 {
		t.Errorf("a out-degree = %d, want 1", got)
	}
	b := g.Nodes["src/b.ts"]
	if b.InDegree != 1 || b.OutDegree != 1 {
		t.Errorf("b degrees = (%d, %d), want (1, 1)", b.InDegree, b.OutDegree)
	}
}

func TestBuildParallelImportsCollapse(t *testing.T) {
	g := Build([]types.ParsedFile{
		tsFile("src/a.ts",
			relImport("./b", types.KindES6Default),
			relImport("./b", types.KindDynamic),
		),
		tsFile("src/b.ts"),
	})

	if len(g.Edges) != 1 {
		t.Fatalf("edges = %d, want 1 (parallel imports must collapse)", len(g.Edges))
	}
	e := g.Edges[0]
	if e.Weight != 2 {
		t.Errorf("weight = %d, want 2", e.Weight)
	}
	kinds := map[types.ImportKind]bool{}
	for _, k := range e.Kinds {
		kinds[k] = true
	}
	if !kinds[types.KindES6Default] || !kinds[types.KindDynamic] {
		t.Errorf("kinds = %v, want es6-default and dynamic", e.Kinds)
	}
}

func TestBuildExternalVsInternal(t *testing.T) {
	g := Build([]types.ParsedFile{
		tsFile("src/a.ts",
			extImport("lodash"),
			extImport("@scope/pkg/sub"),
			relImport("./b", types.KindES6Named),
		),
		tsFile("src/b.ts"),
	})

	want := []string{"@scope/pkg", "lodash"}
	if len(g.Externals) != len(want) {
		t.Fatalf("externals = %v, want %v", g.Externals, want)
	}
	for i, w := range want {
		if g.Externals[i] != w {
			t.Errorf("externals[%d] = %q, want %q", i, g.Externals[i], w)
		}
	}

	if len(g.Edges) != 1 || g.Edges[0].Target != "src/b.ts" || g.Edges[0].Weight != 1 {
		t.Errorf("edges = %+v, want single a->b weight 1", g.Edges)
	}
}

func TestBuildUnresolvedImportDropped(t *testing.T) {
	g := Build([]types.ParsedFile{
		tsFile("src/a.ts", relImport("./missing", types.KindES6Default)),
	})

	if len(g.Edges) != 0 {
		t.Fatalf("edges = %d, want 0 for unresolved import", len(g.Edges))
	}
	// Every edge endpoint must be a node key; with no edges the graph is
	// trivially consistent.
	if len(g.Nodes) != 1 {
		t.Errorf("nodes = %d, want 1", len(g.Nodes))
	}
}

func TestResolveProbesExtensionAndIndex(t *testing.T) {
	tests := []struct {
		name   string
		files  []string
		source string
		from   string
		target string
	}{
		{"exact", []string{"src/b.ts"}, "./b.ts", "src/a.ts", "src/b.ts"},
		{"strip extension", []string{"src/b.ts"}, "./b.js", "src/a.ts", "src/b.ts"},
		{"append extension", []string{"src/b.tsx"}, "./b", "src/a.ts", "src/b.tsx"},
		{"directory index", []string{"src/lib/index.ts"}, "./lib", "src/a.ts", "src/lib/index.ts"},
		{"root-relative", []string{"src/util/b.ts"}, "src/util/b", "src/a.ts", "src/util/b.ts"},
		{"parent relative", []string{"util.ts"}, "../util", "src/a.ts", "util.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := []types.ParsedFile{tsFile(tt.from, relImportOrAbs(tt.source))}
			for _, f := range tt.files {
				files = append(files, tsFile(f))
			}
			g := Build(files)

			if len(g.Edges) != 1 {
				t.Fatalf("edges = %d, want 1", len(g.Edges))
			}
			if g.Edges[0].Target != tt.target {
				t.Errorf("target = %q, want %q", g.Edges[0].Target, tt.target)
			}
		})
	}
}

func relImportOrAbs(source string) types.ImportRecord {
	rec := types.ImportRecord{Source: source, Kind: types.KindES6Default, Line: 1}
	rec.IsRelative = source[0] == '.' || source[0] == '/'
	return rec
}

func TestBuildPythonRelativeResolution(t *testing.T) {
	pyFile := func(rel string, imports ...types.ImportRecord) types.ParsedFile {
		f := tsFile(rel, imports...)
		f.File.Language = types.LangPython
		return f
	}

	// from . import b  -- policy: each name probes a sibling module.
	g := Build([]types.ParsedFile{
		pyFile("pkg/a.py", types.ImportRecord{
			Source: ".", Kind: types.KindPythonFrom,
			Names: []string{"b"}, IsRelative: true, Line: 1,
		}),
		pyFile("pkg/b.py"),
	})

	if len(g.Edges) != 1 {
		t.Fatalf("edges = %d, want 1 (from . import b must resolve to sibling)", len(g.Edges))
	}
	if g.Edges[0].Source != "pkg/a.py" || g.Edges[0].Target != "pkg/b.py" {
		t.Errorf("edge = %s -> %s, want pkg/a.py -> pkg/b.py", g.Edges[0].Source, g.Edges[0].Target)
	}
}

func TestBuildPythonDottedModule(t *testing.T) {
	pyImport := types.ImportRecord{
		Source: "pkg.sub.mod", Kind: types.KindPythonImport,
		Names: []string{"pkg"}, Line: 1,
	}
	files := []types.ParsedFile{
		{
			File:    types.SourceFile{RelPath: "main.py", Language: types.LangPython},
			Imports: []types.ImportRecord{pyImport},
		},
		{File: types.SourceFile{RelPath: "pkg/sub/mod.py", Language: types.LangPython}},
	}

	g := Build(files)
	if len(g.Edges) != 1 || g.Edges[0].Target != "pkg/sub/mod.py" {
		t.Fatalf("edges = %+v, want main.py -> pkg/sub/mod.py", g.Edges)
	}
}

func TestBuildPythonPackageInit(t *testing.T) {
	g := Build([]types.ParsedFile{
		{
			File: types.SourceFile{RelPath: "app/main.py", Language: types.LangPython},
			Imports: []types.ImportRecord{{
				Source: ".helpers", Kind: types.KindPythonFrom,
				Names: []string{"x"}, IsRelative: true, Line: 2,
			}},
		},
		{File: types.SourceFile{RelPath: "app/helpers/__init__.py", Language: types.LangPython}},
	})

	if len(g.Edges) != 1 || g.Edges[0].Target != "app/helpers/__init__.py" {
		t.Fatalf("edges = %+v, want app/main.py -> app/helpers/__init__.py", g.Edges)
	}
}

func TestNodeNamesAndEntryPoints(t *testing.T) {
	tests := []struct {
		rel       string
		wantName  string
		wantEntry bool
	}{
		{"src/widgets/index.ts", "widgets", true},
		{"src/main.py", "main", true},
		{"src/app.tsx", "app", true},
		{"src/helper.ts", "helper", false},
		{"index.ts", "index", true}, // no parent directory to borrow
		{"cmd/server.go", "server", true},
	}

	var files []types.ParsedFile
	for _, tt := range tests {
		files = append(files, tsFile(tt.rel))
	}
	g := Build(files)

	for _, tt := range tests {
		n := g.Nodes[tt.rel]
		if n == nil {
			t.Fatalf("missing node %q", tt.rel)
		}
		if n.Name != tt.wantName {
			t.Errorf("%s: name = %q, want %q", tt.rel, n.Name, tt.wantName)
		}
		if n.IsEntryPoint != tt.wantEntry {
			t.Errorf("%s: entry = %v, want %v", tt.rel, n.IsEntryPoint, tt.wantEntry)
		}
	}
}

func TestDegreesMatchEdgeWeights(t *testing.T) {
	g := Build([]types.ParsedFile{
		tsFile("src/a.ts",
			relImport("./b", types.KindES6Default),
			relImport("./b", types.KindDynamic),
			relImport("./c", types.KindES6Named),
		),
		tsFile("src/b.ts", relImport("./c", types.KindES6Default)),
		tsFile("src/c.ts"),
	})

	for path, n := range g.Nodes {
		var in, out int
		for _, e := range g.Edges {
			if e.Source == path {
				out += e.Weight
			}
			if e.Target == path {
				in += e.Weight
			}
		}
		if n.InDegree != in || n.OutDegree != out {
			t.Errorf("%s: degrees = (%d,%d), edge sums = (%d,%d)", path, n.InDegree, n.OutDegree, in, out)
		}
	}
}

func TestCouplingNormalization(t *testing.T) {
	g := Build([]types.ParsedFile{
		tsFile("src/hub.ts",
			relImport("./a", types.KindES6Default),
			relImport("./b", types.KindES6Default),
		),
		tsFile("src/a.ts", relImport("./hub", types.KindES6Default)),
		tsFile("src/b.ts"),
	})

	hub := g.Nodes["src/hub.ts"]
	if hub.Coupling != 1.0 {
		t.Errorf("hub coupling = %v, want 1.0", hub.Coupling)
	}
	for _, n := range g.Nodes {
		if n.Coupling < 0 || n.Coupling > 1 {
			t.Errorf("%s: coupling %v out of [0,1]", n.Path, n.Coupling)
		}
	}
}

func TestOrphans(t *testing.T) {
	g := Build([]types.ParsedFile{
		tsFile("src/main.ts", relImport("./used", types.KindES6Default)),
		tsFile("src/used.ts"),
		tsFile("src/lonely.ts"),
	})

	orphans := Orphans(g)
	if len(orphans) != 1 || orphans[0] != "src/lonely.ts" {
		t.Errorf("orphans = %v, want [src/lonely.ts]", orphans)
	}
}

func TestExternalPackageName(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"lodash", "lodash"},
		{"lodash/fp", "lodash"},
		{"@scope/pkg", "@scope/pkg"},
		{"@scope/pkg/sub", "@scope/pkg"},
		{"github.com/spf13/cobra", "github.com"},
	}
	for _, tt := range tests {
		if got := externalPackageName(tt.source); got != tt.want {
			t.Errorf("externalPackageName(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}
