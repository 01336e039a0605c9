package parser

import (
	"strings"
	"testing"

	"github.com/archlens/archlens/pkg/types"
)

func newTSParser(t *testing.T) *TypeScriptParser {
	t.Helper()
	p, err := NewTypeScriptParser()
	if err != nil {
		t.Fatalf("NewTypeScriptParser: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func tsParse(t *testing.T, name, src string) types.ParsedFile {
	t.Helper()
	p := newTSParser(t)
	return p.Parse([]byte(src), types.SourceFile{
		Path:     "/proj/" + name,
		RelPath:  name,
		Language: types.LangTypeScript,
	})
}

// findImport returns the first import with the given source, failing the
// test when absent.
func findImport(t *testing.T, pf types.ParsedFile, source string) types.ImportRecord {
	t.Helper()
	for _, imp := range pf.Imports {
		if imp.Source == source {
			return imp
		}
	}
	t.Fatalf("no import with source %q in %+v", source, pf.Imports)
	return types.ImportRecord{}
}

func TestTSImportKinds(t *testing.T) {
	src := `import def from './def';
import { one, two } from './named';
import * as ns from './ns';
import './side-effect';
const legacy = require('./legacy');
const lazy = import('./lazy');
export * from './star';
export { a, b } from './re';
`
	pf := tsParse(t, "kinds.ts", src)

	tests := []struct {
		source string
		kind   types.ImportKind
		line   int
	}{
		{"./def", types.KindES6Default, 1},
		{"./named", types.KindES6Named, 2},
		{"./ns", types.KindES6Namespace, 3},
		{"./side-effect", types.KindES6Named, 4},
		{"./legacy", types.KindCommonJS, 5},
		{"./lazy", types.KindDynamic, 6},
		{"./star", types.KindReExport, 7},
		{"./re", types.KindReExport, 8},
	}

	for _, tt := range tests {
		imp := findImport(t, pf, tt.source)
		if imp.Kind != tt.kind {
			t.Errorf("%s: kind = %q, want %q", tt.source, imp.Kind, tt.kind)
		}
		if imp.Line != tt.line {
			t.Errorf("%s: line = %d, want %d", tt.source, imp.Line, tt.line)
		}
		if !imp.IsRelative || imp.IsExternal {
			t.Errorf("%s: relative/external flags wrong: %+v", tt.source, imp)
		}
	}

	named := findImport(t, pf, "./named")
	if len(named.Names) != 2 || named.Names[0] != "one" || named.Names[1] != "two" {
		t.Errorf("named import names = %v, want [one two]", named.Names)
	}
	side := findImport(t, pf, "./side-effect")
	if len(side.Names) != 0 {
		t.Errorf("side-effect import names = %v, want empty", side.Names)
	}
	re := findImport(t, pf, "./re")
	if len(re.Names) != 2 {
		t.Errorf("re-export names = %v, want [a b]", re.Names)
	}
}

func TestTSExternalClassification(t *testing.T) {
	src := `import _ from 'lodash';
import sub from '@scope/pkg/sub';
import local from './local';
import abs from '/abs/path';
`
	pf := tsParse(t, "ext.ts", src)

	tests := []struct {
		source   string
		external bool
	}{
		{"lodash", true},
		{"@scope/pkg/sub", true},
		{"./local", false},
		{"/abs/path", false},
	}
	for _, tt := range tests {
		imp := findImport(t, pf, tt.source)
		if imp.IsExternal != tt.external {
			t.Errorf("%s: external = %v, want %v", tt.source, imp.IsExternal, tt.external)
		}
		if imp.IsRelative == tt.external {
			t.Errorf("%s: relative = %v inconsistent with external = %v", tt.source, imp.IsRelative, imp.IsExternal)
		}
	}
}

func TestTSExports(t *testing.T) {
	src := `export default class Widget {}
export const alpha = 1, beta = 2;
export let gamma = 3;
export function run() {}
export class Helper {}
export { internalName as publicName };
const internalName = 0;
`
	pf := tsParse(t, "exports.ts", src)

	want := []string{"default", "alpha", "beta", "gamma", "run", "Helper", "publicName"}
	got := map[string]bool{}
	for _, e := range pf.Exports {
		got[e] = true
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("exports missing %q; got %v", w, pf.Exports)
		}
	}
}

func TestTSBrokenFileStillYieldsImports(t *testing.T) {
	src := `import ok from './ok';
function broken( {
import alsoOk from './also-ok';
`
	pf := tsParse(t, "broken.ts", src)

	if len(pf.Errors) == 0 {
		t.Errorf("errors empty, want at least one recorded syntax error")
	}
	findImport(t, pf, "./ok")
	// Error recovery should surface imports after the broken region too.
	foundLater := false
	for _, imp := range pf.Imports {
		if imp.Source == "./also-ok" {
			foundLater = true
		}
	}
	if !foundLater {
		t.Logf("imports after broken region not recovered: %+v", pf.Imports)
	}
}

func TestTSXAndJSFlavors(t *testing.T) {
	jsx := `import React from 'react';
export function App() {
  return <div onClick={() => void import('./lazy')}>hi</div>;
}
`
	pf := tsParse(t, "app.jsx", jsx)
	findImport(t, pf, "react")
	findImport(t, pf, "./lazy")
	if len(pf.Errors) != 0 {
		t.Errorf("valid JSX produced errors: %v", pf.Errors)
	}
}

func TestTSCanParse(t *testing.T) {
	p := newTSParser(t)
	for _, path := range []string{"a.ts", "b.tsx", "c.js", "d.jsx", "e.mjs", "f.cjs", "g.mts", "h.cts", "UPPER.TS"} {
		if !p.CanParse(path) {
			t.Errorf("CanParse(%q) = false, want true", path)
		}
	}
	for _, path := range []string{"a.py", "b.go", "c.java", "d.txt"} {
		if p.CanParse(path) {
			t.Errorf("CanParse(%q) = true, want false", path)
		}
	}
}

func TestTSImportsInSourceOrder(t *testing.T) {
	src := strings.Join([]string{
		`import a from './a';`,
		`import b from './b';`,
		`import c from './c';`,
	}, "\n")
	pf := tsParse(t, "order.ts", src)

	if len(pf.Imports) != 3 {
		t.Fatalf("imports = %d, want 3", len(pf.Imports))
	}
	for i, want := range []string{"./a", "./b", "./c"} {
		if pf.Imports[i].Source != want {
			t.Errorf("imports[%d] = %q, want %q", i, pf.Imports[i].Source, want)
		}
		if pf.Imports[i].Line != i+1 {
			t.Errorf("imports[%d].Line = %d, want %d", i, pf.Imports[i].Line, i+1)
		}
	}
}
