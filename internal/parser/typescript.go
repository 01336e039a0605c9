package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/archlens/archlens/pkg/types"
)

// tsExtensions are the extensions handled by the TypeScript/JavaScript
// parser. The grammar flavor (TS vs TSX) is inferred from the extension;
// plain JavaScript goes through the TSX grammar, which accepts both JSX
// and non-JSX sources.
var tsExtensions = extensionSet(".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts")

// tsxFlavored lists extensions parsed with the TSX grammar.
var tsxFlavored = extensionSet(".tsx", ".js", ".jsx", ".mjs", ".cjs")

// maxSyntaxErrors caps the error messages recorded per file.
const maxSyntaxErrors = 5

// TypeScriptParser extracts imports and exports from TypeScript and
// JavaScript sources using pooled Tree-sitter parsers. Tree-sitter
// parsers are not thread-safe, so parsing is serialized via a mutex;
// extraction happens on the returned tree and needs no lock.
type TypeScriptParser struct {
	mu        sync.Mutex
	tsParser  *tree_sitter.Parser
	tsxParser *tree_sitter.Parser
}

// NewTypeScriptParser creates parsers for the TypeScript and TSX grammars.
func NewTypeScriptParser() (*TypeScriptParser, error) {
	tsParser := tree_sitter.NewParser()
	tsLang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	if err := tsParser.SetLanguage(tsLang); err != nil {
		tsParser.Close()
		return nil, fmt.Errorf("set typescript language: %w", err)
	}

	tsxParser := tree_sitter.NewParser()
	tsxLang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	if err := tsxParser.SetLanguage(tsxLang); err != nil {
		tsParser.Close()
		tsxParser.Close()
		return nil, fmt.Errorf("set tsx language: %w", err)
	}

	return &TypeScriptParser{tsParser: tsParser, tsxParser: tsxParser}, nil
}

// Close releases the pooled parser resources.
func (p *TypeScriptParser) Close() {
	if p.tsParser != nil {
		p.tsParser.Close()
	}
	if p.tsxParser != nil {
		p.tsxParser.Close()
	}
}

// CanParse reports whether path has a TypeScript/JavaScript extension.
func (p *TypeScriptParser) CanParse(path string) bool {
	return hasExtension(tsExtensions, path)
}

// Parse extracts imports and exports from a TS/JS source file. Syntax
// errors never abort extraction: Tree-sitter recovers around them and
// they are recorded as messages in the result.
func (p *TypeScriptParser) Parse(content []byte, file types.SourceFile) types.ParsedFile {
	result := types.ParsedFile{File: file}

	tree := p.parse(content, strings.ToLower(filepath.Ext(file.Path)))
	if tree == nil {
		result.Errors = append(result.Errors, "tree-sitter parse returned no tree")
		return result
	}
	defer tree.Close()

	ex := &tsExtractor{content: content, result: &result}
	ex.walk(tree.RootNode())

	if tree.RootNode().HasError() {
		ex.collectSyntaxErrors(tree.RootNode())
	}
	return result
}

// parse runs the grammar matching ext over content under the pool lock.
func (p *TypeScriptParser) parse(content []byte, ext string) *tree_sitter.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	if tsxFlavored[ext] {
		return p.tsxParser.Parse(content, nil)
	}
	return p.tsParser.Parse(content, nil)
}

// tsExtractor walks a Tree-sitter tree and accumulates imports, exports,
// and error messages into a ParsedFile.
type tsExtractor struct {
	content  []byte
	result   *types.ParsedFile
	errsSeen int
}

func (e *tsExtractor) walk(node *tree_sitter.Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "import_statement":
		e.extractImport(node)
	case "export_statement":
		e.extractExport(node)
	case "call_expression":
		e.extractCall(node)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(node.Child(i))
	}
}

func (e *tsExtractor) text(node *tree_sitter.Node) string {
	return string(e.content[node.StartByte():node.EndByte()])
}

func (e *tsExtractor) line(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// extractImport handles static import declarations, including the
// `import x = require("y")` form.
func (e *tsExtractor) extractImport(node *tree_sitter.Node) {
	src := node.ChildByFieldName("source")
	if src == nil {
		// import x = require("y")
		e.extractRequireClause(node)
		return
	}
	source := stripQuotes(e.text(src))

	var names []string
	hasDefault := false
	hasNamespace := false

	for i := uint(0); i < node.ChildCount(); i++ {
		clause := node.Child(i)
		if clause == nil || clause.Kind() != "import_clause" {
			continue
		}
		for j := uint(0); j < clause.ChildCount(); j++ {
			inner := clause.Child(j)
			if inner == nil {
				continue
			}
			switch inner.Kind() {
			case "identifier":
				hasDefault = true
				names = append(names, e.text(inner))
			case "namespace_import":
				hasNamespace = true
				names = append(names, e.namespaceName(inner))
			case "named_imports":
				names = append(names, e.specifierNames(inner, "import_specifier")...)
			}
		}
	}

	kind := types.KindES6Named
	if hasDefault {
		kind = types.KindES6Default
	} else if hasNamespace {
		kind = types.KindES6Namespace
	}

	e.addImport(types.ImportRecord{
		Source: source,
		Kind:   kind,
		Names:  names,
		Line:   e.line(node),
	})
}

// extractRequireClause handles `import x = require("y")`.
func (e *tsExtractor) extractRequireClause(node *tree_sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		clause := node.Child(i)
		if clause == nil || clause.Kind() != "import_require_clause" {
			continue
		}
		src := clause.ChildByFieldName("source")
		if src == nil {
			// Older grammar revisions leave the string unfielded.
			for j := uint(0); j < clause.ChildCount(); j++ {
				if c := clause.Child(j); c != nil && c.Kind() == "string" {
					src = c
					break
				}
			}
		}
		if src == nil {
			continue
		}
		var names []string
		for j := uint(0); j < clause.ChildCount(); j++ {
			if c := clause.Child(j); c != nil && c.Kind() == "identifier" {
				names = append(names, e.text(c))
				break
			}
		}
		e.addImport(types.ImportRecord{
			Source: stripQuotes(e.text(src)),
			Kind:   types.KindCommonJS,
			Names:  names,
			Line:   e.line(node),
		})
	}
}

// namespaceName extracts the local name from `* as foo`.
func (e *tsExtractor) namespaceName(node *tree_sitter.Node) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == "identifier" {
			return e.text(c)
		}
	}
	return "*"
}

// specifierNames collects the imported names from a named_imports node.
// For aliased specifiers the original name is captured; the exported
// side of an export_clause goes through specifierExportedNames instead.
func (e *tsExtractor) specifierNames(node *tree_sitter.Node, specKind string) []string {
	var names []string
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Kind() != specKind {
			continue
		}
		if name := spec.ChildByFieldName("name"); name != nil {
			names = append(names, e.text(name))
		}
	}
	return names
}

// specifierExportedNames collects the outward-facing names of an
// export_clause: the alias when present, the name otherwise.
func (e *tsExtractor) specifierExportedNames(node *tree_sitter.Node) []string {
	var names []string
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Kind() != "export_specifier" {
			continue
		}
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			names = append(names, e.text(alias))
			continue
		}
		if name := spec.ChildByFieldName("name"); name != nil {
			names = append(names, e.text(name))
		}
	}
	return names
}

// extractExport handles re-exports and export declarations.
func (e *tsExtractor) extractExport(node *tree_sitter.Node) {
	if src := node.ChildByFieldName("source"); src != nil {
		// export * from 'x' / export { a, b } from 'x'
		var names []string
		for i := uint(0); i < node.ChildCount(); i++ {
			c := node.Child(i)
			if c != nil && c.Kind() == "export_clause" {
				names = append(names, e.specifierExportedNames(c)...)
			}
		}
		e.addImport(types.ImportRecord{
			Source: stripQuotes(e.text(src)),
			Kind:   types.KindReExport,
			Names:  names,
			Line:   e.line(node),
		})
		e.addExports(names...)
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "default":
			e.addExports("default")
		case "function_declaration", "generator_function_declaration",
			"class_declaration", "abstract_class_declaration":
			if name := c.ChildByFieldName("name"); name != nil {
				e.addExports(e.text(name))
			}
		case "lexical_declaration", "variable_declaration":
			e.addDeclaratorNames(c)
		case "export_clause":
			e.addExports(e.specifierExportedNames(c)...)
		}
	}
}

// addDeclaratorNames collects identifiers from const/let/var declarations.
func (e *tsExtractor) addDeclaratorNames(node *tree_sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		decl := node.Child(i)
		if decl == nil || decl.Kind() != "variable_declarator" {
			continue
		}
		name := decl.ChildByFieldName("name")
		if name != nil && name.Kind() == "identifier" {
			e.addExports(e.text(name))
		}
	}
}

// extractCall handles require("x") and dynamic import("x") expressions.
func (e *tsExtractor) extractCall(node *tree_sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	var kind types.ImportKind
	switch {
	case fn.Kind() == "import":
		kind = types.KindDynamic
	case fn.Kind() == "identifier" && e.text(fn) == "require":
		kind = types.KindCommonJS
	default:
		return
	}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg == nil || arg.Kind() != "string" {
			continue
		}
		e.addImport(types.ImportRecord{
			Source: stripQuotes(e.text(arg)),
			Kind:   kind,
			Line:   e.line(node),
		})
		return
	}
}

// addImport classifies relative/external and appends the record.
// Relative sources start with "." or "/"; everything else is external,
// including scoped names starting with "@".
func (e *tsExtractor) addImport(rec types.ImportRecord) {
	rec.IsRelative = strings.HasPrefix(rec.Source, ".") || strings.HasPrefix(rec.Source, "/")
	rec.IsExternal = !rec.IsRelative
	e.result.Imports = append(e.result.Imports, rec)
}

func (e *tsExtractor) addExports(names ...string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		e.result.Exports = append(e.result.Exports, n)
	}
}

// collectSyntaxErrors records up to maxSyntaxErrors messages for ERROR
// and missing nodes in the recovered tree.
func (e *tsExtractor) collectSyntaxErrors(node *tree_sitter.Node) {
	if node == nil || e.errsSeen >= maxSyntaxErrors {
		return
	}
	if node.IsError() || node.IsMissing() {
		e.errsSeen++
		e.result.Errors = append(e.result.Errors,
			fmt.Sprintf("syntax error near line %d", e.line(node)))
		return
	}
	if !node.HasError() {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		e.collectSyntaxErrors(node.Child(i))
	}
}

// stripQuotes removes surrounding single, double, or backtick quotes from
// a string literal.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
