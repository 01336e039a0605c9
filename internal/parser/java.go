package parser

import (
	"regexp"
	"strings"

	"github.com/archlens/archlens/pkg/types"
)

var javaExtensions = extensionSet(".java")

var (
	javaImportStmt  = regexp.MustCompile(`^\s*import\s+(static\s+)?([\w.]+?)(\.\*)?\s*;`)
	javaPackageStmt = regexp.MustCompile(`^\s*package\s+([\w.]+)\s*;`)
	javaTypeDecl    = regexp.MustCompile(`\bpublic\s+(?:abstract\s+|final\s+)?(?:class|interface|enum)\s+(\w+)`)
)

// javaStandardRoots are import roots always treated as platform imports.
var javaStandardRoots = map[string]bool{
	"java":  true,
	"javax": true,
	"sun":   true,
}

// JavaParser is a lexical import and export extractor for Java sources.
type JavaParser struct{}

// NewJavaParser creates a Java parser.
func NewJavaParser() *JavaParser {
	return &JavaParser{}
}

// CanParse reports whether path is a Java file.
func (p *JavaParser) CanParse(path string) bool {
	return hasExtension(javaExtensions, path)
}

// Parse recognizes `import [static] dotted.name[.*];` statements and
// public type declarations. For wildcard imports the source is the
// dotted prefix and Names is ["*"]; otherwise Names is the last dotted
// segment.
func (p *JavaParser) Parse(content []byte, file types.SourceFile) types.ParsedFile {
	result := types.ParsedFile{File: file}

	var pkgRoot string
	lines := strings.Split(string(content), "\n")
	inComment := false

	for i, raw := range lines {
		line, still := goStripComments(raw, inComment)
		inComment = still

		if pkgRoot == "" {
			if m := javaPackageStmt.FindStringSubmatch(line); m != nil {
				pkgRoot = firstDottedSegment(m[1])
			}
		}

		if m := javaImportStmt.FindStringSubmatch(line); m != nil {
			source := m[2]
			names := []string{lastDottedSegment(source)}
			if m[3] != "" {
				names = []string{"*"}
			}
			result.Imports = append(result.Imports, types.ImportRecord{
				Source:     source,
				Kind:       types.KindJavaImport,
				Names:      names,
				IsRelative: false,
				IsExternal: javaIsExternal(source, pkgRoot),
				Line:       i + 1,
			})
			continue
		}

		for _, m := range javaTypeDecl.FindAllStringSubmatch(line, -1) {
			result.Exports = append(result.Exports, m[1])
		}
	}

	return result
}

// javaIsExternal: external iff the import root is a standard platform
// prefix, or its top-level segment differs from the file's package root.
func javaIsExternal(source, pkgRoot string) bool {
	root := firstDottedSegment(source)
	if javaStandardRoots[root] || strings.HasPrefix(source, "com.sun.") || source == "com.sun" {
		return true
	}
	return root != pkgRoot
}

func firstDottedSegment(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

func lastDottedSegment(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}
