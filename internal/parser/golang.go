package parser

import (
	"regexp"
	"strings"

	"github.com/archlens/archlens/pkg/types"
)

var goExtensions = extensionSet(".go")

var (
	goSingleImport = regexp.MustCompile(`^\s*import\s+(?:([\w.]+)\s+)?"([^"]+)"`)
	goBlockOpen    = regexp.MustCompile(`^\s*import\s*\(`)
	goBlockEntry   = regexp.MustCompile(`^\s*(?:([\w.]+)\s+)?"([^"]+)"`)
	goFuncDecl     = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Z]\w*)`)
	goTypeDecl     = regexp.MustCompile(`^type\s+([A-Z]\w*)`)
)

// goStdlib is a fixed list of standard-library package roots. Import
// paths under these roots are tagged as standard library, not external.
var goStdlib = map[string]bool{
	"archive": true, "bufio": true, "bytes": true, "cmp": true,
	"compress": true, "container": true, "context": true, "crypto": true,
	"database": true, "debug": true, "embed": true, "encoding": true,
	"errors": true, "expvar": true, "flag": true, "fmt": true, "go": true,
	"hash": true, "html": true, "image": true, "index": true, "io": true,
	"iter": true, "log": true, "maps": true, "math": true, "mime": true,
	"net": true, "os": true, "path": true, "plugin": true, "reflect": true,
	"regexp": true, "runtime": true, "slices": true, "sort": true,
	"strconv": true, "strings": true, "sync": true, "syscall": true,
	"testing": true, "text": true, "time": true, "unicode": true,
	"unsafe": true,
}

// goHostingPrefixes are well-known module hosting roots.
var goHostingPrefixes = []string{
	"github.com/", "gitlab.com/", "bitbucket.org/", "gopkg.in/",
	"golang.org/", "google.golang.org/", "go.uber.org/", "k8s.io/",
}

// GoParser is a lexical import and export extractor for Go sources.
type GoParser struct{}

// NewGoParser creates a Go parser.
func NewGoParser() *GoParser {
	return &GoParser{}
}

// CanParse reports whether path is a Go file.
func (p *GoParser) CanParse(path string) bool {
	return hasExtension(goExtensions, path)
}

// Parse recognizes the single `import "path"` form and the
// `import ( ... )` block form, plus exported top-level declarations.
func (p *GoParser) Parse(content []byte, file types.SourceFile) types.ParsedFile {
	result := types.ParsedFile{File: file}

	lines := strings.Split(string(content), "\n")
	inBlock := false
	inComment := false

	for i, raw := range lines {
		line, stillInComment := goStripComments(raw, inComment)
		inComment = stillInComment
		lineNo := i + 1

		if inBlock {
			if strings.HasPrefix(strings.TrimSpace(line), ")") {
				inBlock = false
				continue
			}
			if m := goBlockEntry.FindStringSubmatch(line); m != nil {
				result.Imports = append(result.Imports, goImport(m[1], m[2], lineNo))
			}
			continue
		}

		if goBlockOpen.MatchString(line) {
			inBlock = true
			continue
		}
		if m := goSingleImport.FindStringSubmatch(line); m != nil {
			result.Imports = append(result.Imports, goImport(m[1], m[2], lineNo))
			continue
		}

		if m := goFuncDecl.FindStringSubmatch(line); m != nil {
			result.Exports = append(result.Exports, m[1])
		} else if m := goTypeDecl.FindStringSubmatch(line); m != nil {
			result.Exports = append(result.Exports, m[1])
		}
	}

	return result
}

// goStripComments removes // line comments and tracks /* */ blocks.
func goStripComments(line string, inComment bool) (string, bool) {
	var sb strings.Builder
	i := 0
	for i < len(line) {
		if inComment {
			if end := strings.Index(line[i:], "*/"); end >= 0 {
				i += end + 2
				inComment = false
				continue
			}
			return sb.String(), true
		}
		if strings.HasPrefix(line[i:], "//") {
			return sb.String(), false
		}
		if strings.HasPrefix(line[i:], "/*") {
			inComment = true
			i += 2
			continue
		}
		sb.WriteByte(line[i])
		i++
	}
	return sb.String(), inComment
}

// goImport builds the ImportRecord for one import path with an optional
// alias. Names carries the alias when present, else the last path
// segment.
func goImport(alias, path string, line int) types.ImportRecord {
	name := alias
	if name == "" {
		segs := strings.Split(path, "/")
		name = segs[len(segs)-1]
	}

	return types.ImportRecord{
		Source:     path,
		Kind:       types.KindGoImport,
		Names:      []string{name},
		IsRelative: strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../"),
		IsExternal: goIsExternal(path),
		Line:       line,
	}
}

// goIsExternal tags module paths (dotted first segment or a known
// hosting prefix) as external. Everything else is treated as standard
// library.
func goIsExternal(path string) bool {
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		return false
	}
	first := path
	if i := strings.IndexByte(first, '/'); i >= 0 {
		first = first[:i]
	}
	if goStdlib[first] {
		return false
	}
	if strings.Contains(first, ".") {
		return true
	}
	for _, prefix := range goHostingPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
