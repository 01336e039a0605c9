package parser

import (
	"regexp"
	"strings"

	"github.com/archlens/archlens/pkg/types"
)

var pyExtensions = extensionSet(".py", ".pyw", ".pyi")

var (
	pyTripleString = regexp.MustCompile(`(?s)""".*?"""|'''.*?'''`)
	pyImportLine   = regexp.MustCompile(`^\s*import\s+(.+)$`)
	pyFromLine     = regexp.MustCompile(`^\s*from\s+(\S+)\s+import\s+(.+)$`)
	pyAllLine      = regexp.MustCompile(`^__all__\s*=\s*[\[(]`)
	pyQuoted       = regexp.MustCompile(`["']([^"']+)["']`)
)

// PythonParser is a lexical import extractor for Python sources. Imports
// occupy a restricted grammar, so a line-oriented pass over string- and
// comment-stripped content is sufficient; the stripping pre-pass leaves
// placeholders with the same line count so line numbers survive.
type PythonParser struct{}

// NewPythonParser creates a Python parser.
func NewPythonParser() *PythonParser {
	return &PythonParser{}
}

// CanParse reports whether path has a Python extension.
func (p *PythonParser) CanParse(path string) bool {
	return hasExtension(pyExtensions, path)
}

// Parse extracts import statements and the __all__ export list.
func (p *PythonParser) Parse(content []byte, file types.SourceFile) types.ParsedFile {
	result := types.ParsedFile{File: file}

	stripped := pyStrip(string(content))
	lines := strings.Split(stripped, "\n")

	for i := 0; i < len(lines); i++ {
		logical, consumed := pyLogicalLine(lines, i)
		startLine := i + 1
		i += consumed - 1

		if m := pyFromLine.FindStringSubmatch(logical); m != nil {
			result.Imports = append(result.Imports, pyFromImport(m[1], m[2], startLine))
			continue
		}
		if m := pyImportLine.FindStringSubmatch(logical); m != nil {
			result.Imports = append(result.Imports, pyPlainImports(m[1], startLine)...)
		}
	}

	result.Exports = pyParseAll(string(content))
	return result
}

// pyStrip removes triple-quoted strings, then # comments, then
// single-line strings, replacing each with placeholders that preserve
// the original line count.
func pyStrip(src string) string {
	src = pyTripleString.ReplaceAllStringFunc(src, blankPreservingNewlines)

	// Truncate an unterminated triple-quoted string to end of input.
	if idx := strings.Index(src, `"""`); idx >= 0 {
		src = src[:idx] + blankPreservingNewlines(src[idx:])
	}
	if idx := strings.Index(src, "'''"); idx >= 0 {
		src = src[:idx] + blankPreservingNewlines(src[idx:])
	}

	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = pyStripInlineStrings(line)
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// blankPreservingNewlines replaces every non-newline byte with a space.
func blankPreservingNewlines(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] != '\n' {
			b[i] = ' '
		}
	}
	return string(b)
}

// pyStripInlineStrings blanks the contents of single- and double-quoted
// strings on one line, keeping the quotes as placeholders.
func pyStripInlineStrings(line string) string {
	var out []byte
	var quote byte
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if escaped {
				escaped = false
				out = append(out, ' ')
				continue
			}
			switch c {
			case '\\':
				escaped = true
				out = append(out, ' ')
			case quote:
				quote = 0
				out = append(out, c)
			default:
				out = append(out, ' ')
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
		}
		out = append(out, c)
	}
	return string(out)
}

// pyLogicalLine joins a parenthesized statement spanning multiple lines
// into one logical line. Returns the joined text and the number of
// physical lines consumed (at least 1).
func pyLogicalLine(lines []string, start int) (string, int) {
	line := lines[start]
	depth := strings.Count(line, "(") - strings.Count(line, ")")
	if depth <= 0 {
		return line, 1
	}
	var sb strings.Builder
	sb.WriteString(line)
	consumed := 1
	for i := start + 1; i < len(lines) && depth > 0; i++ {
		sb.WriteByte(' ')
		sb.WriteString(lines[i])
		depth += strings.Count(lines[i], "(") - strings.Count(lines[i], ")")
		consumed++
	}
	return sb.String(), consumed
}

// pyPlainImports handles `import A, B as C` producing one record per
// comma-separated module. The bound name (alias if given, else the
// top-level package) is recorded in Names.
func pyPlainImports(clause string, line int) []types.ImportRecord {
	var records []types.ImportRecord
	for _, part := range strings.Split(clause, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		module := fields[0]
		bound := module
		if i := strings.IndexByte(bound, '.'); i >= 0 {
			bound = bound[:i]
		}
		if len(fields) >= 3 && fields[1] == "as" {
			bound = fields[2]
		}
		records = append(records, types.ImportRecord{
			Source:     module,
			Kind:       types.KindPythonImport,
			Names:      []string{bound},
			IsRelative: strings.HasPrefix(module, "."),
			IsExternal: pyIsExternal(module),
			Line:       line,
		})
	}
	return records
}

// pyFromImport handles `from PKG import NAME, ...` with optional
// parentheses. Aliases are stripped; `*` is kept as a name. For
// `from . import X` the source is recorded as ".".
func pyFromImport(pkg, clause string, line int) types.ImportRecord {
	clause = strings.TrimSpace(clause)
	clause = strings.TrimPrefix(clause, "(")
	clause = strings.TrimSuffix(clause, ")")

	var names []string
	for _, part := range strings.Split(clause, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}

	return types.ImportRecord{
		Source:     pkg,
		Kind:       types.KindPythonFrom,
		Names:      names,
		IsRelative: strings.HasPrefix(pkg, "."),
		IsExternal: pyIsExternal(pkg),
		Line:       line,
	}
}

// pyIsExternal: external iff not relative and the module path is a bare
// top-level name (contains no dot). Deeper project-internal paths are
// resolved by the graph builder instead.
func pyIsExternal(module string) bool {
	if strings.HasPrefix(module, ".") {
		return false
	}
	return !strings.Contains(module, ".")
}

// pyParseAll extracts export names from a module-level __all__ list or
// tuple, which may span multiple lines.
func pyParseAll(src string) []string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if !pyAllLine.MatchString(line) {
			continue
		}
		// Join lines until brackets balance.
		depth := 0
		var sb strings.Builder
		for j := i; j < len(lines); j++ {
			l := lines[j]
			if idx := strings.IndexByte(l, '#'); idx >= 0 {
				l = l[:idx]
			}
			sb.WriteString(l)
			depth += strings.Count(l, "[") + strings.Count(l, "(")
			depth -= strings.Count(l, "]") + strings.Count(l, ")")
			if depth <= 0 {
				break
			}
		}
		var exports []string
		for _, m := range pyQuoted.FindAllStringSubmatch(sb.String(), -1) {
			exports = append(exports, m[1])
		}
		return exports
	}
	return nil
}
