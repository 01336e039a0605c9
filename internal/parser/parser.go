// Package parser extracts import and export relations from source files.
//
// TypeScript and JavaScript are parsed with Tree-sitter, whose error
// recovery keeps partially broken files yielding imports. Python, Go, and
// Java imports occupy a restricted top-of-file grammar, so those parsers
// are line-oriented lexical passes over comment- and string-stripped
// content.
//
// Tree-sitter parsers require CGO_ENABLED=1 and are not thread-safe;
// parse operations on the pooled parsers are serialized via a mutex.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/archlens/archlens/pkg/types"
)

// Parser is the per-language parsing contract. Parse must never panic on
// malformed input; failures are recorded in ParsedFile.Errors and the
// imports and exports reflect whatever was recovered.
type Parser interface {
	// CanParse reports whether this parser handles the file's extension.
	CanParse(path string) bool
	// Parse extracts imports and exports from content. Line numbers are
	// 1-based over the original byte content.
	Parse(content []byte, file types.SourceFile) types.ParsedFile
}

// Registry dispatches files to parsers by extension.
type Registry struct {
	parsers []Parser
}

// NewRegistry creates a registry with every built-in parser. Creating the
// Tree-sitter grammars can fail; in that case the registry is returned
// without the TypeScript/JavaScript parser and the error is reported so
// the caller can decide whether that is fatal for its extension set.
func NewRegistry() (*Registry, error) {
	r := &Registry{}

	tsParser, err := NewTypeScriptParser()
	if err == nil {
		r.parsers = append(r.parsers, tsParser)
	}
	r.parsers = append(r.parsers, NewPythonParser(), NewGoParser(), NewJavaParser())

	if err != nil {
		return r, fmt.Errorf("initialize typescript grammar: %w", err)
	}
	return r, nil
}

// ForFile returns the parser handling path's extension, or nil.
func (r *Registry) ForFile(path string) Parser {
	for _, p := range r.parsers {
		if p.CanParse(path) {
			return p
		}
	}
	return nil
}

// CoversAny reports whether at least one configured extension has a
// registered parser. An empty intersection makes the whole analysis
// pointless and is treated as fatal by the pipeline.
func (r *Registry) CoversAny(extensions []string) bool {
	for _, ext := range extensions {
		if r.ForFile("probe"+ext) != nil {
			return true
		}
	}
	return false
}

// Parse dispatches one file. Files with no matching parser become a
// ParsedFile with a recorded error, so they still turn into isolated
// graph nodes.
func (r *Registry) Parse(content []byte, file types.SourceFile) types.ParsedFile {
	p := r.ForFile(file.Path)
	if p == nil {
		return types.ParsedFile{
			File:   file,
			Errors: []string{fmt.Sprintf("no parser registered for %s", filepath.Ext(file.Path))},
		}
	}
	return p.Parse(content, file)
}

// extensionSet builds a lookup set from a list of dot-prefixed extensions.
func extensionSet(exts ...string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[e] = true
	}
	return set
}

// hasExtension reports whether path's case-folded extension is in set.
func hasExtension(set map[string]bool, path string) bool {
	return set[strings.ToLower(filepath.Ext(path))]
}
