// Package types holds the value types shared between pipeline stages:
// discovered files, parsed imports and exports, the module dependency
// graph, detected layers, and the final analysis result.
package types

import (
	"encoding/json"
	"sort"
	"time"
)

// Language identifies the source language of a file.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangJava       Language = "java"
)

// ImportKind classifies how a dependency is expressed in source.
type ImportKind string

const (
	KindES6Default   ImportKind = "es6-default"
	KindES6Named     ImportKind = "es6-named"
	KindES6Namespace ImportKind = "es6-namespace"
	KindCommonJS     ImportKind = "commonjs"
	KindDynamic      ImportKind = "dynamic"
	KindReExport     ImportKind = "re-export"
	KindPythonImport ImportKind = "python-import"
	KindPythonFrom   ImportKind = "python-from"
	KindGoImport     ImportKind = "go-import"
	KindJavaImport   ImportKind = "java-import"
)

// SourceFile describes one file selected by the scanner.
type SourceFile struct {
	Path     string   `json:"path"`    // absolute path
	RelPath  string   `json:"relPath"` // root-relative, forward slashes
	Size     int64    `json:"size"`
	Language Language `json:"language"`
}

// ImportRecord is a single dependency statement extracted from a file.
type ImportRecord struct {
	Source     string     `json:"source"` // raw source string from the file
	Kind       ImportKind `json:"kind"`
	Names      []string   `json:"names,omitempty"`
	IsRelative bool       `json:"isRelative"`
	IsExternal bool       `json:"isExternal"`
	Line       int        `json:"line"` // 1-based
}

// ParsedFile is the parser output for one source file.
type ParsedFile struct {
	File    SourceFile     `json:"file"`
	Imports []ImportRecord `json:"imports"`
	Exports []string       `json:"exports,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
}

// ModuleNode is one module (file) in the dependency graph. The relative
// path is its identity key.
type ModuleNode struct {
	Path         string   `json:"path"`
	Name         string   `json:"name"`
	Language     Language `json:"language"`
	InDegree     int      `json:"inDegree"`
	OutDegree    int      `json:"outDegree"`
	Coupling     float64  `json:"coupling"` // normalized to [0,1]
	IsEntryPoint bool     `json:"isEntryPoint"`
	Layer        string   `json:"layer,omitempty"`
}

// ModuleEdge is a weighted dependency between two modules. Parallel
// imports from the same source file to the same target collapse into one
// edge; Weight counts them and Kinds records every kind observed.
type ModuleEdge struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Weight int          `json:"weight"`
	Kinds  []ImportKind `json:"kinds"`
}

// DependencyGraph is the resolved module graph of one analysis run.
type DependencyGraph struct {
	Nodes     map[string]*ModuleNode `json:"nodes"`
	Edges     []*ModuleEdge          `json:"edges"`
	Externals []string               `json:"externals"` // sorted external package names
	Cycles    [][]string             `json:"cycles"`    // each cycle repeats its first path at the end
}

// SortedPaths returns the node keys in ascending code-point order.
func (g *DependencyGraph) SortedPaths() []string {
	paths := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Layer is a named horizontal band of modules.
type Layer struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Modules []string `json:"modules"` // centrality-descending, ties by path
	Color   string   `json:"color"`
	Level   int      `json:"level"` // 0 = topmost
}

// HealthSummary aggregates graph-level health metrics and the derived
// score, grade, and status.
type HealthSummary struct {
	AverageCoupling     float64  `json:"averageCoupling"`
	CircularDeps        int      `json:"circularDependencyCount"`
	LayerViolations     int      `json:"layerViolations"`
	MaxInDegree         int      `json:"maxInDegree"`
	MaxOutDegree        int      `json:"maxOutDegree"`
	OrphanCount         int      `json:"orphanCount"`
	EntryPointCount     int      `json:"entryPointsCount"`
	OrphanModules       []string `json:"orphanModules,omitempty"`
	HighCouplingModules []string `json:"highCouplingModules,omitempty"`
	Score               int      `json:"score"`
	Grade               string   `json:"grade"`  // A..F
	Status              string   `json:"status"` // healthy | warning | critical
}

// AnalysisResult is the final output of the analysis core.
type AnalysisResult struct {
	Root        string           `json:"root"`
	Graph       *DependencyGraph `json:"graph"`
	Layers      []*Layer         `json:"layers"`
	GeneratedAt time.Time        `json:"generatedAt"`
	FileCount   int              `json:"fileCount"`
	EdgeCount   int              `json:"edgeCount"`
	ErrorCount  int              `json:"errorCount"` // files with parse errors
	Health      *HealthSummary   `json:"health"`
}

// CanonicalJSON serializes the result with the volatile timestamp zeroed,
// so two runs over the same tree compare byte-identical.
func (r *AnalysisResult) CanonicalJSON() ([]byte, error) {
	clone := *r
	clone.GeneratedAt = time.Time{}
	return json.MarshalIndent(&clone, "", "  ")
}

// ExitError carries a specific process exit code through cobra.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}
