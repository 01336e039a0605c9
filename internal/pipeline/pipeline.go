// Package pipeline orchestrates the analysis workflow:
// scan -> parse -> graph -> layers -> health. Control flow is strictly
// forward; every stage is a deterministic function of the previous
// stage's output.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/internal/graph"
	"github.com/archlens/archlens/internal/health"
	"github.com/archlens/archlens/internal/layers"
	"github.com/archlens/archlens/internal/logging"
	"github.com/archlens/archlens/internal/parser"
	"github.com/archlens/archlens/internal/scanner"
	"github.com/archlens/archlens/pkg/types"
)

// Pipeline runs the analysis stages over one project root.
type Pipeline struct {
	cfg        *config.ProjectConfig
	registry   *parser.Registry
	onProgress ProgressFunc
}

// New creates a Pipeline. If cfg is nil, defaults are used. Returns an
// error only when no parser covers any configured extension -- with an
// empty effective registry the analysis could never produce a node.
func New(cfg *config.ProjectConfig, onProgress ProgressFunc) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if onProgress == nil {
		onProgress = func(string, string) {}
	}

	registry, err := parser.NewRegistry()
	if err != nil {
		// Tree-sitter unavailable: fatal only if TS/JS extensions were
		// the sole configured languages.
		logging.Logger().Warnf("typescript parser unavailable: %v", err)
	}
	if !registry.CoversAny(cfg.Extensions) {
		return nil, fmt.Errorf("no parser available for any configured extension %v", cfg.Extensions)
	}

	return &Pipeline{cfg: cfg, registry: registry, onProgress: onProgress}, nil
}

// Run analyzes the tree rooted at dir and returns the analysis result.
// Per-file parse failures and unresolved imports never abort the run;
// only an unreadable root is fatal.
func (p *Pipeline) Run(dir string) (*types.AnalysisResult, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve root: %w", err)
	}

	p.onProgress("scan", "Scanning files...")
	files, err := scanner.New(p.cfg).Scan(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logging.Logger().Warnf("no source files matched under %s", root)
	}

	p.onProgress("parse", fmt.Sprintf("Parsing %d files...", len(files)))
	parsed := p.parseAll(files)

	p.onProgress("graph", "Building dependency graph...")
	g := graph.Build(parsed)

	p.onProgress("layers", "Classifying layers...")
	layerList := layers.Classify(g, p.cfg)

	p.onProgress("health", "Computing health metrics...")
	summary := health.Summarize(g, layerList)

	errorCount := 0
	for _, pf := range parsed {
		if len(pf.Errors) > 0 {
			errorCount++
		}
	}

	return &types.AnalysisResult{
		Root:        root,
		Graph:       g,
		Layers:      layerList,
		GeneratedAt: time.Now().UTC(),
		FileCount:   len(files),
		EdgeCount:   len(g.Edges),
		ErrorCount:  errorCount,
		Health:      summary,
	}, nil
}

// parseAll reads and parses every file. Per-file work is independent and
// pure given the contents, so it runs on a bounded worker group; the
// output is re-sorted by relative path so the final ordering stays
// deterministic regardless of scheduling.
func (p *Pipeline) parseAll(files []types.SourceFile) []types.ParsedFile {
	var mu sync.Mutex
	parsed := make([]types.ParsedFile, 0, len(files))

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	for _, f := range files {
		f := f
		g.Go(func() error {
			content, err := os.ReadFile(f.Path)
			if err != nil {
				logging.Logger().WithField("path", f.RelPath).Debugf("read failed: %v", err)
				mu.Lock()
				parsed = append(parsed, types.ParsedFile{
					File:   f,
					Errors: []string{fmt.Sprintf("read %s: %v", f.RelPath, err)},
				})
				mu.Unlock()
				return nil
			}

			pf := p.registry.Parse(content, f)
			mu.Lock()
			parsed = append(parsed, pf)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].File.RelPath < parsed[j].File.RelPath })
	return parsed
}
