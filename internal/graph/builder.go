// Package graph builds the typed module dependency graph from parsed
// files: node creation, import resolution against the known file set,
// weighted edge collapse, degree and coupling metrics, and cycle
// detection.
package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/archlens/archlens/internal/logging"
	"github.com/archlens/archlens/pkg/types"
)

// entryPointNames are the basenames (sans extension, case-folded) that
// mark a module as an entry point.
var entryPointNames = map[string]bool{
	"index": true, "main": true, "app": true,
	"server": true, "cli": true, "entry": true,
}

// resolveExtensions are appended to a candidate path during lookup, in
// probe order.
var resolveExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".py"}

// indexSuffixes are appended after "/index" during lookup, in probe order.
var indexSuffixes = []string{"", ".ts", ".js"}

// highCouplingThreshold marks modules whose normalized coupling exceeds it.
const highCouplingThreshold = 0.7

// Build constructs the dependency graph from parsed files. Nodes are
// keyed by forward-slash root-relative path; unresolved non-external
// imports are dropped with a debug log so the graph never holds a
// dangling edge.
func Build(files []types.ParsedFile) *types.DependencyGraph {
	g := &types.DependencyGraph{
		Nodes: make(map[string]*types.ModuleNode, len(files)),
	}

	// Pass 1: one node per parsed file.
	for _, f := range files {
		g.Nodes[f.File.RelPath] = newNode(f)
	}

	// Pass 2: resolve imports into weighted edges.
	lookup := buildLookup(files)
	edges := make(map[[2]string]*types.ModuleEdge)
	externals := make(map[string]bool)

	sorted := make([]types.ParsedFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File.RelPath < sorted[j].File.RelPath })

	for _, f := range sorted {
		for _, imp := range f.Imports {
			if imp.IsExternal {
				externals[externalPackageName(imp.Source)] = true
				continue
			}
			targets := resolveTargets(f.File.RelPath, imp, lookup)
			if len(targets) == 0 {
				logging.Logger().WithFields(map[string]interface{}{
					"file":   f.File.RelPath,
					"source": imp.Source,
				}).Debug("unresolved import")
				continue
			}
			for _, target := range targets {
				if target == f.File.RelPath {
					continue
				}
				addEdge(edges, f.File.RelPath, target, imp.Kind)
			}
		}
	}

	g.Edges = sortedEdges(edges)
	g.Externals = sortedKeys(externals)

	computeDegrees(g)
	computeCoupling(g)
	g.Cycles = DetectCycles(g)
	return g
}

// newNode creates the ModuleNode for a parsed file. Index files take
// their parent directory's name.
func newNode(f types.ParsedFile) *types.ModuleNode {
	rel := f.File.RelPath
	base := path.Base(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))

	name := stem
	if strings.EqualFold(stem, "index") {
		if parent := path.Base(path.Dir(rel)); parent != "." && parent != "/" {
			name = parent
		}
	}

	return &types.ModuleNode{
		Path:         rel,
		Name:         name,
		Language:     f.File.Language,
		IsEntryPoint: entryPointNames[strings.ToLower(stem)],
	}
}

// buildLookup indexes every known file under up to three keys: its
// relative path, that path with the extension stripped, and -- for index
// files -- the parent directory path. Earlier files win on key clashes,
// and files are indexed in sorted order so the table is deterministic.
func buildLookup(files []types.ParsedFile) map[string]string {
	rels := make([]string, 0, len(files))
	for _, f := range files {
		rels = append(rels, f.File.RelPath)
	}
	sort.Strings(rels)

	lookup := make(map[string]string, len(rels)*2)
	put := func(key, rel string) {
		if key == "" || key == "." {
			return
		}
		if _, exists := lookup[key]; !exists {
			lookup[key] = rel
		}
	}

	for _, rel := range rels {
		put(rel, rel)

		ext := path.Ext(rel)
		stem := strings.TrimSuffix(rel, ext)
		put(stem, rel)

		if strings.EqualFold(path.Base(stem), "index") {
			put(path.Dir(rel), rel)
		}
	}
	return lookup
}

// resolveTargets maps one import to the node paths it refers to. Most
// imports resolve to at most one target; Python `from . import a, b` can
// legitimately name several sibling modules.
func resolveTargets(fromRel string, imp types.ImportRecord, lookup map[string]string) []string {
	if imp.Kind == types.KindPythonImport || imp.Kind == types.KindPythonFrom {
		return resolvePython(fromRel, imp, lookup)
	}

	candidate := candidatePath(fromRel, imp.Source)
	if target, ok := probe(candidate, lookup); ok {
		return []string{target}
	}
	return nil
}

// candidatePath computes the root-relative candidate for an import
// source: relative sources are joined onto the importing file's
// directory; anything else is treated as already root-relative.
func candidatePath(fromRel, source string) string {
	if strings.HasPrefix(source, ".") {
		return path.Join(path.Dir(fromRel), source)
	}
	return path.Clean(strings.TrimPrefix(source, "/"))
}

// probe tries the lookup table keys in order: the exact candidate, the
// candidate with its extension stripped, known source extensions
// appended, and finally index-file forms. First hit wins.
func probe(candidate string, lookup map[string]string) (string, bool) {
	if target, ok := lookup[candidate]; ok {
		return target, true
	}
	if ext := path.Ext(candidate); ext != "" {
		if target, ok := lookup[strings.TrimSuffix(candidate, ext)]; ok {
			return target, true
		}
	}
	for _, ext := range resolveExtensions {
		if target, ok := lookup[candidate+ext]; ok {
			return target, true
		}
	}
	for _, suffix := range indexSuffixes {
		if target, ok := lookup[candidate+"/index"+suffix]; ok {
			return target, true
		}
	}
	return "", false
}

// resolvePython resolves Python module references. Leading dots walk up
// from the importing file's directory (one dot = same package); the
// remaining dotted path maps onto directories. A bare-dots `from .
// import a, b` names sibling modules, so each imported name is probed
// individually.
func resolvePython(fromRel string, imp types.ImportRecord, lookup map[string]string) []string {
	source := imp.Source

	if imp.IsRelative {
		dots := 0
		for dots < len(source) && source[dots] == '.' {
			dots++
		}
		base := path.Dir(fromRel)
		for i := 1; i < dots; i++ {
			base = path.Dir(base)
		}
		remainder := strings.ReplaceAll(source[dots:], ".", "/")

		if remainder == "" {
			if imp.Kind == types.KindPythonFrom {
				return probePythonNames(base, imp.Names, lookup)
			}
			return nil
		}
		return probePythonModule(path.Join(base, remainder), lookup)
	}

	return probePythonModule(strings.ReplaceAll(source, ".", "/"), lookup)
}

// probePythonNames probes each imported name as a sibling module of dir.
func probePythonNames(dir string, names []string, lookup map[string]string) []string {
	var targets []string
	for _, name := range names {
		if name == "*" || name == "" {
			continue
		}
		targets = append(targets, probePythonModule(path.Join(dir, name), lookup)...)
	}
	return targets
}

// probePythonModule probes a module path as a file or a package
// directory with __init__.py.
func probePythonModule(candidate string, lookup map[string]string) []string {
	for _, key := range []string{candidate + ".py", candidate + "/__init__.py", candidate} {
		if target, ok := lookup[key]; ok {
			return []string{target}
		}
	}
	return nil
}

// externalPackageName reduces an external import source to its package
// name: the first two slash segments for scoped names, the first
// segment otherwise.
func externalPackageName(source string) string {
	segs := strings.Split(source, "/")
	if strings.HasPrefix(source, "@") && len(segs) >= 2 {
		return segs[0] + "/" + segs[1]
	}
	return segs[0]
}

// addEdge finds or creates the edge (source, target), increments its
// weight, and unions the import kind into its kind set.
func addEdge(edges map[[2]string]*types.ModuleEdge, source, target string, kind types.ImportKind) {
	key := [2]string{source, target}
	e, ok := edges[key]
	if !ok {
		e = &types.ModuleEdge{Source: source, Target: target}
		edges[key] = e
	}
	e.Weight++
	for _, k := range e.Kinds {
		if k == kind {
			return
		}
	}
	e.Kinds = append(e.Kinds, kind)
}

// sortedEdges returns edges ascending by (source, target), with each
// edge's kind set sorted for stable serialization.
func sortedEdges(edges map[[2]string]*types.ModuleEdge) []*types.ModuleEdge {
	out := make([]*types.ModuleEdge, 0, len(edges))
	for _, e := range edges {
		sort.Slice(e.Kinds, func(i, j int) bool { return e.Kinds[i] < e.Kinds[j] })
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// computeDegrees sums edge weights into per-node in/out degrees.
func computeDegrees(g *types.DependencyGraph) {
	for _, e := range g.Edges {
		if n, ok := g.Nodes[e.Source]; ok {
			n.OutDegree += e.Weight
		}
		if n, ok := g.Nodes[e.Target]; ok {
			n.InDegree += e.Weight
		}
	}
}

// computeCoupling normalizes per-node total degree by the maximum
// observed (at least 1), yielding coupling in [0,1].
func computeCoupling(g *types.DependencyGraph) {
	max := 1
	for _, n := range g.Nodes {
		if d := n.InDegree + n.OutDegree; d > max {
			max = d
		}
	}
	for _, n := range g.Nodes {
		n.Coupling = float64(n.InDegree+n.OutDegree) / float64(max)
	}
}

// Orphans returns the sorted paths of non-entry-point modules nothing
// imports.
func Orphans(g *types.DependencyGraph) []string {
	var orphans []string
	for p, n := range g.Nodes {
		if n.InDegree == 0 && !n.IsEntryPoint {
			orphans = append(orphans, p)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// HighCoupling returns the sorted paths of modules whose normalized
// coupling exceeds the threshold.
func HighCoupling(g *types.DependencyGraph) []string {
	var hot []string
	for p, n := range g.Nodes {
		if n.Coupling > highCouplingThreshold {
			hot = append(hot, p)
		}
	}
	sort.Strings(hot)
	return hot
}
