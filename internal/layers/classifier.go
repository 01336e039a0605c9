// Package layers classifies modules into architectural layers via
// ordered pattern rules and infers the layer hierarchy from observed
// dependency direction.
package layers

import (
	"regexp"
	"sort"
	"strings"

	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/pkg/types"
)

// fallbackLevel is assigned to layers derived from the first path
// segment when no rule matches.
const fallbackLevel = 99

// fallbackColor is used when neither config styles nor the default
// palette know the layer.
const fallbackColor = "#bdc3c7"

// defaultPalette maps the built-in layer ids to their colors.
var defaultPalette = map[string]string{
	"frontend": "#3498db",
	"api":      "#1abc9c",
	"services": "#e74c3c",
	"database": "#9b59b6",
	"shared":   "#e67e22",
	"cli":      "#2ecc71",
	"config":   "#95a5a6",
	"types":    "#7f8c8d",
}

// rule matches a module path (lowercased, forward slashes) to a layer.
type rule struct {
	re    *regexp.Regexp
	id    string
	level int
	color string // optional color from a user grouping rule
}

// builtinRules are the default classification heuristics, applied in
// order after any user-supplied grouping rules.
var builtinRules = []rule{
	{re: segmentPattern("ui|views|pages|components|frontend|app"), id: "frontend", level: 0},
	{re: segmentPattern("api|routes|controllers|handlers|endpoints"), id: "api", level: 1},
	{re: segmentPattern("services|business|logic|core|domain"), id: "services", level: 2},
	{re: segmentPattern("db|database|models|entities|repositories|data"), id: "database", level: 3},
	{re: segmentPattern("utils|helpers|lib|common|shared"), id: "shared", level: 4},
	{re: segmentPattern("cli|commands|cmd"), id: "cli", level: 5},
	{re: segmentPattern("config|settings|conf"), id: "config", level: 6},
	{re: segmentPattern("types|interfaces|schemas"), id: "types", level: 7},
}

// segmentPattern compiles a rule matching any of the alternatives as a
// path segment or basename.
func segmentPattern(alts string) *regexp.Regexp {
	return regexp.MustCompile(`(^|/)(` + alts + `)(/|\.|$)`)
}

// Classify assigns every graph node to exactly one layer, then orders
// layers by observed dependency direction: the most depended-upon layers
// sink to the bottom (highest level). The returned slice ascends by
// level, and each layer's module list descends by centrality with ties
// broken by path.
func Classify(g *types.DependencyGraph, cfg *config.ProjectConfig) []*types.Layer {
	rules := append(userRules(cfg), builtinRules...)

	byID := make(map[string]*types.Layer)
	initialLevel := make(map[string]int)

	for _, p := range g.SortedPaths() {
		id, level, color := classifyPath(p, rules)

		layer, ok := byID[id]
		if !ok {
			layer = &types.Layer{
				ID:    id,
				Name:  layerName(id),
				Color: layerColor(id, color, cfg),
			}
			byID[id] = layer
			initialLevel[id] = level
		}
		layer.Modules = append(layer.Modules, p)
		g.Nodes[p].Layer = id
	}

	ordered := inferHierarchy(byID, initialLevel, g)
	for _, layer := range ordered {
		sortByCentrality(layer.Modules, g)
	}
	return ordered
}

// userRules converts config grouping rules from glob to regex. They keep
// their order, match case-insensitively anchored at the start, and carry
// level 0 so they outrank every built-in.
func userRules(cfg *config.ProjectConfig) []rule {
	if cfg == nil {
		return nil
	}
	var rules []rule
	for _, gr := range cfg.Grouping {
		re, err := compileGlob(gr.Pattern)
		if err != nil {
			continue
		}
		rules = append(rules, rule{
			re:    re,
			id:    slugify(gr.Label),
			level: 0,
			color: gr.Color,
		})
	}
	return rules
}

// compileGlob converts a glob to an anchored, case-insensitive regex:
// `*` matches within a path segment, `**` crosses segments, `?` matches
// one non-slash character, everything else is literal.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString(`(?i)^`)
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				sb.WriteString(`.*`)
				i++
			} else {
				sb.WriteString(`[^/]*`)
			}
		case '?':
			sb.WriteString(`[^/]`)
		default:
			sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	return regexp.Compile(sb.String())
}

// classifyPath runs the rules in order against the normalized path;
// first match wins. Without a match the first path segment names the
// layer at the fallback level.
func classifyPath(p string, rules []rule) (id string, level int, color string) {
	normalized := strings.ToLower(p)
	for _, r := range rules {
		if r.re.MatchString(normalized) {
			return r.id, r.level, r.color
		}
	}

	if i := strings.IndexByte(normalized, '/'); i > 0 {
		return normalized[:i], fallbackLevel, ""
	}
	return "root", fallbackLevel, ""
}

// layerName turns a layer id into a display name: split on hyphens and
// underscores, title-case, rejoin with spaces.
func layerName(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// layerColor resolves the layer color: explicit config style, then the
// grouping rule's color, then the default palette.
func layerColor(id, ruleColor string, cfg *config.ProjectConfig) string {
	if cfg != nil {
		if c, ok := cfg.Styles[id]; ok {
			return c
		}
	}
	if ruleColor != "" {
		return ruleColor
	}
	if c, ok := defaultPalette[id]; ok {
		return c
	}
	return fallbackColor
}

// slugify lowercases a label and collapses separators to hyphens.
func slugify(label string) string {
	slug := strings.ToLower(strings.TrimSpace(label))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, slug)
	if slug == "" {
		return "group"
	}
	return slug
}

// inferHierarchy re-levels layers by aggregate inbound weight from
// cross-layer edges: the most depended-upon layer gets the highest
// level, matching the convention that dependencies flow downward. Ties
// keep the initial rule level, then the id, for determinism.
func inferHierarchy(byID map[string]*types.Layer, initialLevel map[string]int, g *types.DependencyGraph) []*types.Layer {
	inbound := make(map[string]int, len(byID))
	for id := range byID {
		inbound[id] = 0
	}
	for _, e := range g.Edges {
		src, sok := g.Nodes[e.Source]
		dst, dok := g.Nodes[e.Target]
		if !sok || !dok || src.Layer == dst.Layer {
			continue
		}
		inbound[dst.Layer] += e.Weight
	}

	ordered := make([]*types.Layer, 0, len(byID))
	for _, layer := range byID {
		ordered = append(ordered, layer)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if inbound[a.ID] != inbound[b.ID] {
			return inbound[a.ID] < inbound[b.ID]
		}
		if initialLevel[a.ID] != initialLevel[b.ID] {
			return initialLevel[a.ID] < initialLevel[b.ID]
		}
		return a.ID < b.ID
	})
	for i, layer := range ordered {
		layer.Level = i
	}
	return ordered
}

// sortByCentrality orders module paths by total degree descending, ties
// by ascending path.
func sortByCentrality(modules []string, g *types.DependencyGraph) {
	degree := func(p string) int {
		if n, ok := g.Nodes[p]; ok {
			return n.InDegree + n.OutDegree
		}
		return 0
	}
	sort.Slice(modules, func(i, j int) bool {
		di, dj := degree(modules[i]), degree(modules[j])
		if di != dj {
			return di > dj
		}
		return modules[i] < modules[j]
	})
}
