// Package health derives the architecture health summary: coupling and
// degree aggregates, layer violations, and the scored grade.
package health

import (
	"math"

	"github.com/archlens/archlens/internal/graph"
	"github.com/archlens/archlens/pkg/types"
)

// Scoring thresholds and penalties.
const (
	cyclePenalty       = 3
	cyclePenaltyCap    = 30
	violationPenalty   = 3
	violationCap       = 15
	heavyHubDegree     = 50
	hubNeighborMin     = 5
	instabilityLow     = 0.1
	instabilityHigh    = 0.9
	instabilityPenalty = 3
)

// Grade boundaries on the 0-100 score.
const (
	gradeA        = 90
	gradeB        = 80
	gradeC        = 70
	gradeD        = 60
	statusHealthy = 70
	statusWarning = 50
)

// Summarize computes the health summary for a finished graph and layer
// assignment.
func Summarize(g *types.DependencyGraph, layerList []*types.Layer) *types.HealthSummary {
	s := &types.HealthSummary{
		CircularDeps:        len(g.Cycles),
		OrphanModules:       graph.Orphans(g),
		HighCouplingModules: graph.HighCoupling(g),
	}
	s.OrphanCount = len(s.OrphanModules)

	var couplingSum float64
	for _, n := range g.Nodes {
		couplingSum += n.Coupling
		if n.InDegree > s.MaxInDegree {
			s.MaxInDegree = n.InDegree
		}
		if n.OutDegree > s.MaxOutDegree {
			s.MaxOutDegree = n.OutDegree
		}
		if n.IsEntryPoint {
			s.EntryPointCount++
		}
	}
	if len(g.Nodes) > 0 {
		s.AverageCoupling = round2(couplingSum / float64(len(g.Nodes)))
	}

	s.LayerViolations = countLayerViolations(g, layerList)

	s.Score = score(g, s)
	s.Grade = grade(s.Score)
	s.Status = status(s.Score)
	return s
}

// countLayerViolations counts edges pointing "upward" against the
// inferred hierarchy: the source layer's level strictly greater than the
// target's.
func countLayerViolations(g *types.DependencyGraph, layerList []*types.Layer) int {
	level := make(map[string]int, len(layerList))
	for _, l := range layerList {
		level[l.ID] = l.Level
	}

	violations := 0
	for _, e := range g.Edges {
		src, sok := g.Nodes[e.Source]
		dst, dok := g.Nodes[e.Target]
		if !sok || !dok {
			continue
		}
		if level[src.Layer] > level[dst.Layer] {
			violations++
		}
	}
	return violations
}

// score starts at 100 and applies the penalty schedule. Tier penalties
// accumulate: a value crossing a higher tier also pays the lower ones.
func score(g *types.DependencyGraph, s *types.HealthSummary) int {
	sc := 100

	// Cycles.
	cyclePen := len(g.Cycles) * cyclePenalty
	if cyclePen > cyclePenaltyCap {
		cyclePen = cyclePenaltyCap
	}
	sc -= cyclePen

	// Mean connections per module.
	if n := len(g.Nodes); n > 0 {
		total := 0
		for _, node := range g.Nodes {
			total += node.InDegree + node.OutDegree
		}
		meanDegree := float64(total) / float64(n)
		if meanDegree > 5 {
			sc -= 5
		}
		if meanDegree > 10 {
			sc -= 10
		}
		if meanDegree > 20 {
			sc -= 5
		}
	}

	// Orphan ratio.
	if n := len(g.Nodes); n > 0 {
		ratio := float64(s.OrphanCount) / float64(n)
		if ratio > 0.1 {
			sc -= 5
		}
		if ratio > 0.3 {
			sc -= 10
		}
		if ratio > 0.5 {
			sc -= 15
		}
	}

	// Upward dependencies.
	violationPen := s.LayerViolations * violationPenalty
	if violationPen > violationCap {
		violationPen = violationCap
	}
	sc -= violationPen

	// Heavy hubs.
	if s.MaxInDegree > heavyHubDegree {
		sc -= 5
	}
	if s.MaxOutDegree > heavyHubDegree {
		sc -= 5
	}

	// Modules acting as both a dependency magnet and a dependency fan.
	hubs := countHubs(g)
	if hubs > 3 {
		sc -= 5
	} else if hubs > 0 {
		sc -= 2
	}

	// Global instability extremes.
	if inst, ok := meanInstability(g); ok && (inst < instabilityLow || inst > instabilityHigh) {
		sc -= instabilityPenalty
	}

	if sc < 0 {
		sc = 0
	}
	if sc > 100 {
		sc = 100
	}
	return sc
}

// countHubs counts modules with at least hubNeighborMin distinct inbound
// AND outbound modules.
func countHubs(g *types.DependencyGraph) int {
	in := make(map[string]int)
	out := make(map[string]int)
	for _, e := range g.Edges {
		out[e.Source]++
		in[e.Target]++
	}

	hubs := 0
	for p := range g.Nodes {
		if in[p] >= hubNeighborMin && out[p] >= hubNeighborMin {
			hubs++
		}
	}
	return hubs
}

// meanInstability averages per-module instability I = Ce/(Ca+Ce) over
// modules with at least one dependency relation. Returns ok=false when
// the graph has no connected modules.
func meanInstability(g *types.DependencyGraph) (float64, bool) {
	var sum float64
	count := 0
	for _, n := range g.Nodes {
		total := n.InDegree + n.OutDegree
		if total == 0 {
			continue
		}
		sum += float64(n.OutDegree) / float64(total)
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func grade(score int) string {
	switch {
	case score >= gradeA:
		return "A"
	case score >= gradeB:
		return "B"
	case score >= gradeC:
		return "C"
	case score >= gradeD:
		return "D"
	default:
		return "F"
	}
}

func status(score int) string {
	switch {
	case score >= statusHealthy:
		return "healthy"
	case score >= statusWarning:
		return "warning"
	default:
		return "critical"
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
