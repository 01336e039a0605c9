package layout

import (
	"fmt"
	"math"

	"github.com/archlens/archlens/pkg/types"
)

// Fixed geometry, in diagram units.
const (
	nodeWidth     = 160
	nodeHeight    = 50
	gapX          = 30 // between columns
	gapY          = 25 // between rows
	layerGap      = 60 // between layer groups
	headerHeight  = 30 // layer title band
	layerPadding  = 20
	canvasPadding = 40
	maxColumns    = 6
)

// Stroke width bounds for edges.
const (
	minStroke = 1.0
	maxStroke = 3.0
)

// Color adjustment percentages for group and module shades.
const (
	groupLightenPct = 90
	moduleDarkenPct = 20
)

const (
	groupFontColor  = "#333333"
	moduleFontColor = "#ffffff"
)

// Options tunes the planner. MinimizeCrossings enables the barycenter
// reordering pass; the default order within a layer is centrality
// descending.
type Options struct {
	MinimizeCrossings bool
}

// Plan lays the layers out as vertical bands with an internal module
// grid, then emits one edge per resolvable graph edge. The result is a
// pure function of its input: identical analyses produce identical
// geometry.
func Plan(result *types.AnalysisResult, opts Options) *Diagram {
	d := &Diagram{}
	if result == nil || result.Graph == nil {
		d.Width = 2 * canvasPadding
		d.Height = 2 * canvasPadding
		return d
	}

	orders := layerOrders(result.Layers)
	if opts.MinimizeCrossings {
		orders = MinimizeCrossings(orders, result.Graph.Edges)
	}

	moduleCells := make(map[string]bool)
	groupIndexes := make([]int, 0, len(result.Layers))

	runningY := float64(canvasPadding)
	maxLayerWidth := 0.0

	for li, layer := range result.Layers {
		modules := orders[li]
		count := len(modules)

		cols := count
		if cols > maxColumns {
			cols = maxColumns
		}
		if cols == 0 {
			cols = 1
		}
		rows := int(math.Ceil(float64(count) / float64(cols)))
		if rows == 0 {
			rows = 1
		}

		layerWidth := float64(2*layerPadding + cols*nodeWidth + (cols-1)*gapX)
		layerHeight := float64(headerHeight + 2*layerPadding + rows*nodeHeight + (rows-1)*gapY)
		if layerWidth > maxLayerWidth {
			maxLayerWidth = layerWidth
		}

		groupID := "layer-" + layer.ID
		groupIndexes = append(groupIndexes, len(d.Nodes))
		d.Nodes = append(d.Nodes, Node{
			ID:        groupID,
			Label:     layer.Name,
			X:         canvasPadding,
			Y:         runningY,
			Width:     layerWidth,
			Height:    layerHeight,
			Fill:      Lighten(layer.Color, groupLightenPct),
			Stroke:    layer.Color,
			FontColor: groupFontColor,
			IsGroup:   true,
			Layer:     layer.ID,
		})

		for mi, module := range modules {
			row := mi / cols
			col := mi % cols
			d.Nodes = append(d.Nodes, Node{
				ID:        module,
				Label:     moduleLabel(result.Graph, module),
				X:         float64(layerPadding + col*(nodeWidth+gapX)),
				Y:         float64(headerHeight + layerPadding + row*(nodeHeight+gapY)),
				Width:     nodeWidth,
				Height:    nodeHeight,
				Fill:      layer.Color,
				Stroke:    Darken(layer.Color, moduleDarkenPct),
				FontColor: moduleFontColor,
				Parent:    groupID,
				Module:    module,
				Layer:     layer.ID,
			})
			moduleCells[module] = true
		}

		runningY += layerHeight
		if li < len(result.Layers)-1 {
			runningY += layerGap
		}
	}

	// Align every layer band to the widest one.
	for _, gi := range groupIndexes {
		d.Nodes[gi].Width = maxLayerWidth
	}

	d.Width = maxLayerWidth + 2*canvasPadding
	d.Height = runningY + canvasPadding
	if len(result.Layers) == 0 {
		d.Width = 2 * canvasPadding
		d.Height = 2 * canvasPadding
	}

	// One layout edge per graph edge whose endpoints are both placed.
	n := 0
	for _, e := range result.Graph.Edges {
		if !moduleCells[e.Source] || !moduleCells[e.Target] {
			continue
		}
		n++
		d.Edges = append(d.Edges, Edge{
			ID:          fmt.Sprintf("edge-%d", n),
			Source:      e.Source,
			Target:      e.Target,
			Weight:      e.Weight,
			StrokeWidth: strokeWidth(e.Weight),
		})
	}

	return d
}

// layerOrders copies each layer's module list so reordering passes never
// mutate the analysis result.
func layerOrders(layerList []*types.Layer) [][]string {
	orders := make([][]string, len(layerList))
	for i, layer := range layerList {
		orders[i] = append([]string(nil), layer.Modules...)
	}
	return orders
}

// moduleLabel prefers the node's display name, falling back to the path.
func moduleLabel(g *types.DependencyGraph, module string) string {
	if n, ok := g.Nodes[module]; ok && n.Name != "" {
		return n.Name
	}
	return module
}

// strokeWidth maps edge weight to a stroke: 1 + log2(weight), clamped
// to [1, 3].
func strokeWidth(weight int) float64 {
	if weight < 1 {
		weight = 1
	}
	w := 1 + math.Log2(float64(weight))
	if w < minStroke {
		return minStroke
	}
	if w > maxStroke {
		return maxStroke
	}
	return w
}
