package layout

import (
	"sort"

	"github.com/archlens/archlens/pkg/types"
)

// MinimizeCrossings reorders each layer (from the second onward) by the
// barycenter heuristic: a node's sort key is the mean index of its
// inbound neighbors in the previous layer. Nodes with no in-neighbors in
// the previous layer keep their relative order at the end. One sweep; a
// quality pass, not a correctness requirement.
func MinimizeCrossings(orders [][]string, edges []*types.ModuleEdge) [][]string {
	// in-neighbors per target node.
	sources := make(map[string][]string)
	for _, e := range edges {
		sources[e.Target] = append(sources[e.Target], e.Source)
	}

	out := make([][]string, len(orders))
	if len(orders) > 0 {
		out[0] = append([]string(nil), orders[0]...)
	}

	for li := 1; li < len(orders); li++ {
		prevIndex := make(map[string]int, len(out[li-1]))
		for i, m := range out[li-1] {
			prevIndex[m] = i
		}

		type keyed struct {
			module string
			center float64
			hasKey bool
			pos    int
		}
		row := make([]keyed, len(orders[li]))
		for i, m := range orders[li] {
			sum, n := 0.0, 0
			for _, src := range sources[m] {
				if idx, ok := prevIndex[src]; ok {
					sum += float64(idx)
					n++
				}
			}
			row[i] = keyed{module: m, pos: i}
			if n > 0 {
				row[i].center = sum / float64(n)
				row[i].hasKey = true
			}
		}

		sort.SliceStable(row, func(a, b int) bool {
			if row[a].hasKey != row[b].hasKey {
				return row[a].hasKey
			}
			if !row[a].hasKey {
				return row[a].pos < row[b].pos
			}
			if row[a].center != row[b].center {
				return row[a].center < row[b].center
			}
			return row[a].pos < row[b].pos
		})

		out[li] = make([]string, len(row))
		for i, k := range row {
			out[li][i] = k.module
		}
	}

	return out
}
