package graph

import (
	"sort"

	"github.com/archlens/archlens/pkg/types"
)

// DetectCycles finds dependency cycles with an iterative depth-first
// traversal from each unvisited node. When a neighbor already on the
// recursion stack is reached, the current path is sliced from that
// neighbor onward and recorded with the neighbor repeated at the end.
// Traversal continues afterwards, so multiple independent cycles are
// found; overlapping rotations of the same cycle may both be reported.
//
// Nodes are interned to dense integer ids over a contiguous adjacency
// list, keeping the traversal O(V+E) and cache-friendly.
func DetectCycles(g *types.DependencyGraph) [][]string {
	paths := g.SortedPaths()
	id := make(map[string]int, len(paths))
	for i, p := range paths {
		id[p] = i
	}

	adj := make([][]int, len(paths))
	for _, e := range g.Edges {
		si, sok := id[e.Source]
		ti, tok := id[e.Target]
		if sok && tok {
			adj[si] = append(adj[si], ti)
		}
	}
	for _, neighbors := range adj {
		sort.Ints(neighbors)
	}

	var cycles [][]string
	visited := make([]bool, len(paths))
	onStack := make([]bool, len(paths))

	// frame tracks a node and the index of its next neighbor to explore.
	type frame struct {
		node int
		next int
	}

	for start := range paths {
		if visited[start] {
			continue
		}

		stack := []frame{{node: start}}
		var pathVec []int
		visited[start] = true
		onStack[start] = true
		pathVec = append(pathVec, start)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]

			if top.next < len(adj[top.node]) {
				neighbor := adj[top.node][top.next]
				top.next++

				if onStack[neighbor] {
					cycles = append(cycles, sliceCycle(pathVec, neighbor, paths))
					continue
				}
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				onStack[neighbor] = true
				pathVec = append(pathVec, neighbor)
				stack = append(stack, frame{node: neighbor})
				continue
			}

			onStack[top.node] = false
			pathVec = pathVec[:len(pathVec)-1]
			stack = stack[:len(stack)-1]
		}
	}

	return cycles
}

// sliceCycle copies the path from the first occurrence of node to the
// end and closes it by repeating the node.
func sliceCycle(pathVec []int, node int, paths []string) []string {
	start := 0
	for i, n := range pathVec {
		if n == node {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(pathVec)-start+1)
	for _, n := range pathVec[start:] {
		cycle = append(cycle, paths[n])
	}
	cycle = append(cycle, paths[node])
	return cycle
}
