package config

import (
	"maps"
	"slices"
)

// FindCycles returns the sorted names of every node that lies on at least one
// cycle of graph. Edges to names that are not keys of graph are leaves.
//
// Each start node gets its own traversal state, so repeated calls on the same
// graph return the same result.
func FindCycles(graph map[string][]string) []string {
	found := make(map[string]struct{})

	for _, start := range slices.Sorted(maps.Keys(graph)) {
		search := cycleSearch{
			graph:  graph,
			onPath: make(map[string]int),
			done:   make(map[string]struct{}),
			found:  found,
		}
		search.visit(start)
	}

	return slices.Sorted(maps.Keys(found))
}

type cycleSearch struct {
	graph map[string][]string
	// onPath maps the nodes of the current path to their index in path.
	onPath map[string]int
	path   []string
	done   map[string]struct{}
	found  map[string]struct{}
}

func (c *cycleSearch) visit(node string) {
	c.onPath[node] = len(c.path)
	c.path = append(c.path, node)

	for _, next := range c.graph[node] {
		if idx, ok := c.onPath[next]; ok {
			for _, member := range c.path[idx:] {
				c.found[member] = struct{}{}
			}

			continue
		}

		if _, ok := c.done[next]; ok {
			continue
		}

		if _, ok := c.graph[next]; !ok {
			continue
		}

		c.visit(next)
	}

	c.path = c.path[:len(c.path)-1]
	delete(c.onPath, node)
	c.done[node] = struct{}{}
}
