// Package graph provides module dependency graph construction and analysis
// for dazzle linking.
package graph

import (
	"slices"
)

// Graph is a directed dependency graph of module names with forward edges.
type Graph struct {
	nodes map[string]struct{}
	edges map[string][]string
}

// New returns a graph with no nodes or edges.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[string][]string),
	}
}

// AddNode registers a module. Duplicate calls are no-ops.
func (g *Graph) AddNode(name string) {
	g.nodes[name] = struct{}{}
}

// AddEdge records that "from" depends on "to", meaning "to" must be
// processed before "from". Missing nodes are created implicitly.
// Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.nodes[from] = struct{}{}
	g.nodes[to] = struct{}{}

	if slices.Contains(g.edges[from], to) {
		return
	}
	g.edges[from] = append(g.edges[from], to)
}

// Dependencies returns the modules that name depends on (forward edges).
func (g *Graph) Dependencies(name string) []string {
	return g.edges[name]
}

// HasNode reports whether the module exists in the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// sortedNodes returns all nodes in lexicographic order, for deterministic
// traversal.
func (g *Graph) sortedNodes() []string {
	nodes := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		nodes = append(nodes, name)
	}
	slices.Sort(nodes)
	return nodes
}

// FindCycles returns all strongly connected components with more than one
// node, plus single nodes with a self-edge, found via Tarjan's algorithm.
// Each cycle lists its participants in dependency order. Output is
// deterministic for identical input.
func (g *Graph) FindCycles() [][]string {
	var (
		index    int
		stack    []string
		onStack  = make(map[string]bool)
		indices  = make(map[string]int)
		lowlinks = make(map[string]int)
		sccs     [][]string
	)

	var strongConnect func(name string)
	strongConnect = func(name string) {
		indices[name] = index
		lowlinks[name] = index
		index++
		stack = append(stack, name)
		onStack[name] = true

		for _, dep := range g.edges[name] {
			if _, visited := indices[dep]; !visited {
				strongConnect(dep)
				lowlinks[name] = min(lowlinks[name], lowlinks[dep])
			} else if onStack[dep] {
				lowlinks[name] = min(lowlinks[name], indices[dep])
			}
		}

		if lowlinks[name] == indices[name] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == name {
					break
				}
			}
			if len(scc) > 1 {
				// Tarjan pops dependents first; reverse so the cycle reads
				// in dependency order.
				slices.Reverse(scc)
				sccs = append(sccs, scc)
			} else if slices.Contains(g.edges[scc[0]], scc[0]) {
				sccs = append(sccs, scc)
			}
		}
	}

	for _, name := range g.sortedNodes() {
		if _, visited := indices[name]; !visited {
			strongConnect(name)
		}
	}

	return sccs
}

// HasCycles reports whether the graph contains any cycles.
func (g *Graph) HasCycles() bool {
	return len(g.FindCycles()) > 0
}
