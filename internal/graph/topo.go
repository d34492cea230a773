package graph

import "slices"

// ProcessingOrder returns modules ordered so that dependencies come before
// dependents (Kahn's algorithm). Ties are broken by module name so the order
// is deterministic and diffable. Modules involved in cycles are returned
// separately in the second slice, sorted by name.
func (g *Graph) ProcessingOrder() (order []string, cyclic []string) {
	// pending counts unprocessed dependencies per module.
	pending := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string)
	for _, name := range g.sortedNodes() {
		pending[name] = len(g.edges[name])
		for _, dep := range g.edges[name] {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for _, name := range g.sortedNodes() {
		if pending[name] == 0 {
			ready = append(ready, name)
		}
	}

	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		var unblocked []string
		for _, dependent := range dependents[name] {
			pending[dependent]--
			if pending[dependent] == 0 {
				unblocked = append(unblocked, dependent)
			}
		}
		// Keep the ready queue sorted so ties always break by name.
		if len(unblocked) > 0 {
			ready = append(ready, unblocked...)
			slices.Sort(ready)
		}
	}

	for _, name := range g.sortedNodes() {
		if pending[name] > 0 {
			cyclic = append(cyclic, name)
		}
	}

	return order, cyclic
}
