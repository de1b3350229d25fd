package graph

import "github.com/hyperjump/chishiki/internal/models"

// ExpandConcept walks outward from name up to depth hops, treating edges as
// undirected: both successors and predecessors count as reachable. Each node
// is visited at most once, so the result is a BFS frontier with exactly one
// path per related node, reconstructed from parent pointers. An absent name
// yields an empty result, not an error.
//
// Note the asymmetry with FindPaths, which follows edge direction: expansion
// answers "what is connected", paths answer "what leads to what".
func (g *Graph) ExpandConcept(name string, depth int) *models.ExpansionResult {
	result := &models.ExpansionResult{
		Concept: name,
		Related: []string{},
		Paths:   [][]string{},
	}
	root, ok := g.nodes[name]
	if !ok {
		return result
	}
	result.EntityType = root.Type
	if depth <= 0 {
		return result
	}

	parent := map[string]string{name: ""}
	queue := []string{name}
	depths := map[string]int{name: 0}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if depths[current] >= depth {
			continue
		}
		for _, nb := range g.neighbors(current) {
			if _, visited := parent[nb]; visited {
				continue
			}
			parent[nb] = current
			depths[nb] = depths[current] + 1
			result.Related = append(result.Related, nb)
			result.Paths = append(result.Paths, reconstructPath(parent, nb))
			queue = append(queue, nb)
		}
	}
	return result
}

// reconstructPath walks parent pointers from node back to the BFS root and
// returns the root-to-node path.
func reconstructPath(parent map[string]string, node string) []string {
	var rev []string
	for n := node; n != ""; n = parent[n] {
		rev = append(rev, n)
	}
	path := make([]string, len(rev))
	for i, n := range rev {
		path[len(rev)-1-i] = n
	}
	return path
}

// FindPaths enumerates all simple directed paths from source to target with at
// most maxLength edges, in deterministic (sorted-neighbor) order. Absent
// endpoints or no path within the bound yield an empty list, not an error.
func (g *Graph) FindPaths(source, target string, maxLength int) [][]string {
	paths := [][]string{}
	if !g.HasConcept(source) || !g.HasConcept(target) || maxLength <= 0 {
		return paths
	}
	onPath := map[string]bool{source: true}
	stack := []string{source}

	var walk func(current string)
	walk = func(current string) {
		if current == target {
			path := make([]string, len(stack))
			copy(path, stack)
			paths = append(paths, path)
			return
		}
		if len(stack)-1 >= maxLength {
			return
		}
		for _, next := range sortedKeys(g.succ[current]) {
			if onPath[next] {
				continue
			}
			onPath[next] = true
			stack = append(stack, next)
			walk(next)
			stack = stack[:len(stack)-1]
			onPath[next] = false
		}
	}
	walk(source)
	return paths
}
