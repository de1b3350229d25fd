package graph

import (
	"sort"

	"github.com/hyperjump/chishiki/internal/models"
)

// SuggestRelated scores every concept adjacent to the input concepts by
// accumulating edge weights over both successor and predecessor edges, drops
// the inputs themselves, and returns the top n by score. Ties keep
// first-discovered order (inputs in the given order, neighbors sorted), so
// output is deterministic. Unknown input concepts contribute nothing.
func (g *Graph) SuggestRelated(concepts []string, n int) []models.Suggestion {
	if n <= 0 {
		return []models.Suggestion{}
	}
	inputs := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		inputs[c] = true
	}

	scores := make(map[string]float64)
	discovered := make([]string, 0)
	accumulate := func(neighbor string, weight float64) {
		if inputs[neighbor] {
			return
		}
		if _, ok := scores[neighbor]; !ok {
			discovered = append(discovered, neighbor)
		}
		scores[neighbor] += weight
	}

	for _, concept := range concepts {
		if !g.HasConcept(concept) {
			continue
		}
		for _, nb := range sortedKeys(g.succ[concept]) {
			accumulate(nb, g.succ[concept][nb].Weight)
		}
		for _, nb := range sortedKeys(g.pred[concept]) {
			accumulate(nb, g.pred[concept][nb].Weight)
		}
	}

	suggestions := make([]models.Suggestion, 0, len(discovered))
	for _, name := range discovered {
		suggestions = append(suggestions, models.Suggestion{Concept: name, Score: scores[name]})
	}
	sort.SliceStable(suggestions, func(i, j int) bool { return suggestions[i].Score > suggestions[j].Score })
	if len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	return suggestions
}
