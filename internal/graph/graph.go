// Package graph implements the weighted directed concept graph: merge-on-insert
// nodes and edges, bounded expansion, simple-path search, centrality,
// community grouping, and relevance-ranked suggestions.
package graph

import (
	"sort"

	"github.com/hyperjump/chishiki/internal/models"
	"github.com/hyperjump/chishiki/pkg/utils"
)

// DefaultConceptType is assigned to nodes created without an explicit type,
// including endpoints auto-created by AddRelationship.
const DefaultConceptType = "general"

// Graph is a directed weighted graph over concept names with O(1) neighbor
// lookup in both directions. The graph is additive: nodes and edges are only
// ever created or merged, never deleted.
type Graph struct {
	nodes map[string]*models.ConceptNode
	order []string // node insertion order
	succ  map[string]map[string]*models.ConceptEdge
	pred  map[string]map[string]*models.ConceptEdge
	edges int
}

// New returns an empty concept graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*models.ConceptNode),
		succ:  make(map[string]map[string]*models.ConceptEdge),
		pred:  make(map[string]map[string]*models.ConceptEdge),
	}
}

// AddConcept adds a concept node or merges into an existing one: the mention
// count increments and the source is recorded if new. Type and metadata are
// set only on first insert. Empty conceptType defaults to "general".
func (g *Graph) AddConcept(name, conceptType, source string, metadata map[string]interface{}) {
	if node, ok := g.nodes[name]; ok {
		node.MentionCount++
		if source != "" && !utils.Contains(node.Sources, source) {
			node.Sources = append(node.Sources, source)
		}
		return
	}
	if conceptType == "" {
		conceptType = DefaultConceptType
	}
	sources := []string{}
	if source != "" {
		sources = append(sources, source)
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	g.nodes[name] = &models.ConceptNode{
		Name:         name,
		Type:         conceptType,
		Sources:      sources,
		Metadata:     metadata,
		MentionCount: 1,
	}
	g.order = append(g.order, name)
	g.succ[name] = make(map[string]*models.ConceptEdge)
	g.pred[name] = make(map[string]*models.ConceptEdge)
}

// AddRelationship adds a directed edge or merges into an existing one for the
// same (source, target) pair: weight takes the maximum, the mention count
// increments, and evidence is appended if not already present. Missing
// endpoints are auto-created. Weight is clamped to [0,1].
func (g *Graph) AddRelationship(source, target, relationship string, weight float64, evidence string) {
	if _, ok := g.nodes[source]; !ok {
		g.AddConcept(source, DefaultConceptType, "", nil)
	}
	if _, ok := g.nodes[target]; !ok {
		g.AddConcept(target, DefaultConceptType, "", nil)
	}
	weight = utils.Clamp01(weight)

	if edge, ok := g.succ[source][target]; ok {
		if weight > edge.Weight {
			edge.Weight = weight
		}
		edge.MentionCount++
		if evidence != "" && !utils.Contains(edge.Evidence, evidence) {
			edge.Evidence = append(edge.Evidence, evidence)
		}
		return
	}

	ev := []string{}
	if evidence != "" {
		ev = append(ev, evidence)
	}
	edge := &models.ConceptEdge{
		Source:       source,
		Target:       target,
		Relationship: relationship,
		Weight:       weight,
		MentionCount: 1,
		Evidence:     ev,
	}
	g.succ[source][target] = edge
	g.pred[target][source] = edge
	g.edges++
}

// HasConcept reports whether name exists in the graph.
func (g *Graph) HasConcept(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Node returns the node for name, or nil if absent.
func (g *Graph) Node(name string) *models.ConceptNode {
	return g.nodes[name]
}

// Edge returns the edge from source to target, or nil if absent.
func (g *Graph) Edge(source, target string) *models.ConceptEdge {
	if m, ok := g.succ[source]; ok {
		return m[target]
	}
	return nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Nodes returns node names in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Successors returns the targets of edges leaving name, sorted by name.
func (g *Graph) Successors(name string) []string {
	return sortedKeys(g.succ[name])
}

// Predecessors returns the sources of edges entering name, sorted by name.
func (g *Graph) Predecessors(name string) []string {
	return sortedKeys(g.pred[name])
}

// neighbors returns the undirected neighborhood of name (successors and
// predecessors merged), sorted by name for deterministic traversal.
func (g *Graph) neighbors(name string) []string {
	seen := make(map[string]bool, len(g.succ[name])+len(g.pred[name]))
	for n := range g.succ[name] {
		seen[n] = true
	}
	for n := range g.pred[name] {
		seen[n] = true
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Stats returns node/edge counts, density, and the ten most-mentioned concepts.
func (g *Graph) Stats() models.GraphStats {
	n := len(g.nodes)
	stats := models.GraphStats{Nodes: n, Edges: g.edges}
	if n > 1 {
		stats.Density = float64(g.edges) / float64(n*(n-1))
	}
	top := make([]models.ConceptCount, 0, n)
	for _, name := range g.order {
		top = append(top, models.ConceptCount{Name: name, Mentions: g.nodes[name].MentionCount})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Mentions > top[j].Mentions })
	if len(top) > 10 {
		top = top[:10]
	}
	stats.TopConcepts = top
	return stats
}

func sortedKeys(m map[string]*models.ConceptEdge) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
