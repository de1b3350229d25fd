package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/chishiki/internal/models"
)

// Store persists a concept graph to a JSON file as flat node and edge lists.
// The document layout ({"nodes": [{"id", ...}], "edges": [{"source",
// "target", ...}]}) is the on-disk contract; existing saved graphs must keep
// loading across versions.
type Store struct {
	path string
}

// NewStore returns a graph store writing to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// persistedGraph is the on-disk document.
type persistedGraph struct {
	Nodes []*models.ConceptNode `json:"nodes"`
	Edges []*models.ConceptEdge `json:"edges"`
}

// Save serializes g to the store's file. Parent directories are created as
// needed. Nodes are written in insertion order, edges grouped by source node.
func (s *Store) Save(g *Graph) error {
	doc := persistedGraph{
		Nodes: make([]*models.ConceptNode, 0, g.NodeCount()),
		Edges: make([]*models.ConceptEdge, 0, g.EdgeCount()),
	}
	for _, name := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, g.Node(name))
	}
	for _, name := range g.Nodes() {
		for _, target := range g.Successors(name) {
			doc.Edges = append(doc.Edges, g.Edge(name, target))
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create graph dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write graph file: %w", err)
	}
	return nil
}

// Load reads the store's file and returns a freshly built graph. Loading is
// all-or-nothing: on any error the caller's current graph is untouched and
// the returned graph is nil. A missing file is an error; callers that treat
// absence as an empty graph should stat first.
func (s *Store) Load() (*Graph, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	var doc persistedGraph
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse graph file: %w", err)
	}

	g := New()
	for _, node := range doc.Nodes {
		if node.Name == "" {
			return nil, fmt.Errorf("parse graph file: node without id")
		}
		g.restoreNode(node)
	}
	for _, edge := range doc.Edges {
		if edge.Source == "" || edge.Target == "" {
			return nil, fmt.Errorf("parse graph file: edge without endpoints")
		}
		g.restoreEdge(edge)
	}
	return g, nil
}

// Exists reports whether the backing file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// restoreNode inserts a node with its persisted attribute values verbatim.
func (g *Graph) restoreNode(node *models.ConceptNode) {
	if node.Type == "" {
		node.Type = DefaultConceptType
	}
	if node.Sources == nil {
		node.Sources = []string{}
	}
	if node.Metadata == nil {
		node.Metadata = map[string]interface{}{}
	}
	if node.MentionCount < 1 {
		node.MentionCount = 1
	}
	if _, ok := g.nodes[node.Name]; ok {
		g.nodes[node.Name] = node
		return
	}
	g.nodes[node.Name] = node
	g.order = append(g.order, node.Name)
	g.succ[node.Name] = make(map[string]*models.ConceptEdge)
	g.pred[node.Name] = make(map[string]*models.ConceptEdge)
}

// restoreEdge inserts an edge with its persisted attribute values verbatim,
// auto-creating missing endpoints like AddRelationship does.
func (g *Graph) restoreEdge(edge *models.ConceptEdge) {
	if _, ok := g.nodes[edge.Source]; !ok {
		g.AddConcept(edge.Source, DefaultConceptType, "", nil)
	}
	if _, ok := g.nodes[edge.Target]; !ok {
		g.AddConcept(edge.Target, DefaultConceptType, "", nil)
	}
	if edge.MentionCount < 1 {
		edge.MentionCount = 1
	}
	if edge.Evidence == nil {
		edge.Evidence = []string{}
	}
	if _, ok := g.succ[edge.Source][edge.Target]; !ok {
		g.edges++
	}
	g.succ[edge.Source][edge.Target] = edge
	g.pred[edge.Target][edge.Source] = edge
}
