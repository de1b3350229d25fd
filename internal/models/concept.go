package models

// Relationship vocabulary for concept edges. AppearsIn is produced by the
// ingestion pipeline to link a concept to the chunks that mention it.
const (
	RelIsATypeOf   = "is_a_type_of"
	RelIsRelatedTo = "is_related_to"
	RelIsUsedFor   = "is_used_for"
	RelImproves    = "improves"
	RelReduces     = "reduces"
	RelRequires    = "requires"
	RelIsPartOf    = "is_part_of"
	RelContradicts = "contradicts"
	RelCauses      = "causes"
	RelBelongsTo   = "belongs_to"
	RelAppearsIn   = "appears_in"
)

// Relationships maps each relationship type to its semantic class.
var Relationships = map[string]string{
	RelIsATypeOf:   "hierarchical",
	RelIsRelatedTo: "associative",
	RelIsUsedFor:   "functional",
	RelImproves:    "causal_positive",
	RelReduces:     "causal_negative",
	RelRequires:    "dependency",
	RelIsPartOf:    "compositional",
	RelContradicts: "opposition",
	RelCauses:      "causal",
	RelBelongsTo:   "categorical",
	RelAppearsIn:   "occurrence",
}

// ConceptNode is a named concept tracked in the relationship graph.
type ConceptNode struct {
	Name         string                 `json:"id"`
	Type         string                 `json:"type"`
	Sources      []string               `json:"sources"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	MentionCount int                    `json:"mention_count"`
}

// ConceptEdge is a directed weighted relationship between two concepts.
type ConceptEdge struct {
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Relationship string   `json:"relationship"`
	Weight       float64  `json:"weight"`
	MentionCount int      `json:"mention_count"`
	Evidence     []string `json:"evidence,omitempty"`
}

// ExpansionResult is the output of bounded concept expansion.
type ExpansionResult struct {
	Concept    string     `json:"concept"`
	Related    []string   `json:"related"`
	Paths      [][]string `json:"paths"`
	EntityType string     `json:"entity_type,omitempty"`
}

// Suggestion is a related-concept candidate with its accumulated relevance.
type Suggestion struct {
	Concept string  `json:"concept"`
	Score   float64 `json:"relevance_score"`
}

// ConceptInput is the ingestion-contract record linking a concept to the
// chunks that mention it.
type ConceptInput struct {
	Concept  string   `json:"concept"`
	Type     string   `json:"type,omitempty"`
	Source   string   `json:"source,omitempty"`
	ChunkIDs []string `json:"chunk_ids,omitempty"`
}

// RelationshipInput is the ingestion-contract record for an explicit edge.
type RelationshipInput struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Relationship string  `json:"relationship"`
	Weight       float64 `json:"weight"`
	Evidence     string  `json:"evidence,omitempty"`
}

// GraphStats summarizes graph size and most-mentioned concepts.
type GraphStats struct {
	Nodes       int            `json:"nodes"`
	Edges       int            `json:"edges"`
	Density     float64        `json:"density"`
	TopConcepts []ConceptCount `json:"top_concepts"`
}

// ConceptCount pairs a concept name with its mention count.
type ConceptCount struct {
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
}
