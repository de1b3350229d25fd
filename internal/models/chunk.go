// Package models defines core data structures for chunks, concepts, and retrieval results.
package models

// ChunkMetadata carries the metadata attached to an ingested chunk.
// Source and Category are load-bearing: Source drives diversity grouping and
// Category drives enumeration; everything else rides in Extra.
type ChunkMetadata struct {
	Source   string            `json:"source"`
	Category string            `json:"category,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Get returns the metadata value for key, checking the named fields first.
func (m *ChunkMetadata) Get(key string) string {
	switch key {
	case "source":
		return m.Source
	case "category":
		return m.Category
	default:
		return m.Extra[key]
	}
}

// Chunk is a unit of ingested text with its embedding vector and metadata.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Vector   []float32     `json:"-"`
}

// ChunkInput is the ingestion-contract record for a chunk: pre-extracted text
// plus metadata, before embedding. ID may be empty; one is assigned on ingest.
type ChunkInput struct {
	ID       string        `json:"id,omitempty"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// SearchResult is a single retrieval hit.
type SearchResult struct {
	ID         string        `json:"id"`
	Text       string        `json:"text"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float64       `json:"similarity"`
}

// FusionResult is the output of cross-source extractive fusion.
type FusionResult struct {
	Synthesis  string          `json:"synthesis"`
	Sources    []string        `json:"sources"`
	TopTerms   []string        `json:"top_terms"`
	RawResults []*SearchResult `json:"raw_results"`
}

// HybridResult is a single hit from combined keyword+semantic retrieval.
type HybridResult struct {
	ID            string  `json:"id"`
	Score         float64 `json:"score"`
	KeywordScore  float64 `json:"keyword_score"`
	SemanticScore float64 `json:"semantic_score"`
}
