// Package knowledge provides the vector knowledge store and its retrieval
// strategies: exact top-k semantic search, diversity-aware multi-source
// retrieval, and cross-source extractive fusion.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/chishiki/internal/models"
)

// ErrDimensionMismatch is returned when a vector's length disagrees with the
// store's fixed dimension. The store is left unchanged.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Store holds embedded chunks and answers nearest-neighbor queries by cosine
// similarity. Search is a brute-force linear scan; the corpus here is small
// enough that exact top-k is cheaper than maintaining an approximate index.
type Store struct {
	dimensions int
	chunks     []*models.Chunk // insertion order, stable tie-break for equal scores
	byID       map[string]int  // id -> position in chunks
	mu         sync.RWMutex
}

// NewStore creates a store with the given fixed embedding dimension.
func NewStore(dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &Store{
		dimensions: dimensions,
		chunks:     make([]*models.Chunk, 0),
		byID:       make(map[string]int),
	}, nil
}

// Dimensions returns the fixed embedding dimension.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Upsert inserts a chunk or, when the id already exists, overwrites the record
// in place. Overwriting keeps the original insertion position, so tie-break
// ordering is unaffected by updates.
func (s *Store) Upsert(ctx context.Context, chunk *models.Chunk) error {
	if len(chunk.Vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(chunk.Vector), s.dimensions)
	}
	vec := make([]float32, s.dimensions)
	copy(vec, chunk.Vector)
	stored := &models.Chunk{
		ID:       chunk.ID,
		Text:     chunk.Text,
		Metadata: chunk.Metadata,
		Vector:   vec,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if pos, ok := s.byID[chunk.ID]; ok {
		s.chunks[pos] = stored
		return nil
	}
	s.byID[chunk.ID] = len(s.chunks)
	s.chunks = append(s.chunks, stored)
	return nil
}

// UpsertBatch upserts chunks in order, stopping at the first error.
func (s *Store) UpsertBatch(ctx context.Context, chunks []*models.Chunk) error {
	for _, ch := range chunks {
		if err := s.Upsert(ctx, ch); err != nil {
			return fmt.Errorf("upsert %s: %w", ch.ID, err)
		}
	}
	return nil
}

// Search returns up to k chunks ranked by cosine similarity to query,
// descending. Equal similarities keep insertion order. An empty store returns
// an empty slice, not an error.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]*models.SearchResult, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), s.dimensions)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 || len(s.chunks) == 0 {
		return []*models.SearchResult{}, nil
	}

	results := make([]*models.SearchResult, len(s.chunks))
	for i, ch := range s.chunks {
		results[i] = &models.SearchResult{
			ID:         ch.ID,
			Text:       ch.Text,
			Metadata:   ch.Metadata,
			Similarity: Cosine(query, ch.Vector),
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Count returns the number of stored chunks.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// MetadataValues returns the sorted set of distinct values the stored chunks
// carry for the given metadata key. Empty values are skipped.
func (s *Store) MetadataValues(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	for _, ch := range s.chunks {
		if v := ch.Metadata.Get(key); v != "" {
			seen[v] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
