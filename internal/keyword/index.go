// Package keyword provides exact-term search over chunk text, complementing
// the semantic vector store.
package keyword

import (
	"context"

	"github.com/hyperjump/chishiki/internal/models"
)

// KeywordIndex defines keyword search operations over stored chunks.
type KeywordIndex interface {
	Index(ctx context.Context, chunk *models.Chunk) error
	IndexBatch(ctx context.Context, chunks []*models.Chunk) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
