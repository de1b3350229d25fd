// Package storage defines durable persistence for embedded chunks. The
// in-memory vector store is rebuilt from here at startup.
package storage

import (
	"context"

	"github.com/hyperjump/chishiki/internal/models"
)

// Storage defines chunk persistence operations.
type Storage interface {
	UpsertChunk(ctx context.Context, chunk *models.Chunk) error
	UpsertChunks(ctx context.Context, chunks []*models.Chunk) error
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	// ListChunks returns all chunks in insertion order, so replaying them
	// into the vector store reproduces its tie-break ordering.
	ListChunks(ctx context.Context) ([]*models.Chunk, error)
	CountChunks(ctx context.Context) (int64, error)
	Close() error
}
