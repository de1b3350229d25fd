// Package embedding turns text into fixed-dimension vectors. The engine
// treats the embedder as an opaque function; implementations here are a
// deterministic mock (default) and an ONNX model runner (requires CGO).
package embedding

import (
	"context"

	"github.com/hyperjump/chishiki/internal/config"
)

// Embedder produces vector embeddings for text. Embeddings are deterministic
// for identical input and unit-normalized.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// New selects an embedder from config: the ONNX runner when a model path is
// configured and loadable, otherwise the deterministic mock. Either way the
// result is wrapped in an LRU cache.
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	var inner Embedder = NewMockEmbedder(cfg.Dimensions)
	if cfg.ModelPath != "" {
		if onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens); err == nil {
			inner = onnx
		}
	}
	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
