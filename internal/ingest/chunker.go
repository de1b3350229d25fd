package ingest

import (
	"fmt"
	"strings"

	"github.com/hyperjump/chishiki/internal/models"
)

// Chunker splits oversize chunk inputs into overlapping word-based windows.
// Records already within the window size pass through unchanged.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split windows one input into chunk-sized pieces. The original metadata is
// carried onto every piece; piece IDs derive from the input ID so re-ingesting
// the same record upserts rather than duplicates.
func (c *Chunker) Split(input *models.ChunkInput) []*models.ChunkInput {
	words := strings.Fields(input.Text)
	if len(words) == 0 {
		return nil
	}
	if c.chunkSize <= 0 || len(words) <= c.chunkSize {
		return []*models.ChunkInput{input}
	}

	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	var pieces []*models.ChunkInput
	index := 0
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, &models.ChunkInput{
			ID:       fmt.Sprintf("%s_%d", input.ID, index),
			Text:     strings.Join(words[i:end], " "),
			Metadata: input.Metadata,
		})
		index++
		if end >= len(words) {
			break
		}
	}
	return pieces
}

// SplitAll windows every input, preserving record order.
func (c *Chunker) SplitAll(inputs []*models.ChunkInput) []*models.ChunkInput {
	out := make([]*models.ChunkInput, 0, len(inputs))
	for _, input := range inputs {
		out = append(out, c.Split(input)...)
	}
	return out
}
