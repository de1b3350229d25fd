package ingest

import (
	"strings"
	"testing"

	"github.com/hyperjump/chishiki/internal/models"
)

func TestChunkerSplitsOversizeInput(t *testing.T) {
	c := NewChunker(3, 1)
	input := &models.ChunkInput{
		ID:       "doc1",
		Text:     "one two three four five six seven",
		Metadata: models.ChunkMetadata{Source: "guide"},
	}
	pieces := c.Split(input)
	if len(pieces) < 2 {
		t.Fatalf("expected at least 2 pieces, got %d", len(pieces))
	}
	for i, p := range pieces {
		if p.ID != strings.TrimSpace(p.ID) || !strings.HasPrefix(p.ID, "doc1_") {
			t.Errorf("piece %d ID = %q", i, p.ID)
		}
		if p.Metadata.Source != "guide" {
			t.Errorf("piece %d lost metadata", i)
		}
		words := strings.Fields(p.Text)
		if len(words) > 3 {
			t.Errorf("piece %d has %d words", i, len(words))
		}
	}
	if pieces[0].Text != "one two three" {
		t.Errorf("first piece = %q", pieces[0].Text)
	}
	// Overlap of 1 word: second window starts at word three.
	if pieces[1].Text != "three four five" {
		t.Errorf("second piece = %q", pieces[1].Text)
	}
}

func TestChunkerPassesThroughSmallInput(t *testing.T) {
	c := NewChunker(100, 10)
	input := &models.ChunkInput{ID: "c1", Text: "short text"}
	pieces := c.Split(input)
	if len(pieces) != 1 || pieces[0] != input {
		t.Errorf("small input should pass through unchanged: %+v", pieces)
	}
}

func TestChunkerEmptyText(t *testing.T) {
	c := NewChunker(5, 1)
	if pieces := c.Split(&models.ChunkInput{ID: "d", Text: "   \n\t  "}); pieces != nil {
		t.Errorf("empty text should return nil, got %v", pieces)
	}
}

func TestChunkerSplitAllPreservesOrder(t *testing.T) {
	c := NewChunker(2, 0)
	out := c.SplitAll([]*models.ChunkInput{
		{ID: "a", Text: "w1 w2 w3"},
		{ID: "b", Text: "w4"},
	})
	if len(out) != 3 {
		t.Fatalf("pieces = %d, want 3", len(out))
	}
	if out[0].ID != "a_0" || out[1].ID != "a_1" || out[2].ID != "b" {
		t.Errorf("order = %s, %s, %s", out[0].ID, out[1].ID, out[2].ID)
	}
}
