package graph

import (
	"reflect"
	"testing"

	"github.com/hyperjump/chishiki/internal/models"
)

func TestSuggestRelated(t *testing.T) {
	g := New()
	g.AddRelationship("Meta Tags", "SEO", "is_part_of", 0.9, "")
	g.AddRelationship("Title Tag", "Meta Tags", "is_a_type_of", 1.0, "")
	g.AddRelationship("Meta Tags", "CTR", "improves", 0.4, "")

	got := g.SuggestRelated([]string{"Meta Tags"}, 5)
	want := []models.Suggestion{
		{Concept: "Title Tag", Score: 1.0},
		{Concept: "SEO", Score: 0.9},
		{Concept: "CTR", Score: 0.4},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("suggestions = %v, want %v", got, want)
	}
}

func TestSuggestExcludesInputs(t *testing.T) {
	g := New()
	g.AddRelationship("A", "B", "is_related_to", 1, "")
	g.AddRelationship("B", "C", "is_related_to", 1, "")

	for _, s := range g.SuggestRelated([]string{"A", "B"}, 5) {
		if s.Concept == "A" || s.Concept == "B" {
			t.Errorf("input concept %s in suggestions", s.Concept)
		}
	}
}

func TestSuggestAccumulatesBothDirections(t *testing.T) {
	g := New()
	// B both receives from and points at A; both weights accumulate.
	g.AddRelationship("A", "B", "improves", 0.3, "")
	g.AddRelationship("B", "A", "requires", 0.5, "")

	got := g.SuggestRelated([]string{"A"}, 5)
	if len(got) != 1 || got[0].Concept != "B" {
		t.Fatalf("suggestions = %v", got)
	}
	if got[0].Score != 0.8 {
		t.Errorf("score = %f, want 0.8", got[0].Score)
	}
}

func TestSuggestUnknownConcepts(t *testing.T) {
	g := New()
	if got := g.SuggestRelated([]string{"ghost"}, 5); len(got) != 0 {
		t.Errorf("unknown input should yield no suggestions, got %v", got)
	}
}

func TestSuggestLimit(t *testing.T) {
	g := New()
	g.AddRelationship("hub", "a", "is_related_to", 0.9, "")
	g.AddRelationship("hub", "b", "is_related_to", 0.8, "")
	g.AddRelationship("hub", "c", "is_related_to", 0.7, "")

	got := g.SuggestRelated([]string{"hub"}, 2)
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(got))
	}
	if got[0].Concept != "a" || got[1].Concept != "b" {
		t.Errorf("suggestions = %v", got)
	}
}
