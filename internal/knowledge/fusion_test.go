package knowledge

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestTopTerms(t *testing.T) {
	text := "Canonical links matter. canonical canonical redirect redirect sitemap the and for with"
	got := TopTerms(text, 10)
	want := []string{"canonical", "redirect", "links", "matter.", "sitemap"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopTerms = %v, want %v", got, want)
	}
}

func TestTopTermsStopwordsAndLength(t *testing.T) {
	got := TopTerms("there would being about title tags", 10)
	for _, term := range got {
		if stopwords[term] {
			t.Errorf("stopword %q survived", term)
		}
		if len(term) < 5 {
			t.Errorf("short token %q survived", term)
		}
	}
	if len(got) != 1 || got[0] != "title" {
		t.Errorf("TopTerms = %v, want [title]", got)
	}
}

func TestTopTermsTieBreakFirstOccurrence(t *testing.T) {
	got := TopTerms("zebra apple zebra apple mango", 2)
	want := []string{"zebra", "apple"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopTerms = %v, want %v", got, want)
	}
}

func TestSynthesizerFuse(t *testing.T) {
	s, _ := NewStore(2)
	ctx := context.Background()
	_ = s.Upsert(ctx, mkChunk("a1", "canonical canonical canonical structure", "BookA", []float32{1, 0}))
	_ = s.Upsert(ctx, mkChunk("b1", "canonical redirect redirect structure", "BookB", []float32{0.9, 0.2}))
	_ = s.Upsert(ctx, mkChunk("a2", "sitemap crawling budget notes", "BookA", []float32{0.8, 0.3}))

	syn := NewSynthesizer(NewDiversityRetriever(s, 3), 0, 0)
	out, err := syn.Fuse(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.RawResults) != 2 {
		t.Fatalf("raw results = %d, want 2", len(out.RawResults))
	}
	if len(out.TopTerms) == 0 || out.TopTerms[0] != "canonical" {
		t.Errorf("top terms = %v, want canonical first", out.TopTerms)
	}
	if !strings.Contains(out.Synthesis, "[BookA]") || !strings.Contains(out.Synthesis, "[BookB]") {
		t.Errorf("synthesis missing source tags: %q", out.Synthesis)
	}
	for _, src := range []string{"BookA", "BookB"} {
		found := false
		for _, s := range out.Sources {
			if s == src {
				found = true
			}
		}
		if !found {
			t.Errorf("sources %v missing %s", out.Sources, src)
		}
	}
}

func TestSynthesizerFuseEmptyStore(t *testing.T) {
	s, _ := NewStore(2)
	syn := NewSynthesizer(NewDiversityRetriever(s, 3), 0, 0)
	out, err := syn.Fuse(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if out.Synthesis != "" || len(out.Sources) != 0 || len(out.TopTerms) != 0 || len(out.RawResults) != 0 {
		t.Errorf("expected empty fusion result, got %+v", out)
	}
}

func TestSynthesizerDeterministic(t *testing.T) {
	s, _ := NewStore(2)
	ctx := context.Background()
	_ = s.Upsert(ctx, mkChunk("1", "alpha beta gamma delta words", "A", []float32{1, 0}))
	_ = s.Upsert(ctx, mkChunk("2", "gamma delta epsilon words", "B", []float32{0.5, 0.5}))

	syn := NewSynthesizer(NewDiversityRetriever(s, 3), 0, 0)
	first, _ := syn.Fuse(ctx, []float32{1, 0}, 2)
	second, _ := syn.Fuse(ctx, []float32{1, 0}, 2)
	if first.Synthesis != second.Synthesis {
		t.Error("synthesis not deterministic")
	}
	if !reflect.DeepEqual(first.TopTerms, second.TopTerms) {
		t.Error("top terms not deterministic")
	}
	if !reflect.DeepEqual(first.Sources, second.Sources) {
		t.Error("sources not deterministic")
	}
}
