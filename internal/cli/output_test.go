package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/chishiki/internal/keyword"
	"github.com/hyperjump/chishiki/internal/models"
)

func TestWriteResultsText(t *testing.T) {
	results := []*models.SearchResult{
		{ID: "c1", Text: "canonical tags", Metadata: models.ChunkMetadata{Source: "guide"}, Similarity: 0.91},
	}
	var buf bytes.Buffer
	if err := WriteResults(&buf, results, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "c1") || !strings.Contains(out, "0.910") || !strings.Contains(out, "guide") {
		t.Errorf("output = %q", out)
	}
}

func TestWriteResultsJSON(t *testing.T) {
	results := []*models.SearchResult{{ID: "c1", Similarity: 0.5}}
	var buf bytes.Buffer
	if err := WriteResults(&buf, results, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded []*models.SearchResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != "c1" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, []*models.SearchResult{}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No results") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteResultsFusion(t *testing.T) {
	fused := &models.FusionResult{
		Synthesis: "[guide] canonical tags",
		Sources:   []string{"guide"},
		TopTerms:  []string{"canonical"},
	}
	var buf bytes.Buffer
	if err := WriteResults(&buf, fused, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "[guide] canonical tags") || !strings.Contains(out, "Top terms: canonical") {
		t.Errorf("output = %q", out)
	}
}

func TestWriteResultsHybridAndKeyword(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResults(&buf, []*keyword.KeywordResult{{ID: "c1", Score: 1.2}}, OutputText)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "c1") {
		t.Errorf("keyword output = %q", buf.String())
	}

	buf.Reset()
	err = WriteResults(&buf, []*models.HybridResult{
		{ID: "c2", Score: 0.75, KeywordScore: 0.5, SemanticScore: 1.0},
	}, OutputText)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "keyword 0.500") {
		t.Errorf("hybrid output = %q", buf.String())
	}
}

func TestWriteResultsUnsupportedType(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, 42, OutputText); err == nil {
		t.Error("unsupported type should error")
	}
}

func TestWriteExpansion(t *testing.T) {
	expansion := &models.ExpansionResult{
		Concept: "link building",
		Related: []string{"authority"},
		Paths:   [][]string{{"link building", "authority"}},
	}
	var buf bytes.Buffer
	WriteExpansion(&buf, expansion)
	out := buf.String()
	if !strings.Contains(out, "link building -> authority") {
		t.Errorf("output = %q", out)
	}
}

func TestWriteSuggestions(t *testing.T) {
	var buf bytes.Buffer
	WriteSuggestions(&buf, []models.Suggestion{{Concept: "authority", Score: 0.9}})
	if !strings.Contains(buf.String(), "authority") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	WriteSuggestions(&buf, nil)
	if !strings.Contains(buf.String(), "No suggestions") {
		t.Errorf("output = %q", buf.String())
	}
}
