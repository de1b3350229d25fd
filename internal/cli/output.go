// Package cli provides output formatting for the Chishiki CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/chishiki/internal/keyword"
	"github.com/hyperjump/chishiki/internal/models"
	"github.com/hyperjump/chishiki/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteResults writes a retrieval result of any supported shape to w in the
// given format. Use OutputJSON for parseable output consumable by other apps.
func WriteResults(w io.Writer, result interface{}, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	switch v := result.(type) {
	case []*models.SearchResult:
		writeSearchResults(w, v)
	case *models.FusionResult:
		writeFusionResult(w, v)
	case []*keyword.KeywordResult:
		writeKeywordResults(w, v)
	case []*models.HybridResult:
		writeHybridResults(w, v)
	default:
		return fmt.Errorf("unsupported result type %T", result)
	}
	return nil
}

func writeSearchResults(w io.Writer, results []*models.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%2d. [%.3f] %s (%s)\n", i+1, r.Similarity, r.ID, r.Metadata.Source)
		fmt.Fprintf(w, "    %s\n", utils.Truncate(r.Text, 160))
	}
}

func writeFusionResult(w io.Writer, fused *models.FusionResult) {
	if fused.Synthesis == "" {
		fmt.Fprintln(w, "No results")
		return
	}
	fmt.Fprintln(w, fused.Synthesis)
	fmt.Fprintf(w, "\nSources:   %s\n", strings.Join(fused.Sources, ", "))
	fmt.Fprintf(w, "Top terms: %s\n", strings.Join(fused.TopTerms, ", "))
}

func writeKeywordResults(w io.Writer, results []*keyword.KeywordResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%2d. [%.3f] %s\n", i+1, r.Score, r.ID)
	}
}

func writeHybridResults(w io.Writer, results []*models.HybridResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%2d. [%.3f] %s (keyword %.3f, semantic %.3f)\n",
			i+1, r.Score, r.ID, r.KeywordScore, r.SemanticScore)
	}
}

// WriteExpansion writes a concept expansion in text form.
func WriteExpansion(w io.Writer, expansion *models.ExpansionResult) {
	fmt.Fprintf(w, "Concept: %s\n", expansion.Concept)
	if expansion.EntityType != "" {
		fmt.Fprintf(w, "Type:    %s\n", expansion.EntityType)
	}
	if len(expansion.Related) == 0 {
		fmt.Fprintln(w, "No related concepts")
		return
	}
	fmt.Fprintf(w, "Related: %s\n", strings.Join(expansion.Related, ", "))
	for _, path := range expansion.Paths {
		fmt.Fprintf(w, "  %s\n", strings.Join(path, " -> "))
	}
}

// WriteSuggestions writes scored suggestions in text form.
func WriteSuggestions(w io.Writer, suggestions []models.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, "No suggestions")
		return
	}
	for _, s := range suggestions {
		fmt.Fprintf(w, "%-40s %.3f\n", s.Concept, s.Score)
	}
}
