package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/chishiki/internal/models"
	"github.com/hyperjump/chishiki/pkg/utils"
)

const (
	// DefaultFusionTopTerms is how many high-frequency terms fusion reports.
	DefaultFusionTopTerms = 10
	// DefaultFusionSnippet is the per-result text budget in the synthesis.
	DefaultFusionSnippet = 300
	// minTermLength filters out short tokens before frequency counting.
	minTermLength = 5
)

// Synthesizer produces a cheap extractive synthesis across multiple retrieved
// passages: high-frequency non-stopword terms plus per-source snippets. A
// stand-in for a generative summarizer, deterministic for identical input.
type Synthesizer struct {
	retriever *DiversityRetriever
	topTerms  int
	snippet   int
}

// NewSynthesizer creates a synthesizer over retriever. Non-positive topTerms
// or snippet select the defaults.
func NewSynthesizer(retriever *DiversityRetriever, topTerms, snippet int) *Synthesizer {
	if topTerms <= 0 {
		topTerms = DefaultFusionTopTerms
	}
	if snippet <= 0 {
		snippet = DefaultFusionSnippet
	}
	return &Synthesizer{retriever: retriever, topTerms: topTerms, snippet: snippet}
}

// Fuse retrieves 2*k diverse results and builds the fusion output: a
// source-tagged snippet block for the top k results, the deduplicated source
// list over all retrieved results, and the top terms by frequency.
func (s *Synthesizer) Fuse(ctx context.Context, query []float32, k int) (*models.FusionResult, error) {
	results, err := s.retriever.Retrieve(ctx, query, 2*k)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &models.FusionResult{
			Sources:    []string{},
			TopTerms:   []string{},
			RawResults: []*models.SearchResult{},
		}, nil
	}

	texts := make([]string, len(results))
	sources := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
		sources[i] = r.Metadata.Source
	}
	terms := TopTerms(strings.Join(texts, " "), s.topTerms)

	top := results
	if len(top) > k {
		top = top[:k]
	}
	blocks := make([]string, len(top))
	for i, r := range top {
		blocks[i] = fmt.Sprintf("[%s] %s", r.Metadata.Source, utils.Truncate(r.Text, s.snippet))
	}

	return &models.FusionResult{
		Synthesis:  strings.Join(blocks, "\n\n"),
		Sources:    utils.Dedupe(sources),
		TopTerms:   terms,
		RawResults: top,
	}, nil
}

// TopTerms lowercases and whitespace-tokenizes text, drops stopwords and
// tokens shorter than five characters, and returns the n most frequent
// remaining terms. Ties rank by first occurrence, so output is deterministic.
func TopTerms(text string, n int) []string {
	type termStat struct {
		term  string
		count int
		first int
	}
	counts := make(map[string]*termStat)
	order := make([]*termStat, 0)
	for i, tok := range strings.Fields(strings.ToLower(text)) {
		if len(tok) < minTermLength || stopwords[tok] {
			continue
		}
		if st, ok := counts[tok]; ok {
			st.count++
			continue
		}
		st := &termStat{term: tok, count: 1, first: i}
		counts[tok] = st
		order = append(order, st)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})
	if n > len(order) {
		n = len(order)
	}
	terms := make([]string, n)
	for i := 0; i < n; i++ {
		terms[i] = order[i].term
	}
	return terms
}
