package engine

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/chishiki/internal/config"
	"github.com/hyperjump/chishiki/internal/ingest"
	"github.com/hyperjump/chishiki/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "chishiki.db")
	cfg.Storage.GraphPath = filepath.Join(dir, "graph.json")
	// Empty Bleve path selects the in-memory keyword index.
	cfg.Storage.BleveIndexPath = ""
	cfg.Embedding.Dimensions = 64
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e, err := Open(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func chunkInput(id, text, source string) *models.ChunkInput {
	return &models.ChunkInput{
		ID:       id,
		Text:     text,
		Metadata: models.ChunkMetadata{Source: source},
	}
}

func seedChunks(t *testing.T, e *Engine) {
	t.Helper()
	_, err := e.IngestChunks(context.Background(), []*models.ChunkInput{
		chunkInput("c1", "canonical tags prevent duplicate content penalties", "guide-a"),
		chunkInput("c2", "sitemaps help crawlers discover new pages", "guide-a"),
		chunkInput("c3", "canonical tags consolidate ranking signals", "guide-b"),
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
}

func TestSearchReturnsRankedResults(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	seedChunks(t, e)

	results, err := e.Search(context.Background(), "canonical tags duplicate content", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("results not sorted by similarity")
	}
	if results[0].ID != "c1" {
		t.Errorf("top hit = %s, want c1", results[0].ID)
	}
}

func TestSearchDefaultAndMaxLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Retrieval.DefaultLimit = 1
	cfg.Retrieval.MaxLimit = 2
	e := newTestEngine(t, cfg)
	seedChunks(t, e)
	ctx := context.Background()

	results, err := e.Search(ctx, "canonical tags", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("default limit results = %d, want 1", len(results))
	}

	results, err = e.Search(ctx, "canonical tags", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("capped results = %d, want 2", len(results))
	}
}

func TestDiversitySearchCoversSources(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	seedChunks(t, e)

	results, err := e.DiversitySearch(context.Background(), "canonical tags", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	sources := map[string]bool{}
	for _, r := range results {
		sources[r.Metadata.Source] = true
	}
	if len(sources) != 2 {
		t.Errorf("sources covered = %d, want 2", len(sources))
	}
}

func TestFuseProducesSynthesis(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	seedChunks(t, e)

	fused, err := e.Fuse(context.Background(), "canonical tags", 2)
	if err != nil {
		t.Fatal(err)
	}
	if fused.Synthesis == "" {
		t.Error("synthesis is empty")
	}
	if len(fused.Sources) == 0 {
		t.Error("no sources reported")
	}
}

func TestKeywordSearch(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	seedChunks(t, e)

	results, err := e.KeywordSearch(context.Background(), "sitemaps", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "c2" {
		t.Fatalf("results = %+v, want single c2 hit", results)
	}
}

func TestHybridMergesBothSignals(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	seedChunks(t, e)

	results, err := e.Hybrid(context.Background(), "canonical tags", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("no hybrid results")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("hybrid results not sorted by score")
		}
	}
	top := results[0]
	if top.KeywordScore == 0 || top.SemanticScore == 0 {
		t.Errorf("top hit should score on both signals: %+v", top)
	}
}

func TestIngestAssignsMissingIDs(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	chunks, err := e.IngestChunks(context.Background(), []*models.ChunkInput{
		{Text: "no id on this one", Metadata: models.ChunkMetadata{Source: "s"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].ID == "" {
		t.Fatalf("chunk ID not assigned: %+v", chunks)
	}
}

func TestIngestWindowsOversizeText(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ingest.ChunkSize = 3
	cfg.Ingest.ChunkOverlap = 1
	e := newTestEngine(t, cfg)

	chunks, err := e.IngestChunks(context.Background(), []*models.ChunkInput{
		chunkInput("doc", "one two three four five six seven", "guide"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if chunks[0].ID != "doc_0" || chunks[0].Text != "one two three" {
		t.Errorf("first chunk = %+v", chunks[0])
	}
}

func TestIngestBatchBuildsGraph(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	batch := &ingest.Batch{
		Chunks: []*models.ChunkInput{chunkInput("c1", "schema markup enables rich results", "guide")},
		Concepts: []*models.ConceptInput{
			{Concept: "schema markup", Type: "technique", ChunkIDs: []string{"c1"}},
		},
		Relationships: []*models.RelationshipInput{
			{Source: "schema markup", Target: "rich results", Relationship: models.RelImproves, Weight: 0.8},
		},
	}
	if err := e.IngestBatch(context.Background(), batch); err != nil {
		t.Fatal(err)
	}

	expansion := e.ExpandConcept("schema markup", 1)
	related := map[string]bool{}
	for _, r := range expansion.Related {
		related[r] = true
	}
	if !related["rich results"] || !related["chunk:c1"] {
		t.Errorf("expansion related = %v", expansion.Related)
	}
}

func TestConceptOperations(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	e.AddConcept("link building", "strategy", "guide", nil)
	e.AddRelationship("link building", "authority", models.RelImproves, 0.9, "")
	e.AddRelationship("authority", "rankings", models.RelImproves, 0.7, "")

	paths := e.FindPaths("link building", "rankings", 0)
	if len(paths) != 1 {
		t.Fatalf("paths = %v", paths)
	}

	suggestions := e.SuggestRelated([]string{"link building"}, 5)
	if len(suggestions) == 0 || suggestions[0].Concept != "authority" {
		t.Errorf("suggestions = %+v", suggestions)
	}

	if len(e.Communities()) == 0 {
		t.Error("no communities detected")
	}
	if scores := e.Centrality(); scores["authority"] == 0 {
		t.Errorf("centrality = %v", scores)
	}
}

func TestStats(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	seedChunks(t, e)
	e.AddRelationship("a", "b", models.RelIsRelatedTo, 0.5, "")

	stats, err := e.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Chunks != 3 {
		t.Errorf("chunks = %d", stats.Chunks)
	}
	if stats.KeywordDocs != 3 {
		t.Errorf("keyword docs = %d", stats.KeywordDocs)
	}
	if len(stats.Sources) != 2 {
		t.Errorf("sources = %v", stats.Sources)
	}
	if stats.Graph.Nodes != 2 || stats.Graph.Edges != 1 {
		t.Errorf("graph stats = %+v", stats.Graph)
	}
}

func TestReopenRebuildsAndLoadsGraph(t *testing.T) {
	cfg := testConfig(t)

	e, err := Open(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.IngestChunks(context.Background(), []*models.ChunkInput{
		chunkInput("c1", "robots directives control crawling", "guide"),
	})
	if err != nil {
		t.Fatal(err)
	}
	e.AddRelationship("robots", "crawling", models.RelReduces, 0.6, "")
	if err := e.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened := newTestEngine(t, cfg)
	results, err := reopened.Search(context.Background(), "robots directives", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "c1" {
		t.Fatalf("rebuilt search results = %+v", results)
	}
	paths := reopened.FindPaths("robots", "crawling", 3)
	if len(paths) != 1 {
		t.Errorf("graph not restored: paths = %v", paths)
	}
}
