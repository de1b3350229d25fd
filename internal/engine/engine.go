// Package engine ties the retrieval and graph components into one facade.
// The HTTP server and CLI talk only to the Engine.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/chishiki/internal/config"
	"github.com/hyperjump/chishiki/internal/embedding"
	"github.com/hyperjump/chishiki/internal/graph"
	"github.com/hyperjump/chishiki/internal/ingest"
	"github.com/hyperjump/chishiki/internal/keyword"
	"github.com/hyperjump/chishiki/internal/knowledge"
	"github.com/hyperjump/chishiki/internal/models"
	"github.com/hyperjump/chishiki/internal/storage"
)

// Engine owns the embedder, chunk storage, vector store, keyword index, and
// concept graph. The graph is not internally synchronized, so the engine
// serializes access to it with one RWMutex; the other components carry their
// own locks.
type Engine struct {
	storage    storage.Storage
	embedder   embedding.Embedder
	store      *knowledge.Store
	retriever  *knowledge.DiversityRetriever
	fuser      *knowledge.Synthesizer
	keyword    keyword.KeywordIndex
	graphStore *graph.Store
	chunker    *ingest.Chunker
	cfg        *config.Config
	logger     *zap.Logger

	mu          sync.RWMutex
	graph       *graph.Graph
	communities graph.CommunityAlgorithm
	centrality  graph.CentralityAlgorithm
}

// New creates an engine from already-constructed dependencies.
func New(
	store storage.Storage,
	embedder embedding.Embedder,
	keywordIndex keyword.KeywordIndex,
	graphStore *graph.Store,
	cfg *config.Config,
	logger *zap.Logger,
) (*Engine, error) {
	vectorStore, err := knowledge.NewStore(embedder.Dimensions())
	if err != nil {
		return nil, err
	}
	retriever := knowledge.NewDiversityRetriever(vectorStore, cfg.Retrieval.OverFetchFactor)

	e := &Engine{
		storage:     store,
		embedder:    embedder,
		store:       vectorStore,
		retriever:   retriever,
		fuser:       knowledge.NewSynthesizer(retriever, cfg.Retrieval.FusionTopTerms, cfg.Retrieval.FusionSnippet),
		keyword:     keywordIndex,
		graphStore:  graphStore,
		chunker:     ingest.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		cfg:         cfg,
		logger:      logger,
		graph:       graph.New(),
		communities: graph.NewCommunityAlgorithm(cfg.Graph.Communities),
		centrality:  graph.DegreeCentrality{},
	}
	return e, nil
}

// Open wires up an engine from config: SQLite chunk storage, the configured
// embedder, the Bleve keyword index, and the persisted concept graph. The
// in-memory vector store is rebuilt by replaying stored chunks.
func Open(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	var keywordIndex keyword.KeywordIndex
	if cfg.Storage.BleveIndexPath != "" {
		keywordIndex, err = keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	} else {
		keywordIndex, err = keyword.NewMemoryBleveIndex()
	}
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open keyword index: %w", err)
	}

	e, err := New(store, embedder, keywordIndex, graph.NewStore(cfg.Storage.GraphPath), cfg, logger)
	if err != nil {
		_ = store.Close()
		_ = keywordIndex.Close()
		return nil, err
	}

	ctx := context.Background()
	if err := e.rebuild(ctx); err != nil {
		_ = e.closeResources()
		return nil, fmt.Errorf("failed to rebuild indexes: %w", err)
	}
	if e.graphStore.Exists() {
		if err := e.LoadGraph(); err != nil {
			_ = e.closeResources()
			return nil, err
		}
	}
	return e, nil
}

// rebuild replays stored chunks into the vector store and keyword index.
func (e *Engine) rebuild(ctx context.Context) error {
	chunks, err := e.storage.ListChunks(ctx)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := e.store.UpsertBatch(ctx, chunks); err != nil {
		return err
	}
	if err := e.keyword.IndexBatch(ctx, chunks); err != nil {
		return err
	}
	e.logger.Info("rebuilt indexes from storage", zap.Int("chunks", len(chunks)))
	return nil
}

// clampLimit applies the configured default and maximum to a requested k.
func (e *Engine) clampLimit(k int) int {
	if k <= 0 {
		k = e.cfg.Retrieval.DefaultLimit
	}
	if max := e.cfg.Retrieval.MaxLimit; max > 0 && k > max {
		k = max
	}
	return k
}

// Search runs plain semantic top-k retrieval.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]*models.SearchResult, error) {
	k = e.clampLimit(k)
	emb, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	return e.store.Search(ctx, emb, k)
}

// DiversitySearch runs multi-source retrieval with round-robin interleaving.
func (e *Engine) DiversitySearch(ctx context.Context, query string, k int) ([]*models.SearchResult, error) {
	k = e.clampLimit(k)
	emb, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	return e.retriever.Retrieve(ctx, emb, k)
}

// Fuse runs diversity retrieval and extractive fusion over the results.
func (e *Engine) Fuse(ctx context.Context, query string, k int) (*models.FusionResult, error) {
	k = e.clampLimit(k)
	emb, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	return e.fuser.Fuse(ctx, emb, k)
}

// KeywordSearch runs exact-term search over chunk text.
func (e *Engine) KeywordSearch(ctx context.Context, query string, k int) ([]*keyword.KeywordResult, error) {
	return e.keyword.Search(ctx, query, e.clampLimit(k))
}

// Hybrid runs keyword and semantic search concurrently and merges the two
// score sets, each normalized by its own maximum, with equal weight.
func (e *Engine) Hybrid(ctx context.Context, query string, k int) ([]*models.HybridResult, error) {
	k = e.clampLimit(k)

	var (
		keywordResults  []*keyword.KeywordResult
		semanticResults []*models.SearchResult
		errChan         = make(chan error, 2)
		wg              sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results, err := e.keyword.Search(ctx, query, k*2)
		if err != nil {
			errChan <- fmt.Errorf("keyword search failed: %w", err)
			return
		}
		keywordResults = results
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		emb, err := e.embedder.Embed(ctx, query)
		if err != nil {
			errChan <- fmt.Errorf("embedding failed: %w", err)
			return
		}
		results, err := e.store.Search(ctx, emb, k*2)
		if err != nil {
			errChan <- fmt.Errorf("vector search failed: %w", err)
			return
		}
		semanticResults = results
	}()

	wg.Wait()
	close(errChan)
	for err := range errChan {
		return nil, err
	}

	keywordScores := normalizeKeyword(keywordResults)
	semanticScores := normalizeSemantic(semanticResults)

	ids := make(map[string]struct{})
	order := make([]string, 0, len(keywordScores)+len(semanticScores))
	for _, r := range keywordResults {
		if _, ok := ids[r.ID]; !ok {
			ids[r.ID] = struct{}{}
			order = append(order, r.ID)
		}
	}
	for _, r := range semanticResults {
		if _, ok := ids[r.ID]; !ok {
			ids[r.ID] = struct{}{}
			order = append(order, r.ID)
		}
	}

	merged := make([]*models.HybridResult, 0, len(order))
	for _, id := range order {
		kw := keywordScores[id]
		sem := semanticScores[id]
		merged = append(merged, &models.HybridResult{
			ID:            id,
			Score:         0.5*kw + 0.5*sem,
			KeywordScore:  kw,
			SemanticScore: sem,
		})
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

func normalizeKeyword(results []*keyword.KeywordResult) map[string]float64 {
	out := make(map[string]float64, len(results))
	var max float64
	for _, r := range results {
		if r.Score > max {
			max = r.Score
		}
	}
	if max == 0 {
		return out
	}
	for _, r := range results {
		out[r.ID] = r.Score / max
	}
	return out
}

func normalizeSemantic(results []*models.SearchResult) map[string]float64 {
	out := make(map[string]float64, len(results))
	var max float64
	for _, r := range results {
		if r.Similarity > max {
			max = r.Similarity
		}
	}
	if max == 0 {
		return out
	}
	for _, r := range results {
		out[r.ID] = r.Similarity / max
	}
	return out
}

// IngestChunks embeds and persists chunk inputs, updating storage, the vector
// store, and the keyword index. Inputs without an ID get one assigned, and
// oversize texts are windowed into multiple chunks before embedding.
// Returns the ingested chunks with their final IDs.
func (e *Engine) IngestChunks(ctx context.Context, inputs []*models.ChunkInput) ([]*models.Chunk, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	ingest.AssignIDs(inputs)
	inputs = e.chunker.SplitAll(inputs)
	if len(inputs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.Text
	}
	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	chunks := make([]*models.Chunk, len(inputs))
	for i, in := range inputs {
		chunks[i] = &models.Chunk{
			ID:       in.ID,
			Text:     in.Text,
			Metadata: in.Metadata,
			Vector:   vectors[i],
		}
	}

	if err := e.storage.UpsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to persist chunks: %w", err)
	}
	if err := e.store.UpsertBatch(ctx, chunks); err != nil {
		return nil, err
	}
	if err := e.keyword.IndexBatch(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}
	e.logger.Info("ingested chunks", zap.Int("count", len(chunks)))
	return chunks, nil
}

// IngestBatch applies a parsed record batch: chunks first, then concepts with
// their derived occurrence edges, then explicit relationships.
func (e *Engine) IngestBatch(ctx context.Context, batch *ingest.Batch) error {
	if _, err := e.IngestChunks(ctx, batch.Chunks); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rec := range batch.Concepts {
		e.graph.AddConcept(rec.Concept, rec.Type, rec.Source, nil)
		for _, edge := range ingest.AppearsInEdges(rec) {
			e.graph.AddRelationship(edge.Source, edge.Target, edge.Relationship, edge.Weight, edge.Evidence)
		}
	}
	for _, rec := range batch.Relationships {
		e.graph.AddRelationship(rec.Source, rec.Target, rec.Relationship, rec.Weight, rec.Evidence)
	}
	return nil
}

// IngestFile parses and applies one JSONL record file.
func (e *Engine) IngestFile(ctx context.Context, path string) error {
	batch, err := ingest.ReadFile(path)
	if err != nil {
		return err
	}
	if err := e.IngestBatch(ctx, batch); err != nil {
		return err
	}
	e.logger.Info("ingested file",
		zap.String("path", path),
		zap.Int("chunks", len(batch.Chunks)),
		zap.Int("concepts", len(batch.Concepts)),
		zap.Int("relationships", len(batch.Relationships)))
	return nil
}

// AddConcept inserts or merges a concept.
func (e *Engine) AddConcept(name, conceptType, source string, metadata map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph.AddConcept(name, conceptType, source, metadata)
}

// AddRelationship inserts or merges a directed weighted edge.
func (e *Engine) AddRelationship(source, target, relationship string, weight float64, evidence string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph.AddRelationship(source, target, relationship, weight, evidence)
}

// ExpandConcept returns concepts reachable within depth hops.
func (e *Engine) ExpandConcept(name string, depth int) *models.ExpansionResult {
	if depth <= 0 {
		depth = e.cfg.Graph.DefaultDepth
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.ExpandConcept(name, depth)
}

// FindPaths enumerates simple directed paths between two concepts.
func (e *Engine) FindPaths(source, target string, maxLength int) [][]string {
	if maxLength <= 0 {
		maxLength = e.cfg.Graph.MaxPathLen
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.FindPaths(source, target, maxLength)
}

// SuggestRelated scores neighbors of the given concepts by accumulated
// edge weight.
func (e *Engine) SuggestRelated(concepts []string, n int) []models.Suggestion {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.SuggestRelated(concepts, n)
}

// Communities runs the configured community detection algorithm.
func (e *Engine) Communities() [][]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.communities.Communities(e.graph)
}

// Centrality returns per-concept degree centrality.
func (e *Engine) Centrality() map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.centrality.Scores(e.graph)
}

// Stats summarizes engine contents.
type Stats struct {
	Chunks      int64             `json:"chunks"`
	Sources     []string          `json:"sources"`
	KeywordDocs uint64            `json:"keyword_docs"`
	Graph       models.GraphStats `json:"graph"`
	Communities int               `json:"communities"`
}

// Stats reports chunk, index, and graph statistics.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	chunks, err := e.storage.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := e.keyword.DocCount()
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	graphStats := e.graph.Stats()
	communities := len(e.communities.Communities(e.graph))
	e.mu.RUnlock()

	return &Stats{
		Chunks:      chunks,
		Sources:     e.store.MetadataValues("source"),
		KeywordDocs: docs,
		Graph:       graphStats,
		Communities: communities,
	}, nil
}

// SaveGraph writes the concept graph to its configured path.
func (e *Engine) SaveGraph() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graphStore.Save(e.graph)
}

// LoadGraph replaces the in-memory graph with the persisted one. On error the
// current graph is left unchanged.
func (e *Engine) LoadGraph() error {
	loaded, err := e.graphStore.Load()
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.graph = loaded
	e.mu.Unlock()
	e.logger.Info("loaded concept graph",
		zap.String("path", e.graphStore.Path()),
		zap.Int("nodes", loaded.NodeCount()),
		zap.Int("edges", loaded.EdgeCount()))
	return nil
}

// Close saves the graph and releases all resources.
func (e *Engine) Close() error {
	var firstErr error
	if e.graphStore != nil && e.graphStore.Path() != "" {
		if err := e.SaveGraph(); err != nil {
			firstErr = err
		}
	}
	if err := e.closeResources(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// closeResources releases everything without touching the persisted graph,
// so a failed open cannot clobber the graph file.
func (e *Engine) closeResources() error {
	var firstErr error
	if err := e.keyword.Close(); err != nil {
		firstErr = err
	}
	if err := e.storage.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
