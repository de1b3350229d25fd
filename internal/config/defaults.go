package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/chishiki/data/db/chunks.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/chishiki/data/indices/bleve"
	}
	if cfg.Storage.GraphPath == "" {
		cfg.Storage.GraphPath = "/usr/local/var/chishiki/data/concept_graph.json"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 300
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 50
	}
	if cfg.Retrieval.DefaultLimit == 0 {
		cfg.Retrieval.DefaultLimit = 10
	}
	if cfg.Retrieval.MaxLimit == 0 {
		cfg.Retrieval.MaxLimit = 100
	}
	if cfg.Retrieval.OverFetchFactor == 0 {
		cfg.Retrieval.OverFetchFactor = 3
	}
	if cfg.Retrieval.FusionTopTerms == 0 {
		cfg.Retrieval.FusionTopTerms = 10
	}
	if cfg.Retrieval.FusionSnippet == 0 {
		cfg.Retrieval.FusionSnippet = 300
	}
	if cfg.Graph.Communities == "" {
		cfg.Graph.Communities = "modularity"
	}
	if cfg.Graph.DefaultDepth == 0 {
		cfg.Graph.DefaultDepth = 2
	}
	if cfg.Graph.MaxPathLen == 0 {
		cfg.Graph.MaxPathLen = 4
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".jsonl"}
	}
}
