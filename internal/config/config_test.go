package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9000
storage:
  database_path: ./data/chunks.db
  graph_path: ./data/graph.json
embedding:
  dimensions: 128
retrieval:
  over_fetch_factor: 5
graph:
  communities: components
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 128 {
		t.Errorf("dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Retrieval.OverFetchFactor != 5 {
		t.Errorf("over_fetch_factor = %d", cfg.Retrieval.OverFetchFactor)
	}
	if cfg.Graph.Communities != "components" {
		t.Errorf("communities = %s", cfg.Graph.Communities)
	}
	want := filepath.Join(dir, "data", "chunks.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("dimensions default = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Ingest.ChunkSize != 300 || cfg.Ingest.ChunkOverlap != 50 {
		t.Errorf("ingest defaults = %d/%d", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
	if cfg.Retrieval.OverFetchFactor != 3 {
		t.Errorf("over_fetch_factor default = %d", cfg.Retrieval.OverFetchFactor)
	}
	if cfg.Retrieval.FusionTopTerms != 10 {
		t.Errorf("fusion_top_terms default = %d", cfg.Retrieval.FusionTopTerms)
	}
	if cfg.Graph.Communities != "modularity" {
		t.Errorf("communities default = %s", cfg.Graph.Communities)
	}
	if len(cfg.Watch.Extensions) != 1 || cfg.Watch.Extensions[0] != ".jsonl" {
		t.Errorf("watch extensions default = %v", cfg.Watch.Extensions)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Server.Port = 7777

	if err := Save(path, &cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Server.Port != 7777 {
		t.Errorf("port after round-trip = %d", loaded.Server.Port)
	}
}
