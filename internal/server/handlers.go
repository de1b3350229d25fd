package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/chishiki/internal/ingest"
	"github.com/hyperjump/chishiki/internal/models"
)

// searchRequest is the body shared by all search endpoints.
type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (s *Server) decodeSearch(w http.ResponseWriter, r *http.Request) (*searchRequest, bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return nil, false
	}
	return &req, true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("limit", req.Limit))
	results, err := s.engine.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleDiversitySearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}
	results, err := s.engine.DiversitySearch(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.logger.Error("diversity search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleFusion(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}
	fused, err := s.engine.Fuse(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.logger.Error("fusion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, fused)
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}
	results, err := s.engine.KeywordSearch(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleHybridSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}
	results, err := s.engine.Hybrid(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.logger.Error("hybrid search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

type conceptRequest struct {
	Concept  string                 `json:"concept"`
	Type     string                 `json:"type"`
	Source   string                 `json:"source"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (s *Server) handleAddConcept(w http.ResponseWriter, r *http.Request) {
	var req conceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Concept == "" {
		s.respondError(w, http.StatusBadRequest, "concept is required")
		return
	}
	s.engine.AddConcept(req.Concept, req.Type, req.Source, req.Metadata)
	s.respondJSON(w, http.StatusCreated, map[string]string{"concept": req.Concept, "status": "added"})
}

func (s *Server) handleAddRelationship(w http.ResponseWriter, r *http.Request) {
	var req models.RelationshipInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Source == "" || req.Target == "" || req.Relationship == "" {
		s.respondError(w, http.StatusBadRequest, "source, target, and relationship are required")
		return
	}
	s.engine.AddRelationship(req.Source, req.Target, req.Relationship, req.Weight, req.Evidence)
	s.respondJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (s *Server) handleExpandConcept(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	depth, _ := strconv.Atoi(r.URL.Query().Get("depth"))
	s.respondJSON(w, http.StatusOK, s.engine.ExpandConcept(name, depth))
}

func (s *Server) handleFindPaths(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source := q.Get("source")
	target := q.Get("target")
	if source == "" || target == "" {
		s.respondError(w, http.StatusBadRequest, "source and target are required")
		return
	}
	maxLength, _ := strconv.Atoi(q.Get("max_length"))
	paths := s.engine.FindPaths(source, target, maxLength)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"source": source,
		"target": target,
		"paths":  paths,
	})
}

type suggestRequest struct {
	Concepts []string `json:"concepts"`
	Limit    int      `json:"limit"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Concepts) == 0 {
		s.respondError(w, http.StatusBadRequest, "concepts are required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	suggestions := s.engine.SuggestRelated(req.Concepts, req.Limit)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (s *Server) handleCommunities(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"communities": s.engine.Communities()})
}

// ingestRequest accepts inline records; kinds are sniffed the same way as
// drop-dir JSONL files.
type ingestRequest struct {
	Chunks        []*models.ChunkInput        `json:"chunks"`
	Concepts      []*models.ConceptInput      `json:"concepts"`
	Relationships []*models.RelationshipInput `json:"relationships"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	batch := &ingest.Batch{
		Chunks:        req.Chunks,
		Concepts:      req.Concepts,
		Relationships: req.Relationships,
	}
	if batch.Empty() {
		s.respondError(w, http.StatusBadRequest, "no records to ingest")
		return
	}
	if err := s.engine.IngestBatch(r.Context(), batch); err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":        "ingested",
		"chunks":        len(batch.Chunks),
		"concepts":      len(batch.Concepts),
		"relationships": len(batch.Relationships),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
