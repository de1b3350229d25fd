// Package ingest parses JSONL record files into chunk, concept, and
// relationship inputs. Each line is one record; the kind is taken from an
// explicit "kind" field or inferred from the fields present.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/hyperjump/chishiki/internal/models"
)

// Record kinds accepted in ingest files.
const (
	KindChunk        = "chunk"
	KindConcept      = "concept"
	KindRelationship = "relationship"
)

// Batch holds the parsed contents of one ingest file.
type Batch struct {
	Chunks        []*models.ChunkInput
	Concepts      []*models.ConceptInput
	Relationships []*models.RelationshipInput
}

// Empty reports whether the batch contains no records.
func (b *Batch) Empty() bool {
	return len(b.Chunks) == 0 && len(b.Concepts) == 0 && len(b.Relationships) == 0
}

// envelope is the superset of all record shapes, used to sniff the kind when
// no explicit "kind" field is present.
type envelope struct {
	Kind string `json:"kind"`

	Text     string               `json:"text"`
	Concept  string               `json:"concept"`
	Source   string               `json:"source"`
	Target   string               `json:"target"`
	Relation string               `json:"relationship"`
	Metadata models.ChunkMetadata `json:"metadata"`
}

func (e *envelope) kind() string {
	if e.Kind != "" {
		return e.Kind
	}
	switch {
	case e.Concept != "":
		return KindConcept
	case e.Target != "" && e.Relation != "":
		return KindRelationship
	case e.Text != "":
		return KindChunk
	default:
		return ""
	}
}

// ReadRecords parses JSONL records from r into a batch. Blank lines are
// skipped; a malformed or unrecognizable line fails the whole read so a bad
// file is rejected rather than partially ingested.
func ReadRecords(r io.Reader) (*Batch, error) {
	batch := &Batch{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}

		switch env.kind() {
		case KindChunk:
			var rec models.ChunkInput
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("line %d: invalid chunk record: %w", lineNo, err)
			}
			if rec.Text == "" {
				return nil, fmt.Errorf("line %d: chunk record has empty text", lineNo)
			}
			batch.Chunks = append(batch.Chunks, &rec)
		case KindConcept:
			var rec models.ConceptInput
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("line %d: invalid concept record: %w", lineNo, err)
			}
			if rec.Concept == "" {
				return nil, fmt.Errorf("line %d: concept record has empty concept", lineNo)
			}
			batch.Concepts = append(batch.Concepts, &rec)
		case KindRelationship:
			var rec models.RelationshipInput
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("line %d: invalid relationship record: %w", lineNo, err)
			}
			if rec.Source == "" || rec.Target == "" || rec.Relationship == "" {
				return nil, fmt.Errorf("line %d: relationship record missing endpoint or type", lineNo)
			}
			batch.Relationships = append(batch.Relationships, &rec)
		default:
			return nil, fmt.Errorf("line %d: unrecognized record", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return batch, nil
}

// ReadFile parses a JSONL file into a batch.
func ReadFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingest file: %w", err)
	}
	defer f.Close()
	return ReadRecords(f)
}

// AssignIDs fills in a fresh UUID for every chunk that arrived without one.
func AssignIDs(chunks []*models.ChunkInput) {
	for _, chunk := range chunks {
		if chunk.ID == "" {
			chunk.ID = uuid.NewString()
		}
	}
}

// AppearsInEdges derives the occurrence edges for a concept record: one
// "appears_in" edge per mentioning chunk, weighted by how widely the concept
// appears (capped at 1.0 once it spans 100 chunks).
func AppearsInEdges(rec *models.ConceptInput) []*models.RelationshipInput {
	weight := float64(len(rec.ChunkIDs)) / 100.0
	if weight > 1.0 {
		weight = 1.0
	}
	edges := make([]*models.RelationshipInput, 0, len(rec.ChunkIDs))
	for _, id := range rec.ChunkIDs {
		edges = append(edges, &models.RelationshipInput{
			Source:       rec.Concept,
			Target:       "chunk:" + id,
			Relationship: models.RelAppearsIn,
			Weight:       weight,
			Evidence:     id,
		})
	}
	return edges
}
