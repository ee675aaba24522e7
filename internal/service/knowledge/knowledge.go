// Package knowledge provides ingestion and retrieval of scoped knowledge
// fragments.
//
// Fragments are deduplicated on ingest and retrieved by cosine similarity
// with supplier/region/doc-type scoping, where a NULL scope field means the
// fragment applies globally.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel/metric"

	"github.com/handan-ai/handan/internal/model"
	"github.com/handan-ai/handan/internal/service/embedding"
	"github.com/handan-ai/handan/internal/storage"
	"github.com/handan-ai/handan/internal/telemetry"
)

// Service encapsulates knowledge ingestion and retrieval.
type Service struct {
	db       *storage.DB
	embedder embedding.Provider
	logger   *slog.Logger

	embeddingDuration metric.Float64Histogram
}

// New creates a knowledge Service.
func New(db *storage.DB, embedder embedding.Provider, logger *slog.Logger) *Service {
	meter := telemetry.Meter("handan/knowledge")
	embDur, _ := meter.Float64Histogram("handan.embedding.duration",
		metric.WithDescription("Time to generate embeddings (ms)"),
		metric.WithUnit("ms"),
	)
	return &Service{
		db:                db,
		embedder:          embedder,
		logger:            logger,
		embeddingDuration: embDur,
	}
}

// Ingest stores a knowledge chunk, deduplicating by exact tuple match on
// (source, chunk_text, supplier_id, region, doc_type). A duplicate returns
// the existing chunk ID with Deduped set; no new row is created and no
// embedding call is made.
func (s *Service) Ingest(ctx context.Context, req model.IngestKnowledgeRequest) (model.IngestKnowledgeResult, error) {
	if err := req.Validate(); err != nil {
		return model.IngestKnowledgeResult{}, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}

	dupID, found, err := s.db.FindDuplicateChunk(ctx, req.Source, req.ChunkText, req.SupplierID, req.Region, req.DocType)
	if err != nil {
		return model.IngestKnowledgeResult{}, err
	}
	if found {
		return model.IngestKnowledgeResult{ID: dupID, Source: req.Source, Deduped: true}, nil
	}

	embStart := time.Now()
	emb, err := s.embedder.Embed(ctx, req.ChunkText)
	s.embeddingDuration.Record(ctx, float64(time.Since(embStart).Milliseconds()))
	if err != nil {
		return model.IngestKnowledgeResult{}, fmt.Errorf("knowledge: embed chunk: %w", err)
	}

	chunk, err := s.db.CreateKnowledgeChunk(ctx, model.KnowledgeChunk{
		Source:     req.Source,
		DocType:    req.DocType,
		SupplierID: req.SupplierID,
		Region:     req.Region,
		ChunkText:  req.ChunkText,
		Embedding:  emb,
	})
	if err != nil {
		return model.IngestKnowledgeResult{}, err
	}

	s.logger.Info("knowledge chunk ingested",
		"chunk_id", chunk.ID,
		"source", chunk.Source,
	)
	return model.IngestKnowledgeResult{ID: chunk.ID, Source: chunk.Source, Deduped: false}, nil
}

// Query embeds free text and returns the topK most similar chunks with
// their similarity scores. Exposed directly at the API boundary for
// knowledge lookup outside the agent path.
func (s *Service) Query(ctx context.Context, query string, topK int) ([]model.KnowledgeMatch, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", model.ErrValidation)
	}

	embStart := time.Now()
	emb, err := s.embedder.Embed(ctx, query)
	s.embeddingDuration.Record(ctx, float64(time.Since(embStart).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("knowledge: embed query: %w", err)
	}

	return s.db.QueryChunks(ctx, emb, topK)
}

// Retrieve returns the topK chunks nearest to the query embedding within
// scope, deduplicated by trimmed-text equality (first occurrence wins) and
// joined with newlines into a single context string. An empty result set
// yields an empty string.
func (s *Service) Retrieve(ctx context.Context, queryEmbedding pgvector.Vector, scope model.KnowledgeScope, topK int) (string, error) {
	start := time.Now()

	texts, err := s.db.SearchChunkTexts(ctx, queryEmbedding, scope, topK)
	if err != nil {
		return "", err
	}

	deduped := dedupKeepOrder(texts)

	s.logger.Debug("knowledge retrieved",
		"chunks", len(deduped),
		"top_k", topK,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return strings.Join(deduped, "\n"), nil
}

// dedupKeepOrder removes blank and duplicate texts (after trimming),
// preserving first-occurrence order.
func dedupKeepOrder(texts []string) []string {
	seen := make(map[string]bool, len(texts))
	var out []string
	for _, t := range texts {
		key := strings.TrimSpace(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
