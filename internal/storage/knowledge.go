package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/handan-ai/handan/internal/model"
)

// CreateKnowledgeChunk inserts a knowledge chunk and returns it.
func (db *DB) CreateKnowledgeChunk(ctx context.Context, chunk model.KnowledgeChunk) (model.KnowledgeChunk, error) {
	if chunk.ID == uuid.Nil {
		chunk.ID = uuid.New()
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO knowledge_chunks (id, source, doc_type, supplier_id, region, chunk_text, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		chunk.ID, chunk.Source, chunk.DocType, chunk.SupplierID, chunk.Region,
		chunk.ChunkText, chunk.Embedding, chunk.CreatedAt,
	)
	if err != nil {
		return model.KnowledgeChunk{}, fmt.Errorf("storage: create knowledge chunk: %w", err)
	}
	return chunk, nil
}

// FindDuplicateChunk returns the ID of an existing chunk with an identical
// (source, chunk_text, supplier_id, region, doc_type) tuple, or false when
// none exists. IS NOT DISTINCT FROM makes NULL scope fields compare equal.
func (db *DB) FindDuplicateChunk(ctx context.Context, source, chunkText string, supplierID, region, docType *string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`SELECT id FROM knowledge_chunks
		 WHERE source = $1
		   AND chunk_text = $2
		   AND supplier_id IS NOT DISTINCT FROM $3
		   AND region IS NOT DISTINCT FROM $4
		   AND doc_type IS NOT DISTINCT FROM $5
		 LIMIT 1`,
		source, chunkText, supplierID, region, docType,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("storage: find duplicate chunk: %w", err)
	}
	return id, true, nil
}

// SearchChunkTexts returns the chunk_text of the topK chunks nearest to the
// query embedding by cosine distance, restricted by scope. For each scope
// field that is set, a candidate must either match the value or carry NULL
// (global applicability); the filters are ANDed together.
func (db *DB) SearchChunkTexts(ctx context.Context, embedding pgvector.Vector, scope model.KnowledgeScope, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 5
	}

	var conditions []string
	args := []any{embedding}
	idx := 2

	if scope.SupplierID != nil {
		conditions = append(conditions, fmt.Sprintf("(supplier_id = $%d OR supplier_id IS NULL)", idx))
		args = append(args, *scope.SupplierID)
		idx++
	}
	if scope.Region != nil {
		conditions = append(conditions, fmt.Sprintf("(region = $%d OR region IS NULL)", idx))
		args = append(args, *scope.Region)
		idx++
	}
	if scope.DocType != nil {
		conditions = append(conditions, fmt.Sprintf("(doc_type = $%d OR doc_type IS NULL)", idx))
		args = append(args, *scope.DocType)
		idx++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(
		`SELECT chunk_text FROM knowledge_chunks%s ORDER BY embedding <=> $1 LIMIT %d`,
		where, topK,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: search chunks: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("storage: scan chunk text: %w", err)
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

// QueryChunks performs an unscoped similarity search, returning the topK
// nearest chunks with similarity = 1 - cosine_distance.
func (db *DB) QueryChunks(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.KnowledgeMatch, error) {
	if topK <= 0 {
		topK = 3
	}

	rows, err := db.pool.Query(ctx,
		fmt.Sprintf(
			`SELECT id, source, chunk_text, 1 - (embedding <=> $1) AS similarity
			 FROM knowledge_chunks
			 ORDER BY embedding <=> $1
			 LIMIT %d`, topK),
		embedding,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: query chunks: %w", err)
	}
	defer rows.Close()

	var matches []model.KnowledgeMatch
	for rows.Next() {
		var m model.KnowledgeMatch
		if err := rows.Scan(&m.ID, &m.Source, &m.Text, &m.Similarity); err != nil {
			return nil, fmt.Errorf("storage: scan knowledge match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CountKnowledgeChunks returns the total number of stored chunks.
func (db *DB) CountKnowledgeChunks(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count knowledge chunks: %w", err)
	}
	return n, nil
}
