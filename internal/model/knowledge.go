package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Field length limits for knowledge chunks.
const (
	MaxKnowledgeSourceLen  = 200
	MaxKnowledgeDocTypeLen = 50
)

// EmbeddingDimensions is the fixed embedding vector length. Matches the
// knowledge_chunks.embedding column type; changing it requires a migration.
const EmbeddingDimensions = 1536

// KnowledgeChunk is an immutable knowledge fragment with vector embedding.
// The nullable scope fields restrict applicability; nil means the chunk
// applies globally.
type KnowledgeChunk struct {
	ID         uuid.UUID       `json:"id"`
	Source     string          `json:"source"`
	DocType    *string         `json:"doc_type,omitempty"`
	SupplierID *string         `json:"supplier_id,omitempty"`
	Region     *string         `json:"region,omitempty"`
	ChunkText  string          `json:"chunk_text"`
	Embedding  pgvector.Vector `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}

// KnowledgeScope restricts a retrieval to matching-or-global chunks.
// Nil fields are unconstrained.
type KnowledgeScope struct {
	SupplierID *string
	Region     *string
	DocType    *string
}

// KnowledgeMatch is one hit from a free-text knowledge query.
// Similarity is 1 - cosine_distance, so higher is closer.
type KnowledgeMatch struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Similarity float64   `json:"similarity"`
	Text       string    `json:"text"`
}
