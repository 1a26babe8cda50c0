package entity

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentEmbedding is one chunk of an assessment rendered to text and
// embedded for semantic search. Chunks for an assessment are replaced
// wholesale on re-embedding.
type AssessmentEmbedding struct {
	Id             uuid.UUID
	AssessmentId   uuid.UUID
	RequesterId    uuid.UUID
	Document       string
	EmbeddingValue []float32
	ChunkIndex     int
	CreatedAt      time.Time
}
