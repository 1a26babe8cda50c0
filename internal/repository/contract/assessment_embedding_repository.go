package contract

import (
	"context"

	"matvision-be/internal/entity"
	"matvision-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredAssessmentEmbedding wraps AssessmentEmbedding with its similarity score
type ScoredAssessmentEmbedding struct {
	Embedding  *entity.AssessmentEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type AssessmentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.AssessmentEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.AssessmentEmbedding) error
	DeleteByAssessmentId(ctx context.Context, assessmentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssessmentEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilarWithScore returns embeddings with their cosine similarity,
	// scoped to the requester and filtered by threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, requesterId uuid.UUID, threshold float64) ([]*ScoredAssessmentEmbedding, error)
}
