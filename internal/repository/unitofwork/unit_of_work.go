package unitofwork

import (
	"context"

	"matvision-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AnalysisJobRepository() contract.AnalysisJobRepository
	AssessmentRepository() contract.AssessmentRepository
	ExpertReviewRepository() contract.ExpertReviewRepository
	AssessmentEmbeddingRepository() contract.AssessmentEmbeddingRepository
	InferenceConfigRepository() contract.InferenceConfigRepository
}
