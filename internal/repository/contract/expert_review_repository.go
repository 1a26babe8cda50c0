package contract

import (
	"context"

	"matvision-be/internal/entity"
	"matvision-be/internal/repository/specification"
)

type ExpertReviewRepository interface {
	Create(ctx context.Context, review *entity.ExpertReview) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ExpertReview, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ExpertReview, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
