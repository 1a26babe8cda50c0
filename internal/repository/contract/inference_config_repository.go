package contract

import (
	"context"

	"matvision-be/internal/entity"
	"matvision-be/internal/repository/specification"
)

// InferenceConfigRepository stores DB-backed inference tuning rows.
type InferenceConfigRepository interface {
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InferenceConfig, error)
	FindByKey(ctx context.Context, key string) (*entity.InferenceConfig, error)
	Create(ctx context.Context, config *entity.InferenceConfig) error
	Update(ctx context.Context, config *entity.InferenceConfig) error
}
