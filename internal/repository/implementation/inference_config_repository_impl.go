package implementation

import (
	"context"
	"errors"

	"matvision-be/internal/entity"
	"matvision-be/internal/mapper"
	"matvision-be/internal/model"
	"matvision-be/internal/repository/contract"
	"matvision-be/internal/repository/specification"

	"gorm.io/gorm"
)

type InferenceConfigRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InferenceConfigMapper
}

func NewInferenceConfigRepository(db *gorm.DB) contract.InferenceConfigRepository {
	return &InferenceConfigRepositoryImpl{
		db:     db,
		mapper: mapper.NewInferenceConfigMapper(),
	}
}

func (r *InferenceConfigRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InferenceConfigRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InferenceConfig, error) {
	var models []*model.InferenceConfig
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *InferenceConfigRepositoryImpl) FindByKey(ctx context.Context, key string) (*entity.InferenceConfig, error) {
	var m model.InferenceConfig
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InferenceConfigRepositoryImpl) Create(ctx context.Context, config *entity.InferenceConfig) error {
	m := r.mapper.ToModel(config)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*config = *r.mapper.ToEntity(m)
	return nil
}

func (r *InferenceConfigRepositoryImpl) Update(ctx context.Context, config *entity.InferenceConfig) error {
	m := r.mapper.ToModel(config)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*config = *r.mapper.ToEntity(m)
	return nil
}
