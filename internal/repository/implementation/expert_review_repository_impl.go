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

type ExpertReviewRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExpertReviewMapper
}

func NewExpertReviewRepository(db *gorm.DB) contract.ExpertReviewRepository {
	return &ExpertReviewRepositoryImpl{
		db:     db,
		mapper: mapper.NewExpertReviewMapper(),
	}
}

func (r *ExpertReviewRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ExpertReviewRepositoryImpl) Create(ctx context.Context, review *entity.ExpertReview) error {
	m := r.mapper.ToModel(review)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*review = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExpertReviewRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ExpertReview, error) {
	var m model.ExpertReview
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ExpertReviewRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ExpertReview, error) {
	var models []*model.ExpertReview
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ExpertReviewRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ExpertReview{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
