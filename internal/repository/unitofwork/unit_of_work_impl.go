package unitofwork

import (
	"context"
	"fmt"

	"matvision-be/internal/repository/contract"
	"matvision-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) AnalysisJobRepository() contract.AnalysisJobRepository {
	return implementation.NewAnalysisJobRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AssessmentRepository() contract.AssessmentRepository {
	return implementation.NewAssessmentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ExpertReviewRepository() contract.ExpertReviewRepository {
	return implementation.NewExpertReviewRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AssessmentEmbeddingRepository() contract.AssessmentEmbeddingRepository {
	return implementation.NewAssessmentEmbeddingRepository(u.getDB())
}

func (u *UnitOfWorkImpl) InferenceConfigRepository() contract.InferenceConfigRepository {
	return implementation.NewInferenceConfigRepository(u.getDB())
}
