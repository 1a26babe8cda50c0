package implementation

import (
	"context"
	"errors"
	"time"

	"matvision-be/internal/entity"
	"matvision-be/internal/mapper"
	"matvision-be/internal/model"
	"matvision-be/internal/repository/contract"
	"matvision-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalysisJobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalysisJobMapper
}

func NewAnalysisJobRepository(db *gorm.DB) contract.AnalysisJobRepository {
	return &AnalysisJobRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalysisJobMapper(),
	}
}

func (r *AnalysisJobRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnalysisJobRepositoryImpl) Create(ctx context.Context, job *entity.AnalysisJob) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnalysisJobRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnalysisJob, error) {
	var m model.AnalysisJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AnalysisJobRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalysisJob, error) {
	var models []*model.AnalysisJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AnalysisJobRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AnalysisJob{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkComplete transitions processing -> complete. The status guard in the
// WHERE clause makes the transition idempotent: a second writer sees zero
// rows affected and backs off.
func (r *AnalysisJobRepositoryImpl) MarkComplete(ctx context.Context, id uuid.UUID, assessmentId uuid.UUID, analyzedFrames int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.AnalysisJob{}).
		Where("id = ? AND status = ?", id, entity.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status":          entity.JobStatusComplete,
			"assessment_id":   assessmentId,
			"analyzed_frames": analyzedFrames,
			"completed_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkFailed transitions processing -> failed under the same guard.
func (r *AnalysisJobRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, errorCode, errorMessage string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.AnalysisJob{}).
		Where("id = ? AND status = ?", id, entity.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status":        entity.JobStatusFailed,
			"error_code":    errorCode,
			"error_message": errorMessage,
			"completed_at":  time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FailStuck fails every job still processing since before stuckSince.
// Used by the janitor for jobs whose worker died mid-pipeline.
func (r *AnalysisJobRepositoryImpl) FailStuck(ctx context.Context, stuckSince time.Time, errorCode, errorMessage string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.AnalysisJob{}).
		Where("status = ? AND created_at < ?", entity.JobStatusProcessing, stuckSince).
		Updates(map[string]interface{}{
			"status":        entity.JobStatusFailed,
			"error_code":    errorCode,
			"error_message": errorMessage,
			"completed_at":  time.Now(),
		})
	return res.RowsAffected, res.Error
}

// PurgeTerminalBefore hard-deletes terminal jobs older than the cutoff.
func (r *AnalysisJobRepositoryImpl) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", []string{entity.JobStatusComplete, entity.JobStatusFailed}, cutoff).
		Delete(&model.AnalysisJob{})
	return res.RowsAffected, res.Error
}
