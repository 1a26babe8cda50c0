package implementation

import (
	"context"

	"matvision-be/internal/entity"
	"matvision-be/internal/mapper"
	"matvision-be/internal/model"
	"matvision-be/internal/repository/contract"
	"matvision-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type AssessmentEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssessmentEmbeddingMapper
}

func NewAssessmentEmbeddingRepository(db *gorm.DB) contract.AssessmentEmbeddingRepository {
	return &AssessmentEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssessmentEmbeddingMapper(),
	}
}

func (r *AssessmentEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AssessmentEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.AssessmentEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssessmentEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.AssessmentEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *AssessmentEmbeddingRepositoryImpl) DeleteByAssessmentId(ctx context.Context, assessmentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("assessment_id = ?", assessmentId).Delete(&model.AssessmentEmbedding{}).Error
}

func (r *AssessmentEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssessmentEmbedding, error) {
	var models []*model.AssessmentEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AssessmentEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AssessmentEmbedding{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchSimilarWithScore runs a cosine search scoped to the requester.
// Cosine distance in pgvector is 1 - cosine_similarity, so similarity is
// recovered as 1 - (embedding_value <=> query).
func (r *AssessmentEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, requesterId uuid.UUID, threshold float64) ([]*contract.ScoredAssessmentEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.AssessmentEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("assessment_embeddings").
		Select("assessment_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("requester_id = ?", requesterId).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredAssessmentEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredAssessmentEmbedding{
			Embedding:  r.mapper.ToEntity(&res.AssessmentEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
