package mapper

import (
	"matvision-be/internal/entity"
	"matvision-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type AssessmentEmbeddingMapper struct{}

func NewAssessmentEmbeddingMapper() *AssessmentEmbeddingMapper {
	return &AssessmentEmbeddingMapper{}
}

func (m *AssessmentEmbeddingMapper) ToEntity(e *model.AssessmentEmbedding) *entity.AssessmentEmbedding {
	if e == nil {
		return nil
	}

	return &entity.AssessmentEmbedding{
		Id:             e.Id,
		AssessmentId:   e.AssessmentId,
		RequesterId:    e.RequesterId,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *AssessmentEmbeddingMapper) ToModel(e *entity.AssessmentEmbedding) *model.AssessmentEmbedding {
	if e == nil {
		return nil
	}

	return &model.AssessmentEmbedding{
		Id:             e.Id,
		AssessmentId:   e.AssessmentId,
		RequesterId:    e.RequesterId,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *AssessmentEmbeddingMapper) ToEntities(embeddings []*model.AssessmentEmbedding) []*entity.AssessmentEmbedding {
	entities := make([]*entity.AssessmentEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *AssessmentEmbeddingMapper) ToModels(embeddings []*entity.AssessmentEmbedding) []*model.AssessmentEmbedding {
	models := make([]*model.AssessmentEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
