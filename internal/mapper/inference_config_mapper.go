package mapper

import (
	"matvision-be/internal/entity"
	"matvision-be/internal/model"
)

type InferenceConfigMapper struct{}

func NewInferenceConfigMapper() *InferenceConfigMapper {
	return &InferenceConfigMapper{}
}

func (m *InferenceConfigMapper) ToEntity(c *model.InferenceConfig) *entity.InferenceConfig {
	if c == nil {
		return nil
	}

	return &entity.InferenceConfig{
		Id:          c.Id,
		Key:         c.Key,
		Value:       c.Value,
		ValueType:   c.ValueType,
		Description: c.Description,
		Category:    c.Category,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m *InferenceConfigMapper) ToModel(c *entity.InferenceConfig) *model.InferenceConfig {
	if c == nil {
		return nil
	}

	return &model.InferenceConfig{
		Id:          c.Id,
		Key:         c.Key,
		Value:       c.Value,
		ValueType:   c.ValueType,
		Description: c.Description,
		Category:    c.Category,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m *InferenceConfigMapper) ToEntities(configs []*model.InferenceConfig) []*entity.InferenceConfig {
	entities := make([]*entity.InferenceConfig, len(configs))
	for i, c := range configs {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
