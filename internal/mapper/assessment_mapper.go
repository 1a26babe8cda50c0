package mapper

import (
	"encoding/json"

	"matvision-be/internal/entity"
	"matvision-be/internal/model"

	"gorm.io/datatypes"
)

type AssessmentMapper struct{}

func NewAssessmentMapper() *AssessmentMapper {
	return &AssessmentMapper{}
}

func (m *AssessmentMapper) ToEntity(a *model.Assessment) *entity.Assessment {
	if a == nil {
		return nil
	}

	return &entity.Assessment{
		Id:            a.Id,
		JobId:         a.JobId,
		RequesterId:   a.RequesterId,
		AthleteName:   a.AthleteName,
		Mode:          a.Mode,
		Style:         a.Style,
		OverallScore:  a.OverallScore,
		StandingScore: a.StandingScore,
		TopScore:      a.TopScore,
		BottomScore:   a.BottomScore,
		Document:      json.RawMessage(a.Document),
		QualityFlags:  json.RawMessage(a.QualityFlags),
		MatchContext:  json.RawMessage(a.MatchContext),
		CreatedAt:     a.CreatedAt,
	}
}

func (m *AssessmentMapper) ToModel(a *entity.Assessment) *model.Assessment {
	if a == nil {
		return nil
	}

	return &model.Assessment{
		Id:            a.Id,
		JobId:         a.JobId,
		RequesterId:   a.RequesterId,
		AthleteName:   a.AthleteName,
		Mode:          a.Mode,
		Style:         a.Style,
		OverallScore:  a.OverallScore,
		StandingScore: a.StandingScore,
		TopScore:      a.TopScore,
		BottomScore:   a.BottomScore,
		Document:      datatypes.JSON(a.Document),
		QualityFlags:  datatypes.JSON(a.QualityFlags),
		MatchContext:  datatypes.JSON(a.MatchContext),
		CreatedAt:     a.CreatedAt,
	}
}

func (m *AssessmentMapper) ToEntities(assessments []*model.Assessment) []*entity.Assessment {
	entities := make([]*entity.Assessment, len(assessments))
	for i, a := range assessments {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
