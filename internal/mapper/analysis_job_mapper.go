package mapper

import (
	"matvision-be/internal/entity"
	"matvision-be/internal/model"
)

type AnalysisJobMapper struct{}

func NewAnalysisJobMapper() *AnalysisJobMapper {
	return &AnalysisJobMapper{}
}

func (m *AnalysisJobMapper) ToEntity(j *model.AnalysisJob) *entity.AnalysisJob {
	if j == nil {
		return nil
	}

	return &entity.AnalysisJob{
		Id:              j.Id,
		RequesterId:     j.RequesterId,
		AthleteName:     j.AthleteName,
		Mode:            j.Mode,
		Style:           j.Style,
		Status:          j.Status,
		ErrorCode:       j.ErrorCode,
		ErrorMessage:    j.ErrorMessage,
		SubmittedFrames: j.SubmittedFrames,
		AnalyzedFrames:  j.AnalyzedFrames,
		AssessmentId:    j.AssessmentId,
		CreatedAt:       j.CreatedAt,
		CompletedAt:     j.CompletedAt,
	}
}

func (m *AnalysisJobMapper) ToModel(j *entity.AnalysisJob) *model.AnalysisJob {
	if j == nil {
		return nil
	}

	return &model.AnalysisJob{
		Id:              j.Id,
		RequesterId:     j.RequesterId,
		AthleteName:     j.AthleteName,
		Mode:            j.Mode,
		Style:           j.Style,
		Status:          j.Status,
		ErrorCode:       j.ErrorCode,
		ErrorMessage:    j.ErrorMessage,
		SubmittedFrames: j.SubmittedFrames,
		AnalyzedFrames:  j.AnalyzedFrames,
		AssessmentId:    j.AssessmentId,
		CreatedAt:       j.CreatedAt,
		CompletedAt:     j.CompletedAt,
	}
}

func (m *AnalysisJobMapper) ToEntities(jobs []*model.AnalysisJob) []*entity.AnalysisJob {
	entities := make([]*entity.AnalysisJob, len(jobs))
	for i, j := range jobs {
		entities[i] = m.ToEntity(j)
	}
	return entities
}
