package mapper

import (
	"matvision-be/internal/entity"
	"matvision-be/internal/model"
)

type ExpertReviewMapper struct{}

func NewExpertReviewMapper() *ExpertReviewMapper {
	return &ExpertReviewMapper{}
}

func (m *ExpertReviewMapper) ToEntity(r *model.ExpertReview) *entity.ExpertReview {
	if r == nil {
		return nil
	}

	return &entity.ExpertReview{
		Id:            r.Id,
		AssessmentId:  r.AssessmentId,
		ReviewerName:  r.ReviewerName,
		OverallScore:  r.OverallScore,
		StandingScore: r.StandingScore,
		TopScore:      r.TopScore,
		BottomScore:   r.BottomScore,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}

func (m *ExpertReviewMapper) ToModel(r *entity.ExpertReview) *model.ExpertReview {
	if r == nil {
		return nil
	}

	return &model.ExpertReview{
		Id:            r.Id,
		AssessmentId:  r.AssessmentId,
		ReviewerName:  r.ReviewerName,
		OverallScore:  r.OverallScore,
		StandingScore: r.StandingScore,
		TopScore:      r.TopScore,
		BottomScore:   r.BottomScore,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}

func (m *ExpertReviewMapper) ToEntities(reviews []*model.ExpertReview) []*entity.ExpertReview {
	entities := make([]*entity.ExpertReview, len(reviews))
	for i, r := range reviews {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
