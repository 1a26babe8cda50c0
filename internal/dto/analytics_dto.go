package dto

import (
	"matvision-be/pkg/analytics/badges"
	"matvision-be/pkg/analytics/interrater"

	"github.com/google/uuid"
)

type SubmitReviewRequest struct {
	AssessmentId  uuid.UUID `json:"assessment_id" validate:"required"`
	ReviewerName  string    `json:"reviewer_name" validate:"required"`
	OverallScore  int       `json:"overall_score" validate:"min=0,max=100"`
	StandingScore int       `json:"standing_score" validate:"min=0,max=100"`
	TopScore      int       `json:"top_score" validate:"min=0,max=100"`
	BottomScore   int       `json:"bottom_score" validate:"min=0,max=100"`
	Notes         string    `json:"notes"`
}

type SubmitReviewResponse struct {
	Id uuid.UUID `json:"id"`
}

type AthleteBadgesResponse struct {
	AthleteName string         `json:"athlete_name"`
	Analyses    int            `json:"analyses"`
	Badges      []badges.Badge `json:"badges"`
}

type InterraterAgreementResponse struct {
	AthleteName string            `json:"athlete_name"`
	Report      interrater.Report `json:"report"`
}
