package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExpertReview is a coach's independent scoring of a persisted assessment.
// Reviews feed the inter-rater agreement statistics.
type ExpertReview struct {
	Id            uuid.UUID
	AssessmentId  uuid.UUID
	ReviewerName  string
	OverallScore  int
	StandingScore int
	TopScore      int
	BottomScore   int
	Notes         string
	CreatedAt     time.Time
}
