package model

import (
	"time"

	"github.com/google/uuid"
)

type ExpertReview struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AssessmentId  uuid.UUID `gorm:"type:uuid;not null;index"`
	ReviewerName  string    `gorm:"type:varchar(255);not null"`
	OverallScore  int       `gorm:"not null"`
	StandingScore int       `gorm:"not null"`
	TopScore      int       `gorm:"not null"`
	BottomScore   int       `gorm:"not null"`
	Notes         string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ExpertReview) TableName() string {
	return "expert_reviews"
}
