package model

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisJob struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequesterId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	AthleteName     string     `gorm:"type:varchar(255);not null;index"`
	Mode            string     `gorm:"type:varchar(20);not null"`
	Style           string     `gorm:"type:varchar(50)"`
	Status          string     `gorm:"type:varchar(20);not null;index"`
	ErrorCode       string     `gorm:"type:varchar(50)"`
	ErrorMessage    string     `gorm:"type:text"`
	SubmittedFrames int        `gorm:"default:0"`
	AnalyzedFrames  int        `gorm:"default:0"`
	AssessmentId    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index"`
	CompletedAt     *time.Time
}

func (AnalysisJob) TableName() string {
	return "analysis_jobs"
}
