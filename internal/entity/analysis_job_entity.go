package entity

import (
	"time"

	"github.com/google/uuid"
)

// Job status values. A job transitions exactly once from processing to a
// terminal status and never changes afterwards.
const (
	JobStatusProcessing = "processing"
	JobStatusComplete   = "complete"
	JobStatusFailed     = "failed"
)

// Analysis modes.
const (
	ModeAthlete  = "athlete"
	ModeOpponent = "opponent"
)

// AnalysisJob is the asynchronous execution record and the single source
// of truth for job status. The poll endpoint reads it (cache first) until
// a terminal status appears.
type AnalysisJob struct {
	Id              uuid.UUID
	RequesterId     uuid.UUID
	AthleteName     string
	Mode            string
	Style           string
	Status          string
	ErrorCode       string
	ErrorMessage    string
	SubmittedFrames int
	AnalyzedFrames  int
	AssessmentId    *uuid.UUID
	CreatedAt       time.Time
	CompletedAt     *time.Time
}

// Terminal reports whether the job already reached a final status.
func (j *AnalysisJob) Terminal() bool {
	return j.Status == JobStatusComplete || j.Status == JobStatusFailed
}
