package events

import (
	"time"

	"github.com/google/uuid"
)

// Analysis lifecycle event codes. External collaborators (notification
// service, dashboards) key off these, so they are part of the contract.
const (
	TypeAnalysisCompleted = "ANALYSIS_COMPLETED"
	TypeAnalysisFailed    = "ANALYSIS_FAILED"
	TypeReviewSubmitted   = "REVIEW_SUBMITTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ANALYSIS_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// AnalysisCompleted builds the terminal success event for an analysis job.
func AnalysisCompleted(jobId, assessmentId, userId uuid.UUID, athleteName, mode string, overallScore int) BaseEvent {
	return BaseEvent{
		Type: TypeAnalysisCompleted,
		Data: map[string]interface{}{
			"job_id":        jobId,
			"assessment_id": assessmentId,
			"user_id":       userId,
			"athlete_name":  athleteName,
			"mode":          mode,
			"overall_score": overallScore,
		},
		OccurredAt: time.Now(),
	}
}

// AnalysisFailed builds the terminal failure event. Code is one of the
// stable API error codes, not a raw error string.
func AnalysisFailed(jobId, userId uuid.UUID, athleteName, mode, code, message string) BaseEvent {
	return BaseEvent{
		Type: TypeAnalysisFailed,
		Data: map[string]interface{}{
			"job_id":       jobId,
			"user_id":      userId,
			"athlete_name": athleteName,
			"mode":         mode,
			"error_code":   code,
			"message":      message,
		},
		OccurredAt: time.Now(),
	}
}

// ReviewSubmitted announces a new expert review so downstream analytics
// consumers can refresh agreement statistics.
func ReviewSubmitted(reviewId, assessmentId uuid.UUID, reviewerName string, overallScore int) BaseEvent {
	return BaseEvent{
		Type: TypeReviewSubmitted,
		Data: map[string]interface{}{
			"review_id":     reviewId,
			"assessment_id": assessmentId,
			"reviewer_name": reviewerName,
			"overall_score": overallScore,
		},
		OccurredAt: time.Now(),
	}
}
