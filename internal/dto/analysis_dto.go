package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IdentificationContext carries optional cues for telling the two
// wrestlers apart across frames.
type IdentificationContext struct {
	AthleteDescription  string `json:"athlete_description"`
	OpponentDescription string `json:"opponent_description"`
	AthleteSide         string `json:"athlete_side" validate:"omitempty,oneof=left right"`
	ReferenceFrame      string `json:"reference_frame"` // base64, single static frame
}

type MatchContextRequest struct {
	WeightClass     string `json:"weight_class"`
	Competition     string `json:"competition"`
	Round           string `json:"round"`
	DaysFromWeighIn *int   `json:"days_from_weigh_in"`
}

type SubmitAnalysisRequest struct {
	Frames         []string               `json:"frames" validate:"required,min=1"` // base64 payloads, capture order
	MimeType       string                 `json:"mime_type"`
	Style          string                 `json:"style"`
	Mode           string                 `json:"mode" validate:"omitempty,oneof=athlete opponent"`
	Async          bool                   `json:"async"`
	AthleteName    string                 `json:"athlete_name" validate:"required"`
	Identification *IdentificationContext `json:"identification"`
	MatchContext   *MatchContextRequest   `json:"match_context"`
}

// SubmitAnalysisResponse carries either the full synchronous result or the
// job handle for polling.
type SubmitAnalysisResponse struct {
	JobId        *uuid.UUID      `json:"job_id,omitempty"`
	AssessmentId *uuid.UUID      `json:"assessment_id,omitempty"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
}

type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PollJobResponse is the status document for async jobs. Status is
// update-once: once terminal, repeated polls return identical responses.
type PollJobResponse struct {
	JobId  uuid.UUID       `json:"job_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *JobError       `json:"error,omitempty"`
}

type ShowAssessmentResponse struct {
	Id            uuid.UUID       `json:"id"`
	JobId         *uuid.UUID      `json:"job_id,omitempty"`
	AthleteName   string          `json:"athlete_name"`
	Mode          string          `json:"mode"`
	Style         string          `json:"style,omitempty"`
	OverallScore  int             `json:"overall_score"`
	StandingScore int             `json:"standing_score"`
	TopScore      int             `json:"top_score"`
	BottomScore   int             `json:"bottom_score"`
	Document      json.RawMessage `json:"document"`
	QualityFlags  json.RawMessage `json:"quality_flags,omitempty"`
	MatchContext  json.RawMessage `json:"match_context,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type AssessmentListItem struct {
	Id           uuid.UUID `json:"id"`
	AthleteName  string    `json:"athlete_name"`
	Mode         string    `json:"mode"`
	OverallScore int       `json:"overall_score"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListAssessmentsResponse struct {
	Items      []AssessmentListItem `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// SearchAssessmentItem is one semantic search hit: the matching chunk plus
// enough assessment metadata to render a result row.
type SearchAssessmentItem struct {
	AssessmentId uuid.UUID `json:"assessment_id"`
	AthleteName  string    `json:"athlete_name"`
	Mode         string    `json:"mode"`
	OverallScore int       `json:"overall_score"`
	Snippet      string    `json:"snippet"`
	Similarity   float64   `json:"similarity"`
	CreatedAt    time.Time `json:"created_at"`
}

type SearchAssessmentsResponse struct {
	Query string                 `json:"query"`
	Items []SearchAssessmentItem `json:"items"`
}

// PublishAnalyzeMatchMessage is the queue payload for async analysis.
// Frames ride the message as raw bytes; encoding/json transports []byte
// base64 encoded. Frames are never persisted, so the message must carry
// everything the pipeline needs.
type PublishAnalyzeMatchMessage struct {
	JobId          uuid.UUID              `json:"job_id"`
	RequesterId    uuid.UUID              `json:"requester_id"`
	Frames         [][]byte               `json:"frames"`
	MimeType       string                 `json:"mime_type"`
	Style          string                 `json:"style"`
	Mode           string                 `json:"mode"`
	AthleteName    string                 `json:"athlete_name"`
	Identification *IdentificationContext `json:"identification,omitempty"`
	MatchContext   *MatchContextRequest   `json:"match_context,omitempty"`
}

type PublishEmbedAssessmentMessage struct {
	AssessmentId uuid.UUID `json:"assessment_id"`
}
