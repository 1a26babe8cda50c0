package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Assessment is a persisted pipeline result. Document carries the full
// result JSON (tagged by mode); the score columns are denormalized copies
// for list views and trend queries so analytics never parses documents.
type Assessment struct {
	Id            uuid.UUID
	JobId         *uuid.UUID
	RequesterId   uuid.UUID
	AthleteName   string
	Mode          string
	Style         string
	OverallScore  int
	StandingScore int
	TopScore      int
	BottomScore   int
	Document      json.RawMessage
	QualityFlags  json.RawMessage
	MatchContext  json.RawMessage
	CreatedAt     time.Time
}
