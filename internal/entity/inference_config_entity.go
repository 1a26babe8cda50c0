package entity

import (
	"time"

	"github.com/google/uuid"
)

// InferenceConfig stores inference tuning as key-value rows so model names
// and budgets can change without a deploy. Values are strings interpreted
// per ValueType.
type InferenceConfig struct {
	Id          uuid.UUID
	Key         string
	Value       string
	ValueType   string // "string", "number", "boolean"
	Description string
	Category    string // "models", "pipeline", "general"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category constants for InferenceConfig
const (
	InferenceCategoryModels   = "models"
	InferenceCategoryPipeline = "pipeline"
	InferenceCategoryGeneral  = "general"
)

// ValueType constants for InferenceConfig
const (
	InferenceValueTypeString  = "string"
	InferenceValueTypeNumber  = "number"
	InferenceValueTypeBoolean = "boolean"
)

// Known configuration keys
const (
	InferenceKeyTriageModel            = "triage_model"
	InferenceKeyPerceptionModel        = "perception_model"
	InferenceKeyReasoningModel         = "reasoning_model"
	InferenceKeyReasoningTemperature   = "reasoning_temperature"
	InferenceKeyPipelineTimeoutSeconds = "pipeline_timeout_seconds"
	InferenceKeySearchThreshold        = "search_similarity_threshold"
)
