package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestedBy scopes rows to the submitting user.
type RequestedBy struct {
	RequesterID uuid.UUID
}

func (s RequestedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("requester_id = ?", s.RequesterID)
}

// ByAthleteName filters by exact athlete name (case-insensitive).
type ByAthleteName struct {
	Name string
}

func (s ByAthleteName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(athlete_name) = LOWER(?)", s.Name)
}

// ByStatus filters jobs by status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByMode filters by analysis mode (athlete or opponent).
type ByMode struct {
	Mode string
}

func (s ByMode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("mode = ?", s.Mode)
}

// ByJobID filters assessments by their originating job.
type ByJobID struct {
	JobID uuid.UUID
}

func (s ByJobID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("job_id = ?", s.JobID)
}

// ByAssessmentID filters reviews and embeddings by assessment.
type ByAssessmentID struct {
	AssessmentID uuid.UUID
}

func (s ByAssessmentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("assessment_id = ?", s.AssessmentID)
}

// ByAssessmentIDs filters by a set of assessments in one query.
type ByAssessmentIDs struct {
	IDs []uuid.UUID
}

func (s ByAssessmentIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("assessment_id IN ?", s.IDs)
}

// CreatedBefore filters rows older than the cutoff.
type CreatedBefore struct {
	Cutoff time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.Cutoff)
}

// ByCategory filters inference config rows by category.
type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}
