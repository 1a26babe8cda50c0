package contract

import (
	"context"
	"time"

	"matvision-be/internal/entity"
	"matvision-be/internal/repository/specification"

	"github.com/google/uuid"
)

// AnalysisJobRepository persists pipeline job records. Terminal transitions
// go through MarkComplete/MarkFailed, which are guarded so a job leaves
// "processing" exactly once; the bool reports whether this call won.
type AnalysisJobRepository interface {
	Create(ctx context.Context, job *entity.AnalysisJob) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnalysisJob, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalysisJob, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	MarkComplete(ctx context.Context, id uuid.UUID, assessmentId uuid.UUID, analyzedFrames int) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, errorCode, errorMessage string) (bool, error)

	// Janitor operations.
	FailStuck(ctx context.Context, stuckSince time.Time, errorCode, errorMessage string) (int64, error)
	PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
