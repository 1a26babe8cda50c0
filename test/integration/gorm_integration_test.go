package integration

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"matvision-be/internal/entity"
	"matvision-be/internal/repository/specification"
	"matvision-be/internal/repository/unitofwork"
	"matvision-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.AnalysisJobRepository())
	assert.NotNil(t, uow.AssessmentRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Assessment Repository", func(t *testing.T) {
		count, err := uow.AssessmentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Assessment count: %d", count)
	})

	t.Run("Check Embedding Repository", func(t *testing.T) {
		count, err := uow.AssessmentEmbeddingRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("AssessmentEmbedding count: %d", count)
	})

	t.Run("Job Lifecycle Transitions Once", func(t *testing.T) {
		ctx := context.Background()
		requesterId := uuid.New()

		job := &entity.AnalysisJob{
			Id:              uuid.New(),
			RequesterId:     requesterId,
			AthleteName:     "Integration Test Athlete",
			Mode:            entity.ModeAthlete,
			Style:           "folkstyle",
			Status:          entity.JobStatusProcessing,
			SubmittedFrames: 12,
			CreatedAt:       time.Now(),
		}
		require.NoError(t, uow.AnalysisJobRepository().Create(ctx, job))
		defer uow.AnalysisJobRepository().PurgeTerminalBefore(ctx, time.Now().Add(time.Minute))

		assessment := &entity.Assessment{
			Id:           uuid.New(),
			JobId:        &job.Id,
			RequesterId:  requesterId,
			AthleteName:  job.AthleteName,
			Mode:         job.Mode,
			Style:        job.Style,
			OverallScore: 72,
			Document:     json.RawMessage(`{"mode":"athlete"}`),
			QualityFlags: json.RawMessage(`[]`),
			CreatedAt:    time.Now(),
		}
		require.NoError(t, uow.AssessmentRepository().Create(ctx, assessment))
		defer uow.AssessmentRepository().Delete(ctx, assessment.Id)

		won, err := uow.AnalysisJobRepository().MarkComplete(ctx, job.Id, assessment.Id, 10)
		require.NoError(t, err)
		assert.True(t, won, "first terminal transition should win")

		// A second transition attempt must lose the guard.
		won, err = uow.AnalysisJobRepository().MarkFailed(ctx, job.Id, "PIPELINE_FAILED", "late duplicate")
		require.NoError(t, err)
		assert.False(t, won, "job already terminal")

		stored, err := uow.AnalysisJobRepository().FindOne(ctx,
			specification.ByID{ID: job.Id},
			specification.RequestedBy{RequesterID: requesterId},
		)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, entity.JobStatusComplete, stored.Status)
		assert.Equal(t, 10, stored.AnalyzedFrames)
		require.NotNil(t, stored.AssessmentId)
		assert.Equal(t, assessment.Id, *stored.AssessmentId)
	})

	t.Run("Expert Review Round Trip", func(t *testing.T) {
		ctx := context.Background()

		assessment := &entity.Assessment{
			Id:           uuid.New(),
			RequesterId:  uuid.New(),
			AthleteName:  "Review Target",
			Mode:         entity.ModeAthlete,
			OverallScore: 65,
			Document:     json.RawMessage(`{"mode":"athlete"}`),
			CreatedAt:    time.Now(),
		}
		require.NoError(t, uow.AssessmentRepository().Create(ctx, assessment))
		defer uow.AssessmentRepository().Delete(ctx, assessment.Id)

		review := &entity.ExpertReview{
			Id:            uuid.New(),
			AssessmentId:  assessment.Id,
			ReviewerName:  "Coach Integration",
			OverallScore:  68,
			StandingScore: 70,
			TopScore:      66,
			BottomScore:   66,
			Notes:         "Slightly better on feet than the model scored.",
			CreatedAt:     time.Now(),
		}
		require.NoError(t, uow.ExpertReviewRepository().Create(ctx, review))

		rows, err := uow.ExpertReviewRepository().FindAll(ctx, specification.ByAssessmentID{AssessmentID: assessment.Id})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Coach Integration", rows[0].ReviewerName)
	})
}
