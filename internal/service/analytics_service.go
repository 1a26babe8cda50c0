package service

import (
	"context"
	"encoding/json"
	"time"

	"matvision-be/internal/dto"
	"matvision-be/internal/entity"
	"matvision-be/internal/pkg/logger"
	"matvision-be/internal/pkg/serverutils"
	"matvision-be/internal/repository/specification"
	"matvision-be/internal/repository/unitofwork"
	"matvision-be/pkg/analysis"
	"matvision-be/pkg/analytics/badges"
	"matvision-be/pkg/analytics/interrater"
	"matvision-be/pkg/analytics/trends"
	"matvision-be/pkg/events"
	pktNats "matvision-be/pkg/nats"

	"github.com/google/uuid"
)

type IAnalyticsService interface {
	SubmitReview(ctx context.Context, requesterId uuid.UUID, req *dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error)
	Trends(ctx context.Context, requesterId uuid.UUID, athleteName string) (*trends.Report, error)
	Badges(ctx context.Context, requesterId uuid.UUID, athleteName string) (*dto.AthleteBadgesResponse, error)
	Interrater(ctx context.Context, requesterId uuid.UUID, athleteName string) (*dto.InterraterAgreementResponse, error)
}

type analyticsService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewAnalyticsService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IAnalyticsService {
	return &analyticsService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (c *analyticsService) SubmitReview(ctx context.Context, requesterId uuid.UUID, req *dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	assessment, err := uow.AssessmentRepository().FindOne(ctx,
		specification.ByID{ID: req.AssessmentId},
		specification.RequestedBy{RequesterID: requesterId},
	)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, serverutils.NotFoundError("assessment not found")
	}

	review := entity.ExpertReview{
		Id:            uuid.New(),
		AssessmentId:  assessment.Id,
		ReviewerName:  req.ReviewerName,
		OverallScore:  req.OverallScore,
		StandingScore: req.StandingScore,
		TopScore:      req.TopScore,
		BottomScore:   req.BottomScore,
		Notes:         req.Notes,
		CreatedAt:     time.Now(),
	}
	if err := uow.ExpertReviewRepository().Create(ctx, &review); err != nil {
		return nil, err
	}

	if c.eventPublisher != nil {
		evt := events.ReviewSubmitted(review.Id, assessment.Id, review.ReviewerName, review.OverallScore)
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.logger.Warn("ANALYTICS", "Failed to publish review event", map[string]interface{}{
				"review_id": review.Id,
				"error":     err.Error(),
			})
		}
	}

	return &dto.SubmitReviewResponse{Id: review.Id}, nil
}

// athleteHistory loads the athlete-mode assessments for one athlete in
// chronological order. Scouting reports carry no scores and stay out of
// analytics.
func (c *analyticsService) athleteHistory(ctx context.Context, uow unitofwork.UnitOfWork, requesterId uuid.UUID, athleteName string) ([]*entity.Assessment, error) {
	return uow.AssessmentRepository().FindAll(ctx,
		specification.RequestedBy{RequesterID: requesterId},
		specification.ByAthleteName{Name: athleteName},
		specification.ByMode{Mode: entity.ModeAthlete},
		specification.OrderBy{Field: "created_at"},
	)
}

func (c *analyticsService) Trends(ctx context.Context, requesterId uuid.UUID, athleteName string) (*trends.Report, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	rows, err := c.athleteHistory(ctx, uow, requesterId, athleteName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, serverutils.NotFoundError("no analyses for this athlete")
	}

	history := make([]trends.Scores, len(rows))
	for i, a := range rows {
		history[i] = trends.Scores{
			Overall:  float64(a.OverallScore),
			Standing: float64(a.StandingScore),
			Top:      float64(a.TopScore),
			Bottom:   float64(a.BottomScore),
		}
	}

	report := trends.BuildReport(athleteName, history)
	return &report, nil
}

func (c *analyticsService) Badges(ctx context.Context, requesterId uuid.UUID, athleteName string) (*dto.AthleteBadgesResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	rows, err := c.athleteHistory(ctx, uow, requesterId, athleteName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, serverutils.NotFoundError("no analyses for this athlete")
	}

	history := make([]badges.AssessmentFacts, 0, len(rows))
	for _, a := range rows {
		facts := badges.AssessmentFacts{OverallScore: a.OverallScore}
		var result analysis.Result
		// Unreadable documents still count as analyses; they just carry no
		// match stats.
		if err := json.Unmarshal(a.Document, &result); err == nil && result.Assessment != nil {
			facts.TakedownsScored = result.Assessment.MatchStats.TakedownsScored
			facts.Escapes = result.Assessment.MatchStats.Escapes
			facts.FirstHalfScore = result.Assessment.FatigueAnalysis.FirstHalfScore
			facts.SecondHalfScore = result.Assessment.FatigueAnalysis.SecondHalfScore
		}
		history = append(history, facts)
	}

	return &dto.AthleteBadgesResponse{
		AthleteName: athleteName,
		Analyses:    len(rows),
		Badges:      badges.Evaluate(history),
	}, nil
}

func (c *analyticsService) Interrater(ctx context.Context, requesterId uuid.UUID, athleteName string) (*dto.InterraterAgreementResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	rows, err := c.athleteHistory(ctx, uow, requesterId, athleteName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, serverutils.NotFoundError("no analyses for this athlete")
	}

	ids := make([]uuid.UUID, len(rows))
	byId := make(map[uuid.UUID]*entity.Assessment, len(rows))
	for i, a := range rows {
		ids[i] = a.Id
		byId[a.Id] = a
	}

	reviews, err := uow.ExpertReviewRepository().FindAll(ctx,
		specification.ByAssessmentIDs{IDs: ids},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	pairs := make([]interrater.ReviewPair, 0, len(reviews))
	for _, r := range reviews {
		a := byId[r.AssessmentId]
		if a == nil {
			continue
		}
		pairs = append(pairs, interrater.ReviewPair{
			Overall:  interrater.Pair{Model: float64(a.OverallScore), Expert: float64(r.OverallScore)},
			Standing: interrater.Pair{Model: float64(a.StandingScore), Expert: float64(r.StandingScore)},
			Top:      interrater.Pair{Model: float64(a.TopScore), Expert: float64(r.TopScore)},
			Bottom:   interrater.Pair{Model: float64(a.BottomScore), Expert: float64(r.BottomScore)},
		})
	}

	return &dto.InterraterAgreementResponse{
		AthleteName: athleteName,
		Report:      interrater.BuildReport(pairs),
	}, nil
}
