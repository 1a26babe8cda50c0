package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"matvision-be/internal/config"
	"matvision-be/internal/dto"
	"matvision-be/internal/entity"
	"matvision-be/internal/pkg/logger"
	"matvision-be/internal/pkg/serverutils"
	"matvision-be/internal/repository/specification"
	"matvision-be/internal/repository/unitofwork"
	"matvision-be/pkg/analysis"
	"matvision-be/pkg/analysis/perception"
	"matvision-be/pkg/analysis/reasoning"
	"matvision-be/pkg/embedding"
	"matvision-be/pkg/events"
	"matvision-be/pkg/metrics"
	pktNats "matvision-be/pkg/nats"
	"matvision-be/pkg/vision"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	jobCacheTTL       = 15 * time.Minute
	searchResultLimit = 10
	defaultPageSize   = 20
	maxPageSize       = 100
	snippetMaxRunes   = 240
)

type IAnalysisService interface {
	Submit(ctx context.Context, requesterId uuid.UUID, req *dto.SubmitAnalysisRequest) (*dto.SubmitAnalysisResponse, error)
	ProcessJob(ctx context.Context, msg *dto.PublishAnalyzeMatchMessage) error
	Poll(ctx context.Context, requesterId uuid.UUID, jobId uuid.UUID) (*dto.PollJobResponse, error)
	Show(ctx context.Context, requesterId uuid.UUID, id uuid.UUID) (*dto.ShowAssessmentResponse, error)
	List(ctx context.Context, requesterId uuid.UUID, page, pageSize int) (*dto.ListAssessmentsResponse, error)
	Search(ctx context.Context, requesterId uuid.UUID, query string) (*dto.SearchAssessmentsResponse, error)
}

type analysisService struct {
	uowFactory        unitofwork.RepositoryFactory
	provider          vision.Provider
	ruleset           IRulesetService
	publisherService  IPublisherService
	embedPublisher    IPublisherService
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	rdb               *redis.Client
	logger            logger.ILogger
	pipelineLogger    logger.ILogger
	pipelineMetrics   *metrics.PipelineMetrics
	cfg               *config.Config
}

// NewAnalysisService wires the analysis flow. eventPublisher and rdb may be
// nil; events and the poll cache degrade to no-ops.
func NewAnalysisService(
	uowFactory unitofwork.RepositoryFactory,
	provider vision.Provider,
	ruleset IRulesetService,
	publisherService IPublisherService,
	embedPublisher IPublisherService,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	rdb *redis.Client,
	log logger.ILogger,
	pipelineLog logger.ILogger,
	pipelineMetrics *metrics.PipelineMetrics,
	cfg *config.Config,
) IAnalysisService {
	return &analysisService{
		uowFactory:        uowFactory,
		provider:          provider,
		ruleset:           ruleset,
		publisherService:  publisherService,
		embedPublisher:    embedPublisher,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		rdb:               rdb,
		logger:            log,
		pipelineLogger:    pipelineLog,
		pipelineMetrics:   pipelineMetrics,
		cfg:               cfg,
	}
}

func (c *analysisService) Submit(ctx context.Context, requesterId uuid.UUID, req *dto.SubmitAnalysisRequest) (*dto.SubmitAnalysisResponse, error) {
	if len(req.Frames) > c.cfg.Pipeline.MaxSubmittedFrames {
		return nil, serverutils.InvalidInputError(fmt.Sprintf("too many frames: %d submitted, limit is %d", len(req.Frames), c.cfg.Pipeline.MaxSubmittedFrames))
	}

	frames := make([][]byte, len(req.Frames))
	for i, encoded := range req.Frames {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, serverutils.InvalidInputError(fmt.Sprintf("frame %d is not valid base64", i))
		}
		frames[i] = data
	}
	if req.Identification != nil && req.Identification.ReferenceFrame != "" {
		if _, err := base64.StdEncoding.DecodeString(req.Identification.ReferenceFrame); err != nil {
			return nil, serverutils.InvalidInputError("reference frame is not valid base64")
		}
	}

	mode := req.Mode
	if mode == "" {
		mode = entity.ModeAthlete
	}

	if req.Async {
		return c.submitAsync(ctx, requesterId, req, frames, mode)
	}
	return c.submitSync(ctx, requesterId, req, frames, mode)
}

func (c *analysisService) submitSync(ctx context.Context, requesterId uuid.UUID, req *dto.SubmitAnalysisRequest, frames [][]byte, mode string) (*dto.SubmitAnalysisResponse, error) {
	result, err := c.runPipeline(ctx, frames, req.MimeType, req.Style, mode, req.AthleteName, req.Identification, req.MatchContext)
	if err != nil {
		return nil, c.mapPipelineError(err)
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	resp := &dto.SubmitAnalysisResponse{
		Status: entity.JobStatusComplete,
		Result: resultJson,
	}

	// Persistence is best effort in the synchronous path: the caller already
	// paid for the result, so a storage failure must not discard it.
	assessment, err := c.persistAssessment(ctx, nil, requesterId, req.AthleteName, mode, req.Style, req.MatchContext, result, resultJson)
	if err != nil {
		c.logger.Warn("ANALYSIS", "Assessment persist failed, returning unsaved result", map[string]interface{}{
			"athlete_name": req.AthleteName,
			"error":        err.Error(),
		})
		return resp, nil
	}
	resp.AssessmentId = &assessment.Id

	c.enqueueEmbedding(ctx, assessment.Id)
	c.publishCompleted(ctx, uuid.Nil, assessment.Id, requesterId, req.AthleteName, mode, result)
	return resp, nil
}

func (c *analysisService) submitAsync(ctx context.Context, requesterId uuid.UUID, req *dto.SubmitAnalysisRequest, frames [][]byte, mode string) (*dto.SubmitAnalysisResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	job := entity.AnalysisJob{
		Id:              uuid.New(),
		RequesterId:     requesterId,
		AthleteName:     req.AthleteName,
		Mode:            mode,
		Style:           req.Style,
		Status:          entity.JobStatusProcessing,
		SubmittedFrames: len(frames),
		CreatedAt:       time.Now(),
	}
	if err := uow.AnalysisJobRepository().Create(ctx, &job); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishAnalyzeMatchMessage{
		JobId:          job.Id,
		RequesterId:    requesterId,
		Frames:         frames,
		MimeType:       req.MimeType,
		Style:          req.Style,
		Mode:           mode,
		AthleteName:    req.AthleteName,
		Identification: req.Identification,
		MatchContext:   req.MatchContext,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		// No worker will ever see this job; fail it now rather than leaving
		// a processing row for the janitor.
		if _, markErr := uow.AnalysisJobRepository().MarkFailed(ctx, job.Id, serverutils.CodePipelineFailed, "failed to enqueue analysis"); markErr != nil {
			c.logger.Error("ANALYSIS", "Failed to mark unqueued job as failed", map[string]interface{}{
				"job_id": job.Id,
				"error":  markErr.Error(),
			})
		}
		return nil, err
	}

	c.pipelineMetrics.JobStarted()
	c.cacheJobStatus(ctx, requesterId, &dto.PollJobResponse{JobId: job.Id, Status: entity.JobStatusProcessing})

	c.logger.Info("ANALYSIS", "Analysis job queued", map[string]interface{}{
		"job_id":       job.Id,
		"athlete_name": req.AthleteName,
		"mode":         mode,
		"frames":       len(frames),
	})

	return &dto.SubmitAnalysisResponse{
		JobId:  &job.Id,
		Status: entity.JobStatusProcessing,
	}, nil
}

// ProcessJob is the queue worker entry point. Terminal job outcomes return
// nil so the consumer acks; an error means no outcome could be recorded and
// the message should be redelivered.
func (c *analysisService) ProcessJob(ctx context.Context, msg *dto.PublishAnalyzeMatchMessage) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.AnalysisJobRepository().FindOne(ctx, specification.ByID{ID: msg.JobId})
	if err != nil {
		return err
	}
	if job == nil {
		c.logger.Warn("ANALYSIS", "Job row missing, dropping message", map[string]interface{}{
			"job_id": msg.JobId,
		})
		return nil
	}
	if job.Terminal() {
		// Duplicate delivery after the janitor or a previous attempt settled
		// the job.
		return nil
	}

	mode := msg.Mode
	if mode == "" {
		mode = entity.ModeAthlete
	}

	result, err := c.runPipeline(ctx, msg.Frames, msg.MimeType, msg.Style, mode, msg.AthleteName, msg.Identification, msg.MatchContext)
	if err != nil {
		var appErr *serverutils.AppError
		errors.As(c.mapPipelineError(err), &appErr)
		return c.failJob(ctx, msg, appErr.ErrorCode, appErr.Message)
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		return c.failJob(ctx, msg, serverutils.CodePipelineFailed, "failed to encode analysis result")
	}

	assessment, err := c.persistAssessment(ctx, &msg.JobId, msg.RequesterId, msg.AthleteName, mode, msg.Style, msg.MatchContext, result, resultJson)
	if err != nil {
		// A completed job must have a fetchable result. Without the
		// assessment row the honest status is failed.
		c.logger.Error("ANALYSIS", "Assessment persist failed for job", map[string]interface{}{
			"job_id": msg.JobId,
			"error":  err.Error(),
		})
		return c.failJob(ctx, msg, serverutils.CodePipelineFailed, "failed to persist assessment")
	}

	won, err := uow.AnalysisJobRepository().MarkComplete(ctx, msg.JobId, assessment.Id, result.Telemetry.AnalyzedFrames)
	if err != nil {
		return err
	}
	if !won {
		c.logger.Warn("ANALYSIS", "Job already terminal, dropping duplicate completion", map[string]interface{}{
			"job_id": msg.JobId,
		})
		return nil
	}

	c.pipelineMetrics.JobFinished(entity.JobStatusComplete)
	c.cacheJobStatus(ctx, msg.RequesterId, &dto.PollJobResponse{
		JobId:  msg.JobId,
		Status: entity.JobStatusComplete,
		Result: resultJson,
	})
	c.enqueueEmbedding(ctx, assessment.Id)
	c.publishCompleted(ctx, msg.JobId, assessment.Id, msg.RequesterId, msg.AthleteName, mode, result)

	c.logger.Info("ANALYSIS", "Analysis job completed", map[string]interface{}{
		"job_id":          msg.JobId,
		"assessment_id":   assessment.Id,
		"analyzed_frames": result.Telemetry.AnalyzedFrames,
	})
	return nil
}

func (c *analysisService) failJob(ctx context.Context, msg *dto.PublishAnalyzeMatchMessage, code, message string) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	won, err := uow.AnalysisJobRepository().MarkFailed(ctx, msg.JobId, code, message)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	c.pipelineMetrics.JobFinished(entity.JobStatusFailed)
	c.cacheJobStatus(ctx, msg.RequesterId, &dto.PollJobResponse{
		JobId:  msg.JobId,
		Status: entity.JobStatusFailed,
		Error:  &dto.JobError{Code: code, Message: message},
	})
	if c.eventPublisher != nil {
		evt := events.AnalysisFailed(msg.JobId, msg.RequesterId, msg.AthleteName, msg.Mode, code, message)
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.logger.Warn("ANALYSIS", "Failed to publish failure event", map[string]interface{}{
				"job_id": msg.JobId,
				"error":  err.Error(),
			})
		}
	}

	c.logger.Error("ANALYSIS", "Analysis job failed", map[string]interface{}{
		"job_id":       msg.JobId,
		"error_code":   code,
		"error_detail": message,
	})
	return nil
}

func (c *analysisService) runPipeline(ctx context.Context, frames [][]byte, mimeType, style, mode, athleteName string, ident *dto.IdentificationContext, matchCtx *dto.MatchContextRequest) (*analysis.Result, error) {
	rs := c.ruleset.Effective(ctx)

	opts := analysis.DefaultOptions()
	opts.Budget = rs.PipelineTimeout
	opts.MaxFrames = c.cfg.Pipeline.MaxSubmittedFrames
	opts.Triage.Model = rs.TriageModel
	opts.Perception.Model = rs.PerceptionModel
	opts.Reasoning.Model = rs.ReasoningModel
	opts.Reasoning.Temperature = rs.ReasoningTemperature

	req := analysis.Request{
		Frames:      frames,
		MimeType:    mimeType,
		Style:       style,
		Mode:        reasoning.Mode(mode),
		AthleteName: athleteName,
	}
	if ident != nil {
		pi := &perception.Identification{
			AthleteUniform:  ident.AthleteDescription,
			OpponentUniform: ident.OpponentDescription,
			AthleteSide:     ident.AthleteSide,
		}
		if ident.ReferenceFrame != "" {
			refFrame, err := base64.StdEncoding.DecodeString(ident.ReferenceFrame)
			if err != nil {
				return nil, serverutils.InvalidInputError("reference frame is not valid base64")
			}
			pi.ReferenceFrame = refFrame
		}
		req.Identification = pi
	}
	if matchCtx != nil {
		req.MatchContext = &reasoning.MatchContext{
			WeightClass:     matchCtx.WeightClass,
			Competition:     matchCtx.Competition,
			Round:           matchCtx.Round,
			DaysFromWeighIn: matchCtx.DaysFromWeighIn,
		}
	}

	pipeline := analysis.NewPipeline(c.provider, c.pipelineLogger, c.pipelineMetrics, opts)
	return pipeline.Run(ctx, req)
}

func (c *analysisService) persistAssessment(ctx context.Context, jobId *uuid.UUID, requesterId uuid.UUID, athleteName, mode, style string, matchCtx *dto.MatchContextRequest, result *analysis.Result, resultJson []byte) (*entity.Assessment, error) {
	flagsJson, err := json.Marshal(result.Flags)
	if err != nil {
		return nil, err
	}

	assessment := entity.Assessment{
		Id:           uuid.New(),
		JobId:        jobId,
		RequesterId:  requesterId,
		AthleteName:  athleteName,
		Mode:         mode,
		Style:        style,
		Document:     resultJson,
		QualityFlags: flagsJson,
		CreatedAt:    time.Now(),
	}
	if result.Assessment != nil {
		assessment.OverallScore = result.Assessment.OverallScore
		assessment.StandingScore = result.Assessment.PositionScores.Standing
		assessment.TopScore = result.Assessment.PositionScores.Top
		assessment.BottomScore = result.Assessment.PositionScores.Bottom
	}
	if matchCtx != nil {
		mcJson, err := json.Marshal(matchCtx)
		if err != nil {
			return nil, err
		}
		assessment.MatchContext = mcJson
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AssessmentRepository().Create(ctx, &assessment); err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (c *analysisService) enqueueEmbedding(ctx context.Context, assessmentId uuid.UUID) {
	payload := dto.PublishEmbedAssessmentMessage{AssessmentId: assessmentId}
	payloadJson, _ := json.Marshal(payload)
	if err := c.embedPublisher.Publish(ctx, payloadJson); err != nil {
		c.logger.Warn("ANALYSIS", "Failed to enqueue assessment embedding", map[string]interface{}{
			"assessment_id": assessmentId,
			"error":         err.Error(),
		})
	}
}

func (c *analysisService) publishCompleted(ctx context.Context, jobId, assessmentId, requesterId uuid.UUID, athleteName, mode string, result *analysis.Result) {
	if c.eventPublisher == nil {
		return
	}
	overall := 0
	if result.Assessment != nil {
		overall = result.Assessment.OverallScore
	}
	evt := events.AnalysisCompleted(jobId, assessmentId, requesterId, athleteName, mode, overall)
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("ANALYSIS", "Failed to publish completion event", map[string]interface{}{
			"assessment_id": assessmentId,
			"error":         err.Error(),
		})
	}
}

func (c *analysisService) mapPipelineError(err error) error {
	var appErr *serverutils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, analysis.ErrNoFrames),
		errors.Is(err, analysis.ErrTooManyFrames),
		errors.Is(err, analysis.ErrInvalidMode):
		return serverutils.InvalidInputError(err.Error())
	case errors.Is(err, vision.ErrInvalidAPIKey):
		return serverutils.InvalidAPIKeyError("inference service rejected the API key")
	case errors.Is(err, vision.ErrRateLimited):
		return serverutils.RateLimitedError("inference service is rate limiting requests")
	case errors.Is(err, analysis.ErrBudgetExceeded):
		return serverutils.PipelineTimeoutError("analysis exceeded its time budget")
	default:
		return serverutils.PipelineFailedError(err.Error())
	}
}

func jobCacheKey(requesterId, jobId uuid.UUID) string {
	return fmt.Sprintf("analysis:job:%s:%s", requesterId, jobId)
}

// cacheJobStatus writes the poll response through to redis. The key carries
// the requester so cache hits preserve ownership scoping.
func (c *analysisService) cacheJobStatus(ctx context.Context, requesterId uuid.UUID, resp *dto.PollJobResponse) {
	if c.rdb == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, jobCacheKey(requesterId, resp.JobId), payload, jobCacheTTL).Err(); err != nil {
		c.logger.Warn("ANALYSIS", "Failed to cache job status", map[string]interface{}{
			"job_id": resp.JobId,
			"error":  err.Error(),
		})
	}
}

func (c *analysisService) Poll(ctx context.Context, requesterId uuid.UUID, jobId uuid.UUID) (*dto.PollJobResponse, error) {
	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, jobCacheKey(requesterId, jobId)).Bytes(); err == nil {
			var cached dto.PollJobResponse
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.AnalysisJobRepository().FindOne(ctx,
		specification.ByID{ID: jobId},
		specification.RequestedBy{RequesterID: requesterId},
	)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, serverutils.NotFoundError("job not found")
	}

	resp := &dto.PollJobResponse{JobId: job.Id, Status: job.Status}
	switch job.Status {
	case entity.JobStatusComplete:
		if job.AssessmentId != nil {
			assessment, err := uow.AssessmentRepository().FindOne(ctx, specification.ByID{ID: *job.AssessmentId})
			if err != nil {
				return nil, err
			}
			if assessment != nil {
				resp.Result = assessment.Document
			}
		}
	case entity.JobStatusFailed:
		resp.Error = &dto.JobError{Code: job.ErrorCode, Message: job.ErrorMessage}
	}

	// Terminal statuses never change again, so they are safe to cache for
	// repeat polls.
	if job.Terminal() {
		c.cacheJobStatus(ctx, requesterId, resp)
	}
	return resp, nil
}

func (c *analysisService) Show(ctx context.Context, requesterId uuid.UUID, id uuid.UUID) (*dto.ShowAssessmentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	assessment, err := uow.AssessmentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.RequestedBy{RequesterID: requesterId},
	)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, serverutils.NotFoundError("assessment not found")
	}

	return &dto.ShowAssessmentResponse{
		Id:            assessment.Id,
		JobId:         assessment.JobId,
		AthleteName:   assessment.AthleteName,
		Mode:          assessment.Mode,
		Style:         assessment.Style,
		OverallScore:  assessment.OverallScore,
		StandingScore: assessment.StandingScore,
		TopScore:      assessment.TopScore,
		BottomScore:   assessment.BottomScore,
		Document:      assessment.Document,
		QualityFlags:  assessment.QualityFlags,
		MatchContext:  assessment.MatchContext,
		CreatedAt:     assessment.CreatedAt,
	}, nil
}

func (c *analysisService) List(ctx context.Context, requesterId uuid.UUID, page, pageSize int) (*dto.ListAssessmentsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned := specification.RequestedBy{RequesterID: requesterId}

	total, err := uow.AssessmentRepository().Count(ctx, owned)
	if err != nil {
		return nil, err
	}

	rows, err := uow.AssessmentRepository().FindAll(ctx,
		owned,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AssessmentListItem, 0, len(rows))
	for _, a := range rows {
		items = append(items, dto.AssessmentListItem{
			Id:           a.Id,
			AthleteName:  a.AthleteName,
			Mode:         a.Mode,
			OverallScore: a.OverallScore,
			CreatedAt:    a.CreatedAt,
		})
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &dto.ListAssessmentsResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (c *analysisService) Search(ctx context.Context, requesterId uuid.UUID, query string) (*dto.SearchAssessmentsResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, serverutils.InvalidInputError("search query is required")
	}

	embeddingRes, err := c.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	threshold := c.ruleset.Effective(ctx).SearchThreshold

	uow := c.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.AssessmentEmbeddingRepository().SearchSimilarWithScore(ctx, embeddingRes.Embedding.Values, searchResultLimit, requesterId, threshold)
	if err != nil {
		return nil, err
	}

	resp := &dto.SearchAssessmentsResponse{Query: query, Items: []dto.SearchAssessmentItem{}}
	if len(scored) == 0 {
		return resp, nil
	}

	// Multiple chunks of one assessment can land in the top K; keep the
	// best-scoring chunk per assessment, in score order.
	ids := make([]uuid.UUID, 0, len(scored))
	seen := make(map[uuid.UUID]bool)
	for _, sr := range scored {
		if !seen[sr.Embedding.AssessmentId] {
			seen[sr.Embedding.AssessmentId] = true
			ids = append(ids, sr.Embedding.AssessmentId)
		}
	}

	assessments, err := uow.AssessmentRepository().FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.RequestedBy{RequesterID: requesterId},
	)
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.Assessment, len(assessments))
	for _, a := range assessments {
		byId[a.Id] = a
	}

	added := make(map[uuid.UUID]bool)
	for _, sr := range scored {
		if added[sr.Embedding.AssessmentId] {
			continue
		}
		a := byId[sr.Embedding.AssessmentId]
		if a == nil {
			continue
		}
		added[a.Id] = true
		resp.Items = append(resp.Items, dto.SearchAssessmentItem{
			AssessmentId: a.Id,
			AthleteName:  a.AthleteName,
			Mode:         a.Mode,
			OverallScore: a.OverallScore,
			Snippet:      snippet(sr.Embedding.Document),
			Similarity:   sr.Similarity,
			CreatedAt:    a.CreatedAt,
		})
	}

	return resp, nil
}

func snippet(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= snippetMaxRunes {
		return string(runes)
	}
	return string(runes[:snippetMaxRunes]) + "..."
}
