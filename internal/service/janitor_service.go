package service

import (
	"context"
	"time"

	"matvision-be/internal/config"
	"matvision-be/internal/entity"
	"matvision-be/internal/pkg/logger"
	"matvision-be/internal/pkg/serverutils"
	"matvision-be/internal/repository/unitofwork"
	"matvision-be/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// IJanitorService sweeps the job table on a schedule: jobs stuck in
// processing are failed, terminal jobs past retention are purged.
type IJanitorService interface {
	Start() error
	Stop()
	RunOnce(ctx context.Context)
}

type janitorService struct {
	uowFactory      unitofwork.RepositoryFactory
	ruleset         IRulesetService
	pipelineMetrics *metrics.PipelineMetrics
	cfg             *config.Config
	logger          logger.ILogger
	cron            *cron.Cron
}

func NewJanitorService(
	uowFactory unitofwork.RepositoryFactory,
	ruleset IRulesetService,
	pipelineMetrics *metrics.PipelineMetrics,
	cfg *config.Config,
	log logger.ILogger,
) IJanitorService {
	return &janitorService{
		uowFactory:      uowFactory,
		ruleset:         ruleset,
		pipelineMetrics: pipelineMetrics,
		cfg:             cfg,
		logger:          log,
		cron:            cron.New(),
	}
}

func (s *janitorService) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Pipeline.JanitorCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("JANITOR", "Job janitor scheduled", map[string]interface{}{
		"cron":           s.cfg.Pipeline.JanitorCronSpec,
		"retention_days": s.cfg.Pipeline.JobRetentionDays,
	})
	return nil
}

func (s *janitorService) Stop() {
	s.cron.Stop()
}

func (s *janitorService) RunOnce(ctx context.Context) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// A job still processing after twice the pipeline budget lost its
	// worker: a crash, a dropped message, or an enqueue that never landed.
	budget := s.ruleset.Effective(ctx).PipelineTimeout
	stuckSince := time.Now().Add(-2 * budget)
	swept, err := uow.AnalysisJobRepository().FailStuck(ctx, stuckSince, serverutils.CodePipelineTimeout, "job exceeded its processing window")
	if err != nil {
		s.logger.Error("JANITOR", "Failed to sweep stuck jobs", map[string]interface{}{
			"error": err.Error(),
		})
	} else if swept > 0 {
		// Keep the in-flight gauge honest for jobs that never reported back.
		for i := int64(0); i < swept; i++ {
			s.pipelineMetrics.JobFinished(entity.JobStatusFailed)
		}
		s.logger.Warn("JANITOR", "Marked stuck jobs as failed", map[string]interface{}{
			"count":       swept,
			"stuck_since": stuckSince,
		})
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.Pipeline.JobRetentionDays)
	purged, err := uow.AnalysisJobRepository().PurgeTerminalBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("JANITOR", "Failed to purge expired jobs", map[string]interface{}{
			"error": err.Error(),
		})
	} else if purged > 0 {
		s.logger.Info("JANITOR", "Purged expired jobs", map[string]interface{}{
			"count":  purged,
			"cutoff": cutoff,
		})
	}
}
