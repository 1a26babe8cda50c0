package service

import (
	"context"
	"strconv"
	"time"

	"matvision-be/internal/config"
	"matvision-be/internal/entity"
	"matvision-be/internal/pkg/logger"
	"matvision-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
)

const (
	rulesetCacheKey = "inference_ruleset"
	rulesetCacheTTL = 5 * time.Minute
)

// Ruleset is the effective inference configuration for one pipeline run:
// env defaults overlaid with whatever rows exist in inference_configs.
type Ruleset struct {
	TriageModel          string
	PerceptionModel      string
	ReasoningModel       string
	ReasoningTemperature float64
	PipelineTimeout      time.Duration
	SearchThreshold      float64
}

// IRulesetService resolves the effective inference settings. DB rows win
// over env config; lookups are cached so the hot path stays off the DB.
type IRulesetService interface {
	Effective(ctx context.Context) Ruleset
	Invalidate()
}

type rulesetService struct {
	uowFactory unitofwork.RepositoryFactory
	cfg        *config.Config
	logger     logger.ILogger
	cache      *cache.Cache
}

func NewRulesetService(uowFactory unitofwork.RepositoryFactory, cfg *config.Config, log logger.ILogger) IRulesetService {
	return &rulesetService{
		uowFactory: uowFactory,
		cfg:        cfg,
		logger:     log,
		cache:      cache.New(rulesetCacheTTL, 10*time.Minute),
	}
}

func (s *rulesetService) defaults() Ruleset {
	return Ruleset{
		TriageModel:          s.cfg.Vision.TriageModel,
		PerceptionModel:      s.cfg.Vision.PerceptionModel,
		ReasoningModel:       s.cfg.Vision.ReasoningModel,
		ReasoningTemperature: 0.3,
		PipelineTimeout:      time.Duration(s.cfg.Pipeline.TimeoutSeconds) * time.Second,
		SearchThreshold:      0.35,
	}
}

func (s *rulesetService) Effective(ctx context.Context) Ruleset {
	if cached, found := s.cache.Get(rulesetCacheKey); found {
		return cached.(Ruleset)
	}

	rs := s.defaults()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.InferenceConfigRepository().FindAll(ctx)
	if err != nil {
		// A DB hiccup must not block analyses; serve env defaults and retry
		// on the next cache miss.
		s.logger.Warn("RULESET", "Failed to load inference configs, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return rs
	}

	for _, row := range rows {
		s.apply(&rs, row)
	}

	s.cache.Set(rulesetCacheKey, rs, cache.DefaultExpiration)
	return rs
}

func (s *rulesetService) apply(rs *Ruleset, row *entity.InferenceConfig) {
	switch row.Key {
	case entity.InferenceKeyTriageModel:
		if row.Value != "" {
			rs.TriageModel = row.Value
		}
	case entity.InferenceKeyPerceptionModel:
		if row.Value != "" {
			rs.PerceptionModel = row.Value
		}
	case entity.InferenceKeyReasoningModel:
		if row.Value != "" {
			rs.ReasoningModel = row.Value
		}
	case entity.InferenceKeyReasoningTemperature:
		if v, err := strconv.ParseFloat(row.Value, 64); err == nil && v >= 0 && v <= 2 {
			rs.ReasoningTemperature = v
		}
	case entity.InferenceKeyPipelineTimeoutSeconds:
		if v, err := strconv.Atoi(row.Value); err == nil && v > 0 {
			rs.PipelineTimeout = time.Duration(v) * time.Second
		}
	case entity.InferenceKeySearchThreshold:
		if v, err := strconv.ParseFloat(row.Value, 64); err == nil && v >= 0 && v <= 1 {
			rs.SearchThreshold = v
		}
	}
}

func (s *rulesetService) Invalidate() {
	s.cache.Delete(rulesetCacheKey)
}
