package bootstrap

import (
	"context"
	"log"

	"matvision-be/internal/config"
	"matvision-be/internal/controller"
	"matvision-be/internal/pkg/logger"
	"matvision-be/internal/repository/unitofwork"
	"matvision-be/internal/service"
	"matvision-be/pkg/embedding"
	"matvision-be/pkg/metrics"
	pktNats "matvision-be/pkg/nats"
	"matvision-be/pkg/vision"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AnalysisController  controller.IAnalysisController
	AnalyticsController controller.IAnalyticsController
	HealthController    controller.IHealthController

	// Background services (exposed for main.go to run)
	ConsumerService          service.IConsumerService
	EmbeddingConsumerService service.IEmbeddingConsumerService
	JanitorService           service.IJanitorService

	// MetricsRegistry backs the /metrics endpoint.
	MetricsRegistry *prometheus.Registry
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	// Stage transitions get their own file so pipeline forensics never
	// wade through request logs.
	pipelineLogger := logger.NewIsolatedLogger(cfg.App.PipelineLogPath)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Vision.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Vision.OllamaBaseURL,
			cfg.Vision.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Vision.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// Per-run model selection comes from the ruleset, so the client itself
	// stays model-agnostic.
	visionClient := vision.NewClient(cfg.Keys.GoogleGemini)

	// 4. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.New(registry)

	// 5. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		// Services treat a nil client as "cache disabled" instead of
		// warning on every poll.
		log.Printf("[WARN] Failed to connect to Redis, poll cache disabled: %v", err)
		rdb = nil
	}

	// 6. Services
	rulesetService := service.NewRulesetService(uowFactory, cfg, sysLogger)
	analyzePublisher := service.NewPublisherService(cfg.Keys.AnalyzeTopic, pubSub)
	embedPublisher := service.NewPublisherService(cfg.Keys.EmbedAssessmentTopic, pubSub)

	analysisService := service.NewAnalysisService(
		uowFactory,
		visionClient,
		rulesetService,
		analyzePublisher,
		embedPublisher,
		embeddingProvider,
		natsPub,
		rdb,
		sysLogger,
		pipelineLogger,
		pipelineMetrics,
		cfg,
	)
	analyticsService := service.NewAnalyticsService(uowFactory, natsPub, sysLogger)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.AnalyzeTopic,
		analysisService,
	)
	embeddingConsumerService := service.NewEmbeddingConsumerService(
		pubSub,
		cfg.Keys.EmbedAssessmentTopic,
		uowFactory,
		embeddingProvider,
	)
	janitorService := service.NewJanitorService(
		uowFactory,
		rulesetService,
		pipelineMetrics,
		cfg,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		AnalysisController:  controller.NewAnalysisController(analysisService),
		AnalyticsController: controller.NewAnalyticsController(analyticsService),
		HealthController:    controller.NewHealthController(),

		ConsumerService:          consumerService,
		EmbeddingConsumerService: embeddingConsumerService,
		JanitorService:           janitorService,

		MetricsRegistry: registry,
	}
}
