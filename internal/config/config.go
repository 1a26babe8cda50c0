package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Vision   VisionConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	PipelineLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini         string
	AnalyzeTopic         string
	EmbedAssessmentTopic string
}

type VisionConfig struct {
	PerceptionModel   string
	TriageModel       string
	ReasoningModel    string
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
}

type PipelineConfig struct {
	TimeoutSeconds     int
	JobRetentionDays   int
	JanitorCronSpec    string
	MaxSubmittedFrames int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			PipelineLogPath:    getEnv("PIPELINE_LOG_PATH", "logs/pipeline.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			AnalyzeTopic:         getEnv("ANALYZE_TOPIC_NAME", "ANALYZE_MATCH"),
			EmbedAssessmentTopic: getEnv("EMBED_ASSESSMENT_TOPIC_NAME", "EMBED_ASSESSMENT"),
		},
		Vision: VisionConfig{
			PerceptionModel:   getEnv("VISION_MODEL", "gemini-2.0-flash"),
			TriageModel:       getEnv("TRIAGE_MODEL", "gemini-2.0-flash-lite"),
			ReasoningModel:    getEnv("REASONING_MODEL", "gemini-2.0-flash"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Pipeline: PipelineConfig{
			TimeoutSeconds:     getEnvAsInt("PIPELINE_TIMEOUT_SECONDS", 240),
			JobRetentionDays:   getEnvAsInt("JOB_RETENTION_DAYS", 30),
			JanitorCronSpec:    getEnv("JANITOR_CRON_SPEC", "*/5 * * * *"),
			MaxSubmittedFrames: getEnvAsInt("MAX_SUBMITTED_FRAMES", 300),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
