package main

import (
	"log"
	"os"

	"matvision-be/internal/model"
	"matvision-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	// Extensions first: gen_random_uuid and the vector column type must
	// exist before AutoMigrate touches the tables.
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	models := []interface{}{
		&model.AnalysisJob{},
		&model.Assessment{},
		&model.ExpertReview{},
		&model.AssessmentEmbedding{},
		&model.InferenceConfig{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	postMigrationSQL := []string{
		// ANN index for cosine search over assessment chunks.
		`CREATE INDEX IF NOT EXISTS idx_assessment_embeddings_hnsw
		 ON assessment_embeddings USING hnsw (embedding_value vector_cosine_ops);`,

		// Janitor sweeps scan processing jobs by age.
		`CREATE INDEX IF NOT EXISTS idx_analysis_jobs_status_created_at
		 ON analysis_jobs (status, created_at);`,

		// Analytics reads one athlete's scored history in order.
		`CREATE INDEX IF NOT EXISTS idx_assessments_requester_athlete
		 ON assessments (requester_id, athlete_name, mode, created_at);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	// Seed the inference settings so operators have rows to edit instead of
	// a magic empty table.
	seedSQL := `INSERT INTO inference_configs (key, value, value_type, description, category, created_at, updated_at)
	VALUES
		('triage_model', 'gemini-2.0-flash-lite', 'string', 'Model used for the frame triage pass', 'models', now(), now()),
		('perception_model', 'gemini-2.0-flash', 'string', 'Model used for the perception pass', 'models', now(), now()),
		('reasoning_model', 'gemini-2.0-flash', 'string', 'Model used for the reasoning pass', 'models', now(), now()),
		('reasoning_temperature', '0.3', 'number', 'Sampling temperature for the reasoning pass', 'models', now(), now()),
		('pipeline_timeout_seconds', '240', 'number', 'Wall-clock budget for one analysis run', 'pipeline', now(), now()),
		('search_similarity_threshold', '0.35', 'number', 'Minimum cosine similarity for semantic search hits', 'general', now(), now())
	ON CONFLICT (key) DO NOTHING;`
	if err := db.Exec(seedSQL).Error; err != nil {
		log.Printf("Warn: Failed to seed inference configs: %v", err)
	}

	log.Println("Success: Database migration completed via GORM.")
}
