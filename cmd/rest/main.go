package main

import (
	"context"
	"log"

	"matvision-be/internal/bootstrap"
	"matvision-be/internal/config"
	"matvision-be/internal/server"
	"matvision-be/internal/tracer"
	"matvision-be/pkg/database"
)

func main() {
	// Tracing is a no-op unless OTEL_ENABLED=true.
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Background workers: the analysis queue, the embedding queue and the
	// job janitor all run inside this process.
	go func() {
		log.Println("Background: Starting Analysis Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	go func() {
		log.Println("Background: Starting Embedding Consumer...")
		if err := container.EmbeddingConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Embedding Consumer Error: %v", err)
		}
	}()
	if err := container.JanitorService.Start(); err != nil {
		log.Printf("Janitor failed to start: %v", err)
	}

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
