package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/emicklei/go-restful/v3"
	"github.com/joho/godotenv"
	"github.com/dmoraru/llm-reliability-gate/internal/api"
	"github.com/dmoraru/llm-reliability-gate/internal/api/middleware"
	"github.com/dmoraru/llm-reliability-gate/internal/config"
	"github.com/dmoraru/llm-reliability-gate/internal/ingest"
	"github.com/dmoraru/llm-reliability-gate/internal/pipeline"
	"github.com/dmoraru/llm-reliability-gate/internal/setup"
	"github.com/dmoraru/llm-reliability-gate/internal/setup/logger"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	appLogger := logger.New(os.Getenv("GATE_LOG_LEVEL"))
	log.Logger = appLogger

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	configPath := os.Getenv("GATE_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// API
	buildRunner := func(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
		return setup.NewRunner(ctx, cfg, &appLogger)
	}
	buildIngestor := func(ctx context.Context, cfg *config.Config) (*ingest.Ingestor, error) {
		return setup.NewIngestor(ctx, cfg, &appLogger)
	}
	handler := api.NewHandler(configPath, buildRunner, buildIngestor, &appLogger)
	container := restful.NewContainer()
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)

	// CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	// Server
	port := os.Getenv("GATE_API_PORT")
	if port == "" {
		port = "8080"
	}

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("address", addr).Str("config", configPath).Msg("Starting Reliability Gate API")

	server := http.Server{
		Addr:    addr,
		Handler: corsHandler.Handler(container),
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
