package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/dmoraru/llm-reliability-gate/internal/config"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/dmoraru/llm-reliability-gate/internal/pipeline"
	"github.com/dmoraru/llm-reliability-gate/internal/setup"
	"github.com/dmoraru/llm-reliability-gate/internal/setup/logger"
	"github.com/rs/zerolog/log"
)

// One-shot evaluation run from the command line: load config, run the full
// pipeline once, print (or write) the result JSON, exit non-zero on any
// fatal failure.
func main() {
	startTime := time.Now()

	appLogger := logger.New(os.Getenv("GATE_LOG_LEVEL"))
	log.Logger = appLogger

	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	output := flag.String("output", "", "Optional output file for the result JSON (default: stdout)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}

	runner, err := setup.NewRunner(ctx, cfg, &appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire pipeline")
	}

	state := models.NewRunState(cfg)
	if err := runner.Execute(ctx, state); err != nil {
		log.Fatal().Err(err).Str("run_id", state.RunID).Msg("Evaluation run failed")
	}

	result := pipeline.BuildResult(state)
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}

	if *output == "" {
		os.Stdout.Write(payload)
		os.Stdout.Write([]byte("\n"))
	} else {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to write result")
		}
		log.Info().Str("file", *output).Msg("Result written")
	}

	log.Info().
		Str("run_id", state.RunID).
		Str("decision", string(state.Score.Decision)).
		Dur("elapsed", time.Since(startTime)).
		Msg("Run complete")
}
