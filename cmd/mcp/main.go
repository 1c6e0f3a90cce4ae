package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/dmoraru/llm-reliability-gate/internal/mcpadapter"
	"github.com/dmoraru/llm-reliability-gate/internal/setup/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	appLogger := logger.New(os.Getenv("GATE_LOG_LEVEL"))
	log.Logger = appLogger

	// Load env
	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("GATE_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	server := createMCPServer(configPath, &appLogger)

	// Run over stdio
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			appLogger.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		appLogger.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}

func createMCPServer(configPath string, logger *zerolog.Logger) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "reliability-gate",
			Version: "1.0.0",
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_model",
		Description: "Run the full hallucination-risk evaluation of the configured target model and return the score and deployment decision",
	}, mcpadapter.NewEvaluateHandler(configPath, logger))

	return server
}
