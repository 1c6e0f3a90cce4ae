package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/dmoraru/llm-reliability-gate/internal/config"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/dmoraru/llm-reliability-gate/internal/pipeline"
	"github.com/dmoraru/llm-reliability-gate/internal/setup"
	"github.com/rs/zerolog"
)

// EvaluateInput is the MCP tool input schema.
type EvaluateInput struct {
	UseCase    string `json:"use_case,omitempty" jsonschema:"use case label for this run"`
	ConfigPath string `json:"config_path,omitempty" jsonschema:"optional path to an alternate config file"`
}

// NewEvaluateHandler returns a tool handler that runs one full evaluation.
// Pass the returned function to mcp.AddTool.
func NewEvaluateHandler(configPath string, logger *zerolog.Logger) func(context.Context, *mcp.CallToolRequest, EvaluateInput) (*mcp.CallToolResult, pipeline.RunResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EvaluateInput) (*mcp.CallToolResult, pipeline.RunResult, error) {
		return Evaluate(ctx, configPath, logger, input)
	}
}

// Evaluate loads the effective config, wires a pipeline and runs it.
func Evaluate(ctx context.Context, configPath string, logger *zerolog.Logger, input EvaluateInput) (*mcp.CallToolResult, pipeline.RunResult, error) {
	path := input.ConfigPath
	if path == "" {
		path = configPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, pipeline.RunResult{}, err
	}

	runner, err := setup.NewRunner(ctx, cfg, logger)
	if err != nil {
		return nil, pipeline.RunResult{}, err
	}

	state := models.NewRunState(cfg)
	if err := runner.Execute(ctx, state); err != nil {
		return nil, pipeline.RunResult{}, err
	}

	return nil, pipeline.BuildResult(state), nil
}
