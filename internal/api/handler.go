package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/dmoraru/llm-reliability-gate/internal/api/middleware"
	"github.com/dmoraru/llm-reliability-gate/internal/config"
	"github.com/dmoraru/llm-reliability-gate/internal/ingest"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/dmoraru/llm-reliability-gate/internal/pipeline"
	"github.com/rs/zerolog"
)

// RunnerBuilder wires a pipeline for one effective config. Injected so the
// handler is testable without cloud clients.
type RunnerBuilder func(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error)

// IngestorBuilder wires the ingest job for one effective config.
type IngestorBuilder func(ctx context.Context, cfg *config.Config) (*ingest.Ingestor, error)

type Handler struct {
	configPath    string
	buildRunner   RunnerBuilder
	buildIngestor IngestorBuilder
	logger        *zerolog.Logger
}

func NewHandler(configPath string, buildRunner RunnerBuilder, buildIngestor IngestorBuilder, logger *zerolog.Logger) *Handler {
	return &Handler{
		configPath:    configPath,
		buildRunner:   buildRunner,
		buildIngestor: buildIngestor,
		logger:        logger,
	}
}

// EvaluateRequest optionally overrides the config file for one run.
type EvaluateRequest struct {
	UseCase    string `json:"use_case,omitempty"`
	ConfigPath string `json:"config_path,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type IngestResponse struct {
	Status string       `json:"status"`
	Stats  ingest.Stats `json:"stats"`
}

// POST /api/v1/evaluate
// Runs the full pipeline synchronously and returns the scored result, or a
// single error payload on a fatal cause.
func (h *Handler) Evaluate(req *restful.Request, resp *restful.Response) {
	var evalRequest EvaluateRequest
	if err := req.ReadEntity(&evalRequest); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error().Err(err).Msg("failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	configPath := evalRequest.ConfigPath
	if configPath == "" {
		configPath = h.configPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		h.logger.Error().Err(err).Str("path", configPath).Msg("config load failed")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()
	runner, err := h.buildRunner(ctx, cfg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to wire evaluation pipeline")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	state := models.NewRunState(cfg)
	if err := runner.Execute(ctx, state); err != nil {
		h.logger.Error().Err(err).Str("run_id", state.RunID).Msg("evaluation run failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("run_id", state.RunID).
		Str("decision", string(state.Score.Decision)).
		Msg("evaluation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, pipeline.BuildResult(state))
}

// POST /api/v1/ingest?clear_first=true
func (h *Handler) Ingest(req *restful.Request, resp *restful.Response) {
	clearFirst := req.QueryParameter("clear_first") == "true"

	cfg, err := config.Load(h.configPath)
	if err != nil {
		h.logger.Error().Err(err).Msg("config load failed")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()
	ingestor, err := h.buildIngestor(ctx, cfg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to wire ingestor")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	stats, err := ingestor.Run(ctx, clearFirst)
	if err != nil {
		h.logger.Error().Err(err).Msg("ingest failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, IngestResponse{Status: "success", Stats: stats})
}

// GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}
