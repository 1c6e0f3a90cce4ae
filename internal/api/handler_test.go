package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/dmoraru/llm-reliability-gate/internal/api"
	"github.com/dmoraru/llm-reliability-gate/internal/config"
	"github.com/dmoraru/llm-reliability-gate/internal/ingest"
	"github.com/dmoraru/llm-reliability-gate/internal/models"
	"github.com/dmoraru/llm-reliability-gate/internal/pipeline"
	"github.com/rs/zerolog"
)

const testConfigYAML = `
use_case: "handler-test"
thresholds:
  deploy: 0.8
  warn: 0.5
evaluation:
  num_prompts: 2
target_model:
  provider: ollama
  model_id: llama3.2
verification_model:
  model_id: anthropic.claude-3-sonnet
elasticsearch:
  host: localhost
doc_sources: []
`

// stubStage satisfies pipeline.Stage with a canned run function.
type stubStage struct {
	name string
	run  func(state *models.RunState) error
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Run(ctx context.Context, state *models.RunState) error {
	return s.run(state)
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// setupTestAPI wires the handler with an in-memory pipeline instead of
// cloud clients.
func setupTestAPI(t *testing.T, configPath string) *restful.Container {
	t.Helper()
	logger := zerolog.Nop()

	buildRunner := func(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
		scorer := &stubStage{
			name: "score-risk",
			run: func(state *models.RunState) error {
				state.Prompts = []string{"p1", "p2"}
				state.Responses = []models.Response{{Prompt: "p1", Text: "a"}, {Prompt: "p2", Text: "b"}}
				state.Claims = []models.Claim{{ID: "c1", Text: "claim"}}
				state.Verdicts = []models.Verdict{{ClaimText: "claim", Label: models.LabelSupported, Justification: "j"}}
				state.Score = &models.Score{
					TotalClaims: 1,
					Supported:   1,
					Reliability: 1.0,
					Decision:    models.DecisionDeploy,
				}
				return nil
			},
		}
		return pipeline.NewRunner([]pipeline.Stage{scorer}, nil, &logger), nil
	}

	buildIngestor := func(ctx context.Context, cfg *config.Config) (*ingest.Ingestor, error) {
		return nil, errors.New("ingest not wired in this test")
	}

	handler := api.NewHandler(configPath, buildRunner, buildIngestor, &logger)

	container := restful.NewContainer()
	api.RegisterRoutes(container, handler)
	return container
}

func TestAPI_Health(t *testing.T) {
	container := setupTestAPI(t, writeTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()

	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", recorder.Code)
	}

	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", response.Status)
	}
}

func TestAPI_Evaluate_HappyPath(t *testing.T) {
	container := setupTestAPI(t, writeTestConfig(t))

	body, _ := json.Marshal(api.EvaluateRequest{UseCase: "handler-test"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var result pipeline.RunResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if result.Score == nil {
		t.Fatal("expected a score")
	}
	if result.Score.Decision != models.DecisionDeploy {
		t.Errorf("expected deploy, got %s", result.Score.Decision)
	}
	if result.Details.NumPrompts != 2 || result.Details.NumClaims != 1 {
		t.Errorf("unexpected details: %+v", result.Details)
	}
}

func TestAPI_Evaluate_EmptyBody(t *testing.T) {
	container := setupTestAPI(t, writeTestConfig(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", nil)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("empty body should fall back to the default config, got %d. Body: %s",
			recorder.Code, recorder.Body.String())
	}
}

func TestAPI_Evaluate_BadConfig(t *testing.T) {
	container := setupTestAPI(t, filepath.Join(t.TempDir(), "missing.yaml"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for a broken config, got %d", recorder.Code)
	}
}

func TestAPI_Evaluate_ConfigPathOverride(t *testing.T) {
	// handler default points at a missing file; the request supplies a good one
	container := setupTestAPI(t, filepath.Join(t.TempDir(), "missing.yaml"))
	goodPath := writeTestConfig(t)

	body, _ := json.Marshal(api.EvaluateRequest{ConfigPath: goodPath})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200 with override path, got %d. Body: %s",
			recorder.Code, recorder.Body.String())
	}
}

func TestAPI_Ingest_WiringFailure(t *testing.T) {
	container := setupTestAPI(t, writeTestConfig(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500 when the ingestor cannot be wired, got %d", recorder.Code)
	}
}
