package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmoraru/llm-reliability-gate/internal/llm"
)

const DefaultBaseURL = "http://localhost:11434"

// Client talks to a local (or remote) Ollama instance over its generate API.
type Client struct {
	BaseURL    string
	ModelID    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, modelID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		ModelID: modelID,
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *Client) Invoke(ctx context.Context, request llm.Request) (*llm.Response, error) {
	payload := generateRequest{
		Model:  c.ModelID,
		Prompt: request.Prompt,
		System: request.System,
		Stream: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "ollama", Op: "marshal request", Err: err}
	}

	url := c.BaseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &llm.ProviderError{Provider: "ollama", Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "ollama", Op: "generate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &llm.ThrottlingError{Provider: "ollama", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &llm.ProviderError{
			Provider: "ollama",
			Op:       "generate",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(raw)),
		}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &llm.ProviderError{Provider: "ollama", Op: "decode response", Err: err}
	}

	return &llm.Response{Content: out.Response, StopReason: "stop"}, nil
}
