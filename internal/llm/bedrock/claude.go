package bedrock

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/dmoraru/llm-reliability-gate/internal/llm"
)

type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

var anthropicVersion = "bedrock-2023-05-31"

const defaultMaxTokens = 1000

// Invoke sends one messages-API request to the configured Claude model.
// Only the Claude family has a request mapping; any other model id fails
// with UnsupportedModelError.
func (c *Client) Invoke(ctx context.Context, request llm.Request) (*llm.Response, error) {
	if !strings.Contains(c.ModelID, "claude") {
		return nil, &llm.UnsupportedModelError{ModelID: c.ModelID}
	}

	maxTokens := request.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	payload := claudeMessageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      request.Temperature,
		System:           request.System,
		Messages: []claudeMessage{
			{
				Role:    "user",
				Content: request.Prompt,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "bedrock", Op: "marshal request", Err: err}
	}

	output, err := c.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.ModelID,
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})

	if err != nil {
		return nil, classifyError(err)
	}

	var response claudeMessageResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, &llm.ProviderError{Provider: "bedrock", Op: "unmarshal response", Err: err}
	}

	var content string
	if len(response.Content) > 0 {
		content = response.Content[0].Text
	}

	return &llm.Response{
		Content:    content,
		StopReason: response.StopReason,
	}, nil
}

// classifyError splits Bedrock failures into the retryable throttling class
// and everything else.
func classifyError(err error) error {
	errStr := err.Error()

	if strings.Contains(errStr, "ThrottlingException") ||
		strings.Contains(errStr, "TooManyRequestsException") ||
		strings.Contains(errStr, "Rate exceeded") {
		return &llm.ThrottlingError{Provider: "bedrock", Err: err}
	}

	return &llm.ProviderError{Provider: "bedrock", Op: "invoke model", Err: err}
}
