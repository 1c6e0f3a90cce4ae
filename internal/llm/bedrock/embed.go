package bedrock

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/dmoraru/llm-reliability-gate/internal/llm"
)

type titanEmbedRequest struct {
	InputText string `json:"inputText"`
}

type titanEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates an embedding vector with the Titan embeddings model.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanEmbedRequest{InputText: text})
	if err != nil {
		return nil, &llm.ProviderError{Provider: "bedrock", Op: "marshal embed request", Err: err}
	}

	output, err := c.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.EmbeddingModelID,
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, classifyError(err)
	}

	var response titanEmbedResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, &llm.ProviderError{Provider: "bedrock", Op: "unmarshal embed response", Err: err}
	}

	return response.Embedding, nil
}
