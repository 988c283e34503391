package ollama

import (
	"context"
	"encoding/base64"

	"github.com/doclens/doclens/pkg/ai"

	"github.com/ollama/ollama/api"
)

// TranscribeImage sends a vision chat request with a base64 page image and
// returns the model's transcription of the page text.
func (c *ExtractionOllamaClient) TranscribeImage(
	ctx context.Context,
	prompt string,
	image ai.ImageBase64,
) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(image.Base64)
	if err != nil {
		return "", &ai.TransportError{Cause: err}
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", &ai.TransportError{Cause: err}
	}
	defer c.reqLock.Release(1)

	stream := false

	req := &api.ChatRequest{
		Model: c.imageModel,
		Messages: []api.Message{
			{Role: "system", Content: prompt},
			{
				Role:    "user",
				Content: "",
				Images:  []api.ImageData{raw},
			},
		},
		Stream: &stream,
	}

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final = cr
		return nil
	}); err != nil {
		return "", &ai.TransportError{Cause: err}
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.TotalDuration.Milliseconds(),
	})

	return final.Message.Content, nil
}
