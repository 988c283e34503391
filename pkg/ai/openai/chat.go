package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doclens/doclens/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

// Invoke sends the given prompt to the configured extraction model and
// returns the raw model output.
//
// A blocked prompt is reported as an ai.ContentFilterError; any network
// or API layer failure is reported as an ai.TransportError. The returned
// text is never inspected here, callers parse it themselves.
func (client *ExtractionOpenAIClient) Invoke(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	if client.ChatClient == nil {
		return "", &ai.TransportError{
			Cause: errors.New("chat client is not configured"),
		}
	}

	options := ai.GenerateOptions{
		Model:       client.extractionModel,
		Temperature: 0.1,
	}
	for _, opt := range opts {
		opt(&options)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(options.SystemPrompts)+1)
	for _, systemPrompt := range options.SystemPrompts {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:       options.Model,
		Messages:    messages,
		Temperature: openai.Float(options.Temperature),
	}

	if options.Format != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        options.Format.Name,
					Description: openai.String(options.Format.Description),
					Schema:      options.Format.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	start := time.Now()
	completion, err := client.ChatClient.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiError *openai.Error
		if errors.As(err, &apiError) && apiError.Code == "content_filter" {
			return "", &ai.ContentFilterError{Reason: apiError.Message}
		}
		return "", &ai.TransportError{Cause: err}
	}

	if len(completion.Choices) == 0 {
		return "", &ai.TransportError{
			Cause: errors.New("completion contained no choices"),
		}
	}

	choice := completion.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", &ai.ContentFilterError{
			Reason: fmt.Sprintf("model %s blocked the prompt", options.Model),
		}
	}

	client.modifyMetrics(
		completion.Usage.PromptTokens,
		completion.Usage.CompletionTokens,
		time.Since(start).Milliseconds(),
	)

	return choice.Message.Content, nil
}
