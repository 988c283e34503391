package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doclens/doclens/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// TranscribeImage sends the given page image together with the prompt to
// the configured vision model and returns the transcribed text.
//
// Concurrent transcriptions are bounded by the client's image semaphore
// so a burst of pages cannot overload the endpoint.
func (client *ExtractionOpenAIClient) TranscribeImage(
	ctx context.Context,
	prompt string,
	image ai.ImageBase64,
) (string, error) {
	if client.ImageClient == nil {
		return "", &ai.TransportError{
			Cause: errors.New("image client is not configured"),
		}
	}

	if err := client.imageLock.Acquire(ctx, 1); err != nil {
		return "", &ai.TransportError{Cause: err}
	}
	defer client.imageLock.Release(1)

	imageURL := fmt.Sprintf(
		"data:image/%s;base64,%s",
		image.FileType,
		image.Base64,
	)

	params := openai.ChatCompletionNewParams{
		Model: client.imageModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: imageURL,
				}),
			}),
		},
	}

	start := time.Now()
	completion, err := client.ImageClient.Chat.Completions.New(ctx, params)
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
			Reason: fmt.Sprintf("model %s blocked the page image", client.imageModel),
		}
	}

	client.modifyMetrics(
		completion.Usage.PromptTokens,
		completion.Usage.CompletionTokens,
		time.Since(start).Milliseconds(),
	)

	return choice.Message.Content, nil
}
