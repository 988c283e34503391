// Package ocr implements page text recognition over the AI vision
// boundary: a rendered page image goes in, its transcription comes out.
package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/doclens/doclens/pkg/ai"
	"github.com/doclens/doclens/pkg/logger"

	"golang.org/x/sync/semaphore"
)

const defaultMaxConcurrent = 2

// Recognizer transcribes page images through a vision-capable
// ai.ExtractionClient. Concurrent recognitions are bounded so a document
// full of scanned pages cannot flood the endpoint.
//
// A Recognizer should be created using NewRecognizer.
type Recognizer struct {
	client ai.ExtractionClient
	logger *logger.Logger

	lock *semaphore.Weighted
}

// NewRecognizerParams defines the configuration parameters for creating
// a new Recognizer. Client is required.
type NewRecognizerParams struct {
	Client ai.ExtractionClient
	Logger *logger.Logger

	MaxConcurrent int64
}

// NewRecognizer creates a new Recognizer backed by the given client.
func NewRecognizer(params NewRecognizerParams) (*Recognizer, error) {
	if params.Client == nil {
		return nil, errors.New("ai client is required")
	}

	maxConcurrent := params.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	return &Recognizer{
		client: params.Client,
		logger: params.Logger,
		lock:   semaphore.NewWeighted(maxConcurrent),
	}, nil
}

// Recognize transcribes one page image. Language hints, when given, are
// appended to the transcription prompt.
func (r *Recognizer) Recognize(
	ctx context.Context,
	image []byte,
	languageHints []string,
) (string, error) {
	if len(image) == 0 {
		return "", errors.New("empty page image")
	}

	if err := r.lock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer r.lock.Release(1)

	prompt := ai.TranscribePrompt
	if len(languageHints) > 0 {
		prompt = fmt.Sprintf(
			"%s\nThe page is most likely written in: %s.",
			prompt, strings.Join(languageHints, ", "),
		)
	}

	text, err := r.client.TranscribeImage(ctx, prompt, ai.ImageBase64{
		Base64:   base64.StdEncoding.EncodeToString(image),
		FileType: "png",
	})
	if err != nil {
		return "", fmt.Errorf("page transcription failed: %w", err)
	}

	text = strings.TrimSpace(text)
	r.logger.Debug("page transcribed", "chars", len(text))

	return text, nil
}
