package ai

import (
	"context"
)

// ImageBase64 carries a base64-encoded image together with its data-URL
// prefix, ready to be sent to a vision model.
type ImageBase64 struct {
	Base64   string `json:"base64"`
	FileType string `json:"file_type"`
}

// ResponseFormat describes an optional JSON-schema constraint for a
// generation request. Schema is derived from a Go value via GenerateSchema.
type ResponseFormat struct {
	Name        string
	Description string
	Schema      any
}

// GenerateOptions holds configuration for oracle generation requests.
type GenerateOptions struct {
	Model         string          // Model identifier to use for generation
	SystemPrompts []string        // System prompts prepended to the request
	Temperature   float64         // Sampling temperature (0.0-2.0)
	Format        *ResponseFormat // Optional JSON-schema response format
}

// GenerateOption is a functional option for configuring oracle requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithResponseFormat returns a GenerateOption that asks the backend to
// constrain its output to the JSON schema of value. The raw response text
// is still returned as-is; callers parse it themselves.
func WithResponseFormat(name string, description string, value any) GenerateOption {
	return func(o *GenerateOptions) {
		o.Format = &ResponseFormat{
			Name:        name,
			Description: description,
			Schema:      GenerateSchema(value),
		}
	}
}

// ModelMetrics contains performance metrics from oracle operations.
type ModelMetrics struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	TotalTokens  int   `json:"total_tokens"`
	DurationMs   int64 `json:"duration_ms"`
}

// ExtractionClient is the boundary to the external inference service.
// Invoke submits one prompt and returns the raw response text; it never
// interprets the response. Failures surface as *ContentFilterError when
// the service's own signaling reports a content-policy block, and as
// *TransportError for every other delivery failure, timeouts included.
//
// TranscribeImage sends a vision request with a base64 image and returns
// the model's textual transcription; it is used by the page recognition
// fallback.
type ExtractionClient interface {
	Invoke(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	TranscribeImage(
		ctx context.Context,
		prompt string,
		image ImageBase64,
	) (string, error)

	ResetMetrics()
	GetMetrics() ModelMetrics
}
