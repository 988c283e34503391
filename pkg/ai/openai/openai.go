package openai

import (
	"sync"

	"github.com/doclens/doclens/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// ExtractionOpenAIClient implements ai.ExtractionClient against any
// OpenAI-compatible chat completion endpoint. It keeps separate model
// names for text extraction and page transcription.
//
// An ExtractionOpenAIClient should be created using NewExtractionOpenAIClient.
type ExtractionOpenAIClient struct {
	extractionModel string
	imageModel      string

	chatURL  string
	chatKey  string
	imageURL string
	imageKey string

	imageLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient  *openai.Client
	ImageClient *openai.Client
}

// NewExtractionOpenAIClientParams defines the configuration parameters
// for creating a new ExtractionOpenAIClient.
//
// ExtractionModel specifies the model used for entity extraction calls.
// ImageModel specifies the vision model used for page transcription.
// ChatURL/ChatKey and ImageURL/ImageKey configure the two endpoints; the
// image endpoint falls back to the chat endpoint when left empty.
type NewExtractionOpenAIClientParams struct {
	ExtractionModel string
	ImageModel      string

	ChatURL  string
	ChatKey  string
	ImageURL string
	ImageKey string

	MaxConcurrentImages int64
}

// NewExtractionOpenAIClient creates and returns a new ExtractionOpenAIClient
// configured with the provided parameters.
//
// Example:
//
//	params := openai.NewExtractionOpenAIClientParams{
//		ExtractionModel: "gpt-4o-mini",
//		ImageModel:      "gpt-4o-mini",
//		ChatURL:         "https://api.openai.com/v1",
//		ChatKey:         os.Getenv("OPENAI_API_KEY"),
//	}
//	client := openai.NewExtractionOpenAIClient(params)
func NewExtractionOpenAIClient(
	params NewExtractionOpenAIClientParams,
) *ExtractionOpenAIClient {
	imageURL := params.ImageURL
	imageKey := params.ImageKey
	if imageKey == "" {
		imageURL = params.ChatURL
		imageKey = params.ChatKey
	}

	maxImages := params.MaxConcurrentImages
	if maxImages <= 0 {
		maxImages = 4
	}

	return &ExtractionOpenAIClient{
		extractionModel: params.ExtractionModel,
		imageModel:      params.ImageModel,

		chatURL:  params.ChatURL,
		chatKey:  params.ChatKey,
		imageURL: imageURL,
		imageKey: imageKey,

		imageLock: semaphore.NewWeighted(maxImages),

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		ChatClient:  newOpenaiClient(params.ChatURL, params.ChatKey),
		ImageClient: newOpenaiClient(imageURL, imageKey),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
