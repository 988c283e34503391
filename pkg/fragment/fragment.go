// Package fragment implements the document knowledge-fragment extraction
// pipeline: page loading with a recognition fallback, chunk planning,
// context-windowed oracle calls, tolerant response parsing, and the
// incremental order-insensitive merge of partial results into one
// deduplicated AnalysisResult.
package fragment

import (
	"errors"

	"github.com/doclens/doclens/pkg/ai"
	"github.com/doclens/doclens/pkg/logger"
)

const (
	defaultPageThreshold  = 50
	defaultChunkSize      = 50
	defaultNoiseThreshold = 50
	defaultContextOverlap = 200
	defaultMaxConcurrent  = 4
	defaultOracleRetries  = 3
)

// FragmentClient runs document analyses. It is safe for concurrent use;
// each Analyze call keeps its own accumulator.
//
// A FragmentClient should be created using NewFragmentClient.
type FragmentClient struct {
	oracle     ai.ExtractionClient
	recognizer TextRecognizer
	logger     *logger.Logger

	pageThreshold  int
	chunkSize      int
	fineGrained    bool
	noiseThreshold int
	contextOverlap int
	maxConcurrent  int
	oracleRetries  int
	languageHints  []string
}

// NewFragmentClientParams defines the configuration parameters for
// creating a new FragmentClient.
//
// Oracle is required. Recognizer is optional; without one, low-text pages
// keep their direct text. PageThreshold, ChunkSize, NoiseThreshold and
// ContextOverlap fall back to the standard values when zero. FineGrained
// switches to one-page chunks. MaxConcurrentChunks bounds parallel oracle
// calls; OracleRetries bounds transport retries per chunk.
type NewFragmentClientParams struct {
	Oracle     ai.ExtractionClient
	Recognizer TextRecognizer
	Logger     *logger.Logger

	PageThreshold       int
	ChunkSize           int
	FineGrained         bool
	NoiseThreshold      int
	ContextOverlap      int
	MaxConcurrentChunks int
	OracleRetries       int
	LanguageHints       []string
}

// NewFragmentClient creates and returns a new FragmentClient configured
// with the provided parameters.
//
// Example:
//
//	client, err := fragment.NewFragmentClient(fragment.NewFragmentClientParams{
//		Oracle:     oracle,
//		Recognizer: recognizer,
//		Logger:     log,
//	})
func NewFragmentClient(params NewFragmentClientParams) (*FragmentClient, error) {
	if params.Oracle == nil {
		return nil, errors.New("oracle client is required")
	}

	client := &FragmentClient{
		oracle:     params.Oracle,
		recognizer: params.Recognizer,
		logger:     params.Logger,

		pageThreshold:  params.PageThreshold,
		chunkSize:      params.ChunkSize,
		fineGrained:    params.FineGrained,
		noiseThreshold: params.NoiseThreshold,
		contextOverlap: params.ContextOverlap,
		maxConcurrent:  params.MaxConcurrentChunks,
		oracleRetries:  params.OracleRetries,
		languageHints:  params.LanguageHints,
	}

	if client.pageThreshold <= 0 {
		client.pageThreshold = defaultPageThreshold
	}
	if client.chunkSize <= 0 {
		client.chunkSize = defaultChunkSize
	}
	if client.noiseThreshold <= 0 {
		client.noiseThreshold = defaultNoiseThreshold
	}
	if client.contextOverlap <= 0 {
		client.contextOverlap = defaultContextOverlap
	}
	if client.maxConcurrent <= 0 {
		client.maxConcurrent = defaultMaxConcurrent
	}
	if client.oracleRetries <= 0 {
		client.oracleRetries = defaultOracleRetries
	}

	return client, nil
}
