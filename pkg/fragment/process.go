package fragment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/doclens/doclens/internal/util"
	"github.com/doclens/doclens/pkg/ai"
	"github.com/doclens/doclens/pkg/common"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"
)

// oversizeUnitTokens is the point at which a built unit is worth a
// warning; most hosted models degrade well before their hard limit.
const oversizeUnitTokens = 32768

// Chunk-local failure reasons as recorded in AnalysisResult.Errors.
const (
	ReasonContentFilter  = "content filter"
	ReasonTransportError = "transport error"
	ReasonMalformed      = "malformed response"
	ReasonPromptRejected = "prompt rejected"
)

// Schema guidance for the oracle. Entity types appear as fixed optional
// fields so the closed type set survives strict-schema backends, which
// reject open-ended maps.
type schemaEntity struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases"`
	Translation string   `json:"translation"`
}

type schemaEndpoint struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type schemaRelationship struct {
	Subject  schemaEndpoint `json:"subject"`
	Action   string         `json:"action"`
	Object   schemaEndpoint `json:"object"`
	Category string         `json:"category"`
	Source   string         `json:"source"`
}

type schemaEntities struct {
	Person       []schemaEntity `json:"Person,omitempty"`
	Organization []schemaEntity `json:"Organization,omitempty"`
	Location     []schemaEntity `json:"Location,omitempty"`
	Date         []schemaEntity `json:"Date,omitempty"`
	Event        []schemaEntity `json:"Event,omitempty"`
	Object       []schemaEntity `json:"Object,omitempty"`
	Code         []schemaEntity `json:"Code,omitempty"`
}

type schemaAnalysis struct {
	Entities      schemaEntities       `json:"entities"`
	Relationships []schemaRelationship `json:"relationships"`
}

type schemaEnvelope struct {
	DocumentAnalysis schemaAnalysis `json:"documentAnalysis"`
}

// Analyze runs the full decomposition-inference-merge pipeline over one
// document. It returns an error only when the document cannot be opened
// or paginated; every chunk-local failure is isolated and recorded in the
// result's error list instead.
func (c *FragmentClient) Analyze(
	ctx context.Context,
	renderer PageRenderer,
) (*common.AnalysisResult, error) {
	pages, err := c.loadPages(ctx, renderer)
	if err != nil {
		return nil, err
	}

	plan, err := c.planChunks(pages)
	if err != nil {
		return nil, &DocumentUnreadableError{Cause: err}
	}

	if plan.Visual {
		c.logger.Info(
			"document within page threshold, analyzing as a single unit",
			"pages", len(pages),
		)
	}
	c.logger.Info("chunk plan ready", "pages", len(pages), "chunks", len(plan.Chunks))

	accumulator := NewAccumulator()
	var mergeLock sync.Mutex

	group := errgroup.Group{}
	group.SetLimit(c.maxConcurrent)

	for i := range plan.Chunks {
		group.Go(func() error {
			// Failures never cross the chunk boundary; they become
			// error records on the accumulator.
			c.processChunk(ctx, plan.Chunks, i, accumulator, &mergeLock)
			return nil
		})
	}

	// Workers return no errors, Wait only synchronizes.
	_ = group.Wait()

	c.inferAcrossChunks(ctx, accumulator, &mergeLock)

	return accumulator.Result(), nil
}

func (c *FragmentClient) processChunk(
	ctx context.Context,
	chunks []common.Chunk,
	i int,
	accumulator *Accumulator,
	mergeLock *sync.Mutex,
) {
	chunk := chunks[i]
	unit := buildUnit(chunks, i, c.contextOverlap)

	if enc, err := tiktoken.GetEncoding("o200k_base"); err == nil {
		if tokens := len(enc.Encode(unit, nil, nil)); tokens > oversizeUnitTokens {
			c.logger.Warn("unit is unusually large",
				"chunk", chunk.Index, "tokens", tokens)
		}
	}

	systemPrompt := fmt.Sprintf(ai.ExtractPrompt, entityTypeList())

	raw, err := util.RetryWithContextIf(
		ctx,
		c.oracleRetries,
		ai.IsTransport,
		func(ctx context.Context) (string, error) {
			return c.oracle.Invoke(
				ctx,
				unit,
				ai.WithSystemPrompts(systemPrompt),
				ai.WithResponseFormat(
					"document_analysis",
					"Entities and relationships extracted from one unit of document text",
					schemaEnvelope{},
				),
			)
		},
	)
	if err != nil {
		reason := ReasonTransportError
		if ai.IsContentFiltered(err) {
			reason = ReasonContentFilter
		}
		c.logger.Warn("chunk oracle call failed",
			"chunk", chunk.Index, "id", chunk.ID, "reason", reason, "error", err)

		mergeLock.Lock()
		accumulator.RecordError(chunk.Index, reason)
		mergeLock.Unlock()
		return
	}

	parsed := ParseAnalysis(raw)
	switch parsed.Class {
	case ParseRecovered:
	case ParsePromptRejected:
		c.logger.Warn("chunk prompt rejected", "chunk", chunk.Index, "id", chunk.ID)
		mergeLock.Lock()
		accumulator.RecordError(chunk.Index, ReasonPromptRejected)
		mergeLock.Unlock()
		return
	default:
		c.logger.Warn("chunk response malformed", "chunk", chunk.Index, "id", chunk.ID)
		mergeLock.Lock()
		accumulator.RecordError(chunk.Index, ReasonMalformed)
		mergeLock.Unlock()
		return
	}

	if parsed.Truncated {
		c.logger.Debug("chunk response recovered from truncation",
			"chunk", chunk.Index, "id", chunk.ID)
	}

	mergeLock.Lock()
	defer mergeLock.Unlock()

	for _, entityType := range common.EntityTypes {
		for _, entity := range parsed.Entities[entityType] {
			accumulator.MergeEntity(entity)
		}
	}
	for _, relationship := range parsed.Relationships {
		accumulator.MergeRelationship(relationship)
	}
}

func entityTypeList() string {
	names := make([]string, len(common.EntityTypes))
	for i, entityType := range common.EntityTypes {
		names[i] = string(entityType)
	}
	return strings.Join(names, ", ")
}
