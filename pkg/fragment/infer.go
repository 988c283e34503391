package fragment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/doclens/doclens/internal/util"
	"github.com/doclens/doclens/pkg/ai"
	"github.com/doclens/doclens/pkg/common"
)

// crossChunkIndex marks error records produced by the inference pass,
// which has no chunk of its own.
const crossChunkIndex = -1

// inferAcrossChunks runs the final inference pass: one oracle call over
// the merged entity inventory, asking for relationships the per-chunk
// extractions could not see because their endpoints never co-occurred in
// one unit. Any failure degrades to a single error record; chunk-derived
// results are never invalidated.
func (c *FragmentClient) inferAcrossChunks(
	ctx context.Context,
	accumulator *Accumulator,
	mergeLock *sync.Mutex,
) {
	mergeLock.Lock()
	inventory := accumulator.Inventory()
	count := accumulator.EntityCount()
	mergeLock.Unlock()

	if count == 0 {
		c.logger.Debug("no entities accumulated, skipping cross-entity inference")
		return
	}

	prompt := fmt.Sprintf(ai.InferPrompt, formatInventory(inventory))

	raw, err := util.RetryWithContextIf(
		ctx,
		c.oracleRetries,
		ai.IsTransport,
		func(ctx context.Context) (string, error) {
			return c.oracle.Invoke(
				ctx,
				prompt,
				ai.WithResponseFormat(
					"inferred_relationships",
					"Relationships inferred among already-extracted entities",
					[]schemaRelationship{},
				),
			)
		},
	)
	if err != nil {
		reason := ReasonTransportError
		if ai.IsContentFiltered(err) {
			reason = ReasonContentFilter
		}
		c.logger.Warn("cross-entity inference failed", "reason", reason, "error", err)

		mergeLock.Lock()
		accumulator.RecordError(crossChunkIndex, reason)
		mergeLock.Unlock()
		return
	}

	parsed := ParseRelationships(raw)
	if parsed.Class != ParseRecovered {
		reason := ReasonMalformed
		if parsed.Class == ParsePromptRejected {
			reason = ReasonPromptRejected
		}
		c.logger.Warn("cross-entity inference response unusable", "reason", reason)

		mergeLock.Lock()
		accumulator.RecordError(crossChunkIndex, reason)
		mergeLock.Unlock()
		return
	}

	mergeLock.Lock()
	defer mergeLock.Unlock()

	for _, relationship := range parsed.Relationships {
		accumulator.MergeRelationship(relationship)
	}

	c.logger.Info("cross-entity inference merged",
		"candidates", len(parsed.Relationships))
}

// formatInventory renders the entity inventory one type per line, names
// only, in the fixed type order.
func formatInventory(inventory map[common.EntityType][]string) string {
	var b strings.Builder
	for _, entityType := range common.EntityTypes {
		names := inventory[entityType]
		if len(names) == 0 {
			continue
		}
		b.WriteString(string(entityType))
		b.WriteString(": ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
