package fragment

import (
	"github.com/doclens/doclens/pkg/common"
)

// Accumulator is the running deduplicated entity/relationship store.
// It is mutated only through MergeEntity, MergeRelationship and
// RecordError; callers serialize access themselves (the pipeline merges
// under a mutex). Observed facts are never dropped; canonical entities
// only ever grow or get consolidated into one another.
type Accumulator struct {
	entities         map[common.EntityType][]common.Entity
	relationships    []common.Relationship
	relationshipKeys map[string]bool
	errors           []common.ChunkError
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		entities:         make(map[common.EntityType][]common.Entity),
		relationships:    make([]common.Relationship, 0),
		relationshipKeys: make(map[string]bool),
		errors:           make([]common.ChunkError, 0),
	}
}

// MergeEntity folds one observed entity into the canonical set of its
// type. An observation equivalent to an existing canonical entity unions
// its aliases into the match (first-seen order, deduplicated by
// normalized form) and fills in the translation when the match has none.
// A novel observation becomes a new canonical entity. Merging a set of
// observations in any order yields the same canonical set and the same
// alias membership.
func (a *Accumulator) MergeEntity(incoming common.Entity) {
	if incoming.Name == "" {
		return
	}

	canonical := a.entities[incoming.Type]

	var matches []int
	for i := range canonical {
		if SameEntity(&canonical[i], &incoming) {
			matches = append(matches, i)
		}
	}

	if len(matches) > 0 {
		target := &canonical[matches[0]]
		seen := entityKeys(target)
		// The display name joins the alias union too, so the surviving
		// canonical entity keeps every observed surface form regardless
		// of merge order.
		absorb := func(e *common.Entity) {
			for _, form := range append([]string{e.Name}, e.Aliases...) {
				key := Normalize(form)
				if key == "" || seen[key] {
					continue
				}
				target.Aliases = append(target.Aliases, form)
				seen[key] = true
			}
			if target.Translation == "" {
				target.Translation = e.Translation
			}
		}
		absorb(&incoming)

		// An observation can bridge canonicals that looked distinct
		// until now; fold the later ones into the first so no two
		// stored entities stay mutually equivalent.
		if len(matches) > 1 {
			bridged := make(map[int]bool, len(matches)-1)
			for _, idx := range matches[1:] {
				other := canonical[idx]
				absorb(&other)
				bridged[idx] = true
			}
			kept := make([]common.Entity, 0, len(canonical)-len(bridged))
			for i := range canonical {
				if !bridged[i] {
					kept = append(kept, canonical[i])
				}
			}
			a.entities[incoming.Type] = kept
		}
		return
	}

	inserted := common.Entity{
		Type:        incoming.Type,
		Name:        incoming.Name,
		Aliases:     make([]string, 0, len(incoming.Aliases)),
		Translation: incoming.Translation,
	}
	nameKey := Normalize(incoming.Name)
	seen := map[string]bool{nameKey: true}
	for _, alias := range incoming.Aliases {
		key := Normalize(alias)
		if key == "" || seen[key] {
			continue
		}
		inserted.Aliases = append(inserted.Aliases, alias)
		seen[key] = true
	}
	a.entities[incoming.Type] = append(a.entities[incoming.Type], inserted)
}

// MergeRelationship inserts one relationship unless its normalized
// 5-tuple key is already present. A duplicate is discarded whole; the
// stored occurrence keeps its own category and source.
func (a *Accumulator) MergeRelationship(incoming common.Relationship) {
	if incoming.Subject.Name == "" || incoming.Action == "" || incoming.Object.Name == "" {
		return
	}

	key := RelationshipKey(&incoming)
	if a.relationshipKeys[key] {
		return
	}

	a.relationshipKeys[key] = true
	a.relationships = append(a.relationships, incoming)
}

// RecordError appends one chunk failure record.
func (a *Accumulator) RecordError(chunkIndex int, reason string) {
	a.errors = append(a.errors, common.ChunkError{
		ChunkIndex: chunkIndex,
		Reason:     reason,
	})
}

// EntityCount returns the number of canonical entities across all types.
func (a *Accumulator) EntityCount() int {
	count := 0
	for _, canonical := range a.entities {
		count += len(canonical)
	}
	return count
}

// Inventory returns the canonical entity names grouped by type, in the
// fixed type order. Types without entities are omitted.
func (a *Accumulator) Inventory() map[common.EntityType][]string {
	inventory := make(map[common.EntityType][]string, len(a.entities))
	for _, entityType := range common.EntityTypes {
		canonical := a.entities[entityType]
		if len(canonical) == 0 {
			continue
		}
		names := make([]string, 0, len(canonical))
		for _, e := range canonical {
			names = append(names, e.Name)
		}
		inventory[entityType] = names
	}
	return inventory
}

// Result returns a deep-copied snapshot of the accumulated state. The
// snapshot always carries non-nil lists so it marshals to well-formed
// JSON even when empty.
func (a *Accumulator) Result() *common.AnalysisResult {
	entities := make(map[common.EntityType][]common.Entity, len(a.entities))
	for entityType, canonical := range a.entities {
		copied := make([]common.Entity, len(canonical))
		for i, e := range canonical {
			copied[i] = e
			copied[i].Aliases = append([]string(nil), e.Aliases...)
		}
		entities[entityType] = copied
	}

	relationships := make([]common.Relationship, len(a.relationships))
	copy(relationships, a.relationships)
	errors := make([]common.ChunkError, len(a.errors))
	copy(errors, a.errors)

	return &common.AnalysisResult{
		Entities:      entities,
		Relationships: relationships,
		Errors:        errors,
	}
}
