package fragment

import (
	"encoding/json"
	"strings"

	"github.com/doclens/doclens/pkg/common"

	"github.com/kaptinlin/jsonrepair"
)

// ParseClass classifies the outcome of parsing one oracle response.
type ParseClass string

const (
	// ParseRecovered means a typed value was obtained, either from a
	// strict parse or from truncation recovery (see Truncated).
	ParseRecovered ParseClass = "recovered"
	// ParsePromptRejected means the response is a known refusal message.
	ParsePromptRejected ParseClass = "prompt_rejected"
	// ParseMalformed means no typed value could be recovered.
	ParseMalformed ParseClass = "malformed"
)

// refusalSentinels are checked only after parsing and recovery both fail.
// Matching is case-insensitive substring containment.
var refusalSentinels = []string{
	"i'm sorry",
	"i am sorry",
	"i cannot assist",
	"i can't assist",
	"i cannot help",
	"i can't help",
	"i cannot fulfill",
	"as an ai",
	"against my guidelines",
}

// AnalysisParse is the typed outcome of parsing a chunk extraction response.
type AnalysisParse struct {
	Class     ParseClass
	Truncated bool

	Entities      map[common.EntityType][]common.Entity
	Relationships []common.Relationship
}

// RelationshipParse is the typed outcome of parsing a cross-entity
// inference response, which is a bare JSON array of relationships.
type RelationshipParse struct {
	Class     ParseClass
	Truncated bool

	Relationships []common.Relationship
}

// Wire shapes as produced by the oracle. The legacy keys "spanish" and
// "type" (on a relationship) are still accepted because older model
// snapshots were prompted with them.
type wireEntity struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases"`
	Translation string   `json:"translation"`
	Spanish     string   `json:"spanish"`
}

type wireEndpoint struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type wireRelationship struct {
	Subject  wireEndpoint `json:"subject"`
	Action   string       `json:"action"`
	Object   wireEndpoint `json:"object"`
	Category string       `json:"category"`
	Type     string       `json:"type"`
	Source   string       `json:"source"`
}

type wireAnalysis struct {
	Entities      map[string][]wireEntity `json:"entities"`
	Relationships []wireRelationship      `json:"relationships"`
}

type wireEnvelope struct {
	DocumentAnalysis *wireAnalysis `json:"documentAnalysis"`
}

// ParseAnalysis turns a raw chunk extraction response into typed entities
// and relationships. It is pure and deterministic: the same input always
// yields the same class and, when recovery succeeds, the same value.
func ParseAnalysis(raw string) *AnalysisParse {
	stripped := stripFence(raw)

	envelope, truncated, ok := decodeTolerant[wireEnvelope](stripped)
	if !ok || envelope.DocumentAnalysis == nil || envelope.DocumentAnalysis.Entities == nil {
		return &AnalysisParse{Class: classifyFailure(stripped)}
	}

	analysis := envelope.DocumentAnalysis

	entities := make(map[common.EntityType][]common.Entity, len(analysis.Entities))
	for typeName, observed := range analysis.Entities {
		entityType := common.EntityType(typeName)
		if !common.KnownEntityType(entityType) {
			continue
		}
		for _, e := range observed {
			if e.Name == "" {
				continue
			}
			translation := e.Translation
			if translation == "" {
				translation = e.Spanish
			}
			entities[entityType] = append(entities[entityType], common.Entity{
				Type:        entityType,
				Name:        e.Name,
				Aliases:     e.Aliases,
				Translation: translation,
			})
		}
	}

	return &AnalysisParse{
		Class:         ParseRecovered,
		Truncated:     truncated,
		Entities:      entities,
		Relationships: convertRelationships(analysis.Relationships, common.RelationSourceExplicit),
	}
}

// ParseRelationships turns a raw cross-entity inference response, a bare
// JSON array, into typed relationships.
func ParseRelationships(raw string) *RelationshipParse {
	stripped := stripFence(raw)

	observed, truncated, ok := decodeTolerant[[]wireRelationship](stripped)
	if !ok {
		return &RelationshipParse{Class: classifyFailure(stripped)}
	}

	return &RelationshipParse{
		Class:         ParseRecovered,
		Truncated:     truncated,
		Relationships: convertRelationships(observed, common.RelationSourceInferred),
	}
}

func convertRelationships(
	observed []wireRelationship,
	defaultSource common.RelationSource,
) []common.Relationship {
	relationships := make([]common.Relationship, 0, len(observed))
	for _, r := range observed {
		if r.Subject.Name == "" || r.Action == "" || r.Object.Name == "" {
			continue
		}
		category := r.Category
		if category == "" {
			category = r.Type
		}
		source := common.RelationSource(r.Source)
		if source != common.RelationSourceExplicit && source != common.RelationSourceInferred {
			source = defaultSource
		}
		relationships = append(relationships, common.Relationship{
			Subject: common.EntityRef{
				Type: common.EntityType(r.Subject.Type),
				Name: r.Subject.Name,
			},
			Action: r.Action,
			Object: common.EntityRef{
				Type: common.EntityType(r.Object.Type),
				Name: r.Object.Name,
			},
			Category: category,
			Source:   source,
		})
	}
	return relationships
}

// stripFence removes one leading and one trailing Markdown code fence,
// with or without a language tag.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if newline := strings.IndexByte(s, '\n'); newline >= 0 {
			firstLine := strings.TrimSpace(s[:newline])
			if firstLine == "" || isFenceTag(firstLine) {
				s = s[newline+1:]
			}
		} else {
			s = strings.TrimSpace(s)
			if isFenceTag(s) {
				s = ""
			}
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}

// decodeTolerant attempts a strict parse first. On failure it truncates
// the input to the right-most '}' or ']' and parses the prefix, letting
// jsonrepair close containers the truncation left open. Repair can only
// complete a syntactically coherent prefix; it never invents elements, so
// a partial trailing element is dropped whole.
func decodeTolerant[T any](s string) (T, bool, bool) {
	var strict T
	if err := json.Unmarshal([]byte(s), &strict); err == nil {
		return strict, false, true
	}

	cut := strings.LastIndexAny(s, "}]")
	if cut < 0 {
		var zero T
		return zero, false, false
	}
	prefix := s[:cut+1]

	var recovered T
	if err := json.Unmarshal([]byte(prefix), &recovered); err == nil {
		return recovered, true, true
	}

	repaired, err := jsonrepair.JSONRepair(prefix)
	if err == nil {
		var repairedValue T
		if err := json.Unmarshal([]byte(repaired), &repairedValue); err == nil {
			return repairedValue, true, true
		}
	}

	var zero T
	return zero, false, false
}

func classifyFailure(s string) ParseClass {
	lowered := strings.ToLower(s)
	for _, sentinel := range refusalSentinels {
		if strings.Contains(lowered, sentinel) {
			return ParsePromptRejected
		}
	}
	return ParseMalformed
}
