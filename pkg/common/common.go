package common

// EntityType is the closed set of entity categories the extraction
// pipeline recognizes. Entities of different types never merge, even
// when their names collide.
type EntityType string

const (
	EntityTypePerson       EntityType = "Person"
	EntityTypeOrganization EntityType = "Organization"
	EntityTypeLocation     EntityType = "Location"
	EntityTypeDate         EntityType = "Date"
	EntityTypeEvent        EntityType = "Event"
	EntityTypeObject       EntityType = "Object"
	EntityTypeCode         EntityType = "Code"
)

// EntityTypes lists every known entity type in a stable order.
var EntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeOrganization,
	EntityTypeLocation,
	EntityTypeDate,
	EntityTypeEvent,
	EntityTypeObject,
	EntityTypeCode,
}

// KnownEntityType reports whether t is part of the closed type set.
func KnownEntityType(t EntityType) bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Entity represents one canonical, deduplicated entity observed in a
// document. Name is the display name of the first observation; Aliases
// collects every other surface form (including pronouns and coreferences)
// in first-seen order. Translation holds an optional localized rendering
// of the name and is filled in by the first observation that carries one.
//
// Entity identity is equivalence-class membership, not name equality:
// two observations denote the same entity when their normalized names or
// alias sets overlap within the same type.
type Entity struct {
	Type        EntityType `json:"type"`
	Name        string     `json:"name"`
	Aliases     []string   `json:"aliases"`
	Translation string     `json:"translation,omitempty"`
}

// EntityRef identifies one endpoint of a relationship by type and name.
type EntityRef struct {
	Type EntityType `json:"type"`
	Name string     `json:"name"`
}

// RelationSource records how a relationship was obtained.
type RelationSource string

const (
	// RelationSourceExplicit marks relationships stated in the source text.
	RelationSourceExplicit RelationSource = "explicit"
	// RelationSourceInferred marks relationships deduced from the entity
	// inventory without re-reading the source text.
	RelationSourceInferred RelationSource = "inferred"
)

// Relationship is one Subject-Action-Object fact between two entities.
// Its identity is the normalized 5-tuple (subject type, subject name,
// action, object type, object name); Category and Source are carried
// from the first occurrence of that key and never overwritten.
type Relationship struct {
	Subject  EntityRef      `json:"subject"`
	Action   string         `json:"action"`
	Object   EntityRef      `json:"object"`
	Category string         `json:"category,omitempty"`
	Source   RelationSource `json:"source,omitempty"`
}

// ExtractMethod records how the text of a page or chunk was obtained.
type ExtractMethod string

const (
	// ExtractMethodDirect means the text came straight out of the document.
	ExtractMethodDirect ExtractMethod = "direct"
	// ExtractMethodRecognized means the page was rendered to an image and
	// transcribed, because direct extraction produced too little text.
	ExtractMethodRecognized ExtractMethod = "recognized"
)

// Page is one page of the source document with its extracted text and
// the method that produced it.
type Page struct {
	Index  int           `json:"index"`
	Text   string        `json:"text"`
	Method ExtractMethod `json:"method"`
}

// Chunk is one ordered, immutable unit of document text submitted to the
// oracle in a single call. A chunk is produced once by the dispatcher and
// consumed once; its Method is ExtractMethodRecognized when at least one
// of its pages fell back to recognition.
type Chunk struct {
	ID     string        `json:"id"`
	Index  int           `json:"index"`
	Text   string        `json:"text"`
	Method ExtractMethod `json:"method"`
}

// ChunkError records the failure of a single chunk. A ChunkIndex of -1
// refers to the cross-chunk inference pass rather than a document chunk.
type ChunkError struct {
	ChunkIndex int    `json:"chunkIndex"`
	Reason     string `json:"reason"`
}

// AnalysisResult is the merged, deduplicated outcome of a document
// analysis. It grows monotonically as chunks are merged and is finalized
// after the cross-chunk inference pass.
//
// Within one result no two entities of the same type are mutually
// equivalent and no two relationships share a normalized key.
type AnalysisResult struct {
	Entities      map[EntityType][]Entity `json:"entities"`
	Relationships []Relationship          `json:"relationships"`
	Errors        []ChunkError            `json:"errors"`
}
