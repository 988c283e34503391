package common

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAnalysisResult_FixedKeys(t *testing.T) {
	t.Parallel()

	result := AnalysisResult{
		Entities: map[EntityType][]Entity{
			EntityTypePerson: {
				{Type: EntityTypePerson, Name: "Alberto", Aliases: []string{"he"}},
			},
		},
		Relationships: []Relationship{
			{
				Subject: EntityRef{Type: EntityTypePerson, Name: "Alberto"},
				Action:  "joined",
				Object:  EntityRef{Type: EntityTypeOrganization, Name: "ACME Inc."},
				Source:  RelationSourceExplicit,
			},
		},
		Errors: []ChunkError{{ChunkIndex: 2, Reason: "content filter"}},
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, key := range []string{`"entities"`, `"relationships"`, `"errors"`, `"chunkIndex"`, `"reason"`} {
		if !strings.Contains(string(encoded), key) {
			t.Fatalf("expected key %s in output: %s", key, encoded)
		}
	}
}

func TestKnownEntityType(t *testing.T) {
	t.Parallel()

	for _, known := range EntityTypes {
		if !KnownEntityType(known) {
			t.Fatalf("%s should be known", known)
		}
	}
	for _, unknown := range []EntityType{"", "person", "Vehicle"} {
		if KnownEntityType(unknown) {
			t.Fatalf("%q should not be known", unknown)
		}
	}
}
