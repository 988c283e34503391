package fragment

import (
	"reflect"
	"testing"

	"github.com/doclens/doclens/pkg/common"
)

const completeAnalysis = `{
	"documentAnalysis": {
		"entities": {
			"Person": [
				{"name": "Alberto", "aliases": ["he", "The Greatest"], "translation": "Alberto"}
			],
			"Organization": [
				{"name": "ACME Inc.", "aliases": [], "translation": ""}
			]
		},
		"relationships": [
			{
				"subject": {"type": "Person", "name": "Alberto"},
				"action": "joined",
				"object": {"type": "Organization", "name": "ACME Inc."},
				"category": "organizational",
				"source": "explicit"
			}
		]
	}
}`

func TestParseAnalysis_Strict(t *testing.T) {
	t.Parallel()

	parsed := ParseAnalysis(completeAnalysis)
	if parsed.Class != ParseRecovered {
		t.Fatalf("expected recovered, got %s", parsed.Class)
	}
	if parsed.Truncated {
		t.Fatal("strict parse must not report truncation")
	}

	people := parsed.Entities[common.EntityTypePerson]
	if len(people) != 1 || people[0].Name != "Alberto" {
		t.Fatalf("unexpected person entities: %v", people)
	}
	if !reflect.DeepEqual(people[0].Aliases, []string{"he", "The Greatest"}) {
		t.Fatalf("unexpected aliases: %v", people[0].Aliases)
	}

	if len(parsed.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(parsed.Relationships))
	}
	r := parsed.Relationships[0]
	if r.Action != "joined" || r.Source != common.RelationSourceExplicit {
		t.Fatalf("unexpected relationship: %+v", r)
	}
}

func TestParseAnalysis_Fenced(t *testing.T) {
	t.Parallel()

	fenced := "```json\n" + completeAnalysis + "\n```"
	parsed := ParseAnalysis(fenced)
	if parsed.Class != ParseRecovered {
		t.Fatalf("expected recovered, got %s", parsed.Class)
	}
	if len(parsed.Entities[common.EntityTypePerson]) != 1 {
		t.Fatalf("unexpected entities: %v", parsed.Entities)
	}
}

func TestParseAnalysis_LegacySpanishKey(t *testing.T) {
	t.Parallel()

	raw := `{"documentAnalysis": {"entities": {
		"Location": [{"name": "London", "aliases": [], "spanish": "Londres"}]
	}, "relationships": []}}`

	parsed := ParseAnalysis(raw)
	if parsed.Class != ParseRecovered {
		t.Fatalf("expected recovered, got %s", parsed.Class)
	}
	locations := parsed.Entities[common.EntityTypeLocation]
	if len(locations) != 1 || locations[0].Translation != "Londres" {
		t.Fatalf("expected spanish key mapped to translation, got %v", locations)
	}
}

func TestParseAnalysis_UnknownTypeSkipped(t *testing.T) {
	t.Parallel()

	raw := `{"documentAnalysis": {"entities": {
		"Person": [{"name": "Alberto", "aliases": []}],
		"Vehicle": [{"name": "Submarine", "aliases": []}]
	}, "relationships": []}}`

	parsed := ParseAnalysis(raw)
	if parsed.Class != ParseRecovered {
		t.Fatalf("expected recovered, got %s", parsed.Class)
	}
	if len(parsed.Entities) != 1 {
		t.Fatalf("expected only known types, got %v", parsed.Entities)
	}
}

func TestParseAnalysis_Truncated(t *testing.T) {
	t.Parallel()

	// Response cut off mid-relationship; the complete prefix must survive.
	truncated := `{"documentAnalysis": {"entities": {
		"Person": [{"name": "Alberto", "aliases": []}]
	}, "relationships": [
		{"subject": {"type": "Person", "name": "Alberto"}, "action": "joined",
		 "object": {"type": "Organization", "name": "ACME Inc."}},
		{"subject":`

	parsed := ParseAnalysis(truncated)
	if parsed.Class != ParseRecovered {
		t.Fatalf("expected recovered, got %s", parsed.Class)
	}
	if !parsed.Truncated {
		t.Fatal("expected truncation flag")
	}
	if len(parsed.Relationships) != 1 {
		t.Fatalf("expected exactly the complete relationship, got %v", parsed.Relationships)
	}
	if parsed.Relationships[0].Action != "joined" {
		t.Fatalf("unexpected recovered relationship: %+v", parsed.Relationships[0])
	}
}

func TestParseAnalysis_Refusal(t *testing.T) {
	t.Parallel()

	parsed := ParseAnalysis("I'm sorry, but I can't assist with that request.")
	if parsed.Class != ParsePromptRejected {
		t.Fatalf("expected prompt_rejected, got %s", parsed.Class)
	}
}

func TestParseAnalysis_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "The document discusses several topics."},
		{name: "empty", raw: ""},
		{name: "json without envelope", raw: `{"foo": 1}`},
		{name: "bare number", raw: "42"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			parsed := ParseAnalysis(tc.raw)
			if parsed.Class != ParseMalformed {
				t.Fatalf("expected malformed, got %s", parsed.Class)
			}
		})
	}
}

func TestParseRelationships_TruncationVector(t *testing.T) {
	t.Parallel()

	truncated := `[{"subject":{"type":"Person","name":"A"},"action":"x","object":{"type":"Organization","name":"B"}},{"subject":`
	complete := `[{"subject":{"type":"Person","name":"A"},"action":"x","object":{"type":"Organization","name":"B"}}]`

	fromTruncated := ParseRelationships(truncated)
	if fromTruncated.Class != ParseRecovered {
		t.Fatalf("expected recovered, got %s", fromTruncated.Class)
	}
	if !fromTruncated.Truncated {
		t.Fatal("expected truncation flag")
	}

	fromComplete := ParseRelationships(complete)
	if fromComplete.Class != ParseRecovered {
		t.Fatalf("expected recovered, got %s", fromComplete.Class)
	}

	if !reflect.DeepEqual(fromTruncated.Relationships, fromComplete.Relationships) {
		t.Fatalf("truncated recovery %v differs from complete parse %v",
			fromTruncated.Relationships, fromComplete.Relationships)
	}
	if len(fromTruncated.Relationships) != 1 {
		t.Fatalf("expected one relationship, got %d", len(fromTruncated.Relationships))
	}
}

func TestParseRelationships_DefaultsToInferred(t *testing.T) {
	t.Parallel()

	raw := `[{"subject":{"type":"Person","name":"A"},"action":"x","object":{"type":"Location","name":"B"}}]`
	parsed := ParseRelationships(raw)
	if parsed.Class != ParseRecovered {
		t.Fatalf("expected recovered, got %s", parsed.Class)
	}
	if parsed.Relationships[0].Source != common.RelationSourceInferred {
		t.Fatalf("expected inferred source, got %s", parsed.Relationships[0].Source)
	}
}

func TestParseRelationships_Deterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`[{"subject":{"type":"Person","name":"A"},"action":"x","object":{"type":"Organization","name":"B"}},{"subject":`,
		"I'm sorry, I cannot assist with that.",
		"garbage {{{",
		"```json\n[]\n```",
	}

	for _, in := range inputs {
		first := ParseRelationships(in)
		for i := 0; i < 3; i++ {
			again := ParseRelationships(in)
			if again.Class != first.Class || again.Truncated != first.Truncated {
				t.Fatalf("parse of %q not deterministic", in)
			}
			if !reflect.DeepEqual(again.Relationships, first.Relationships) {
				t.Fatalf("recovered value of %q not deterministic", in)
			}
		}
	}
}

func TestStripFence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no fence", in: `{"a": 1}`, want: `{"a": 1}`},
		{name: "plain fence", in: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "json fence", in: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "unclosed fence", in: "```json\n{\"a\": 1}", want: `{"a": 1}`},
		{name: "surrounding whitespace", in: "  ```json\n[]\n```  ", want: "[]"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := stripFence(tc.in); got != tc.want {
				t.Fatalf("stripFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
