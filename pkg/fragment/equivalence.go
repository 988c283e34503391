package fragment

import (
	"strings"

	"github.com/doclens/doclens/pkg/common"
)

// SameEntity reports whether two entities of the same type denote the same
// real-world entity. Entities match when their names normalize equally,
// when one's name normalizes to one of the other's aliases, or when their
// alias sets intersect after normalization. Entities of different types
// never match, regardless of name.
func SameEntity(a *common.Entity, b *common.Entity) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Type != b.Type {
		return false
	}

	aKeys := entityKeys(a)
	bKeys := entityKeys(b)

	for key := range aKeys {
		if bKeys[key] {
			return true
		}
	}

	return false
}

// entityKeys collects the normalized name and alias forms of an entity.
func entityKeys(e *common.Entity) map[string]bool {
	keys := make(map[string]bool, len(e.Aliases)+1)

	if key := Normalize(e.Name); key != "" {
		keys[key] = true
	}
	for _, alias := range e.Aliases {
		if key := Normalize(alias); key != "" {
			keys[key] = true
		}
	}

	return keys
}

// RelationshipKey computes the identity key of a relationship: the five
// tuple fields normalized independently and joined. Two relationships are
// duplicates exactly when their keys are equal.
func RelationshipKey(r *common.Relationship) string {
	parts := []string{
		Normalize(string(r.Subject.Type)),
		Normalize(r.Subject.Name),
		Normalize(r.Action),
		Normalize(string(r.Object.Type)),
		Normalize(r.Object.Name),
	}
	return strings.Join(parts, "|")
}
