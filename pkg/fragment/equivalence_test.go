package fragment

import (
	"testing"

	"github.com/doclens/doclens/pkg/common"
)

func TestSameEntity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    common.Entity
		b    common.Entity
		want bool
	}{
		{
			name: "identical names",
			a:    common.Entity{Type: common.EntityTypePerson, Name: "Alberto"},
			b:    common.Entity{Type: common.EntityTypePerson, Name: "Alberto"},
			want: true,
		},
		{
			name: "case and accent variants",
			a:    common.Entity{Type: common.EntityTypeLocation, Name: "Pekín"},
			b:    common.Entity{Type: common.EntityTypeLocation, Name: "PEKIN"},
			want: true,
		},
		{
			name: "name matches alias",
			a:    common.Entity{Type: common.EntityTypeLocation, Name: "Beijing"},
			b: common.Entity{
				Type:    common.EntityTypeLocation,
				Name:    "Pekín",
				Aliases: []string{"Beijing"},
			},
			want: true,
		},
		{
			name: "alias sets intersect",
			a: common.Entity{
				Type:    common.EntityTypePerson,
				Name:    "Mao Zedong",
				Aliases: []string{"the Chairman"},
			},
			b: common.Entity{
				Type:    common.EntityTypePerson,
				Name:    "Mao Tse-tung",
				Aliases: []string{"The Chairman"},
			},
			want: true,
		},
		{
			name: "different names no overlap",
			a:    common.Entity{Type: common.EntityTypePerson, Name: "Alberto"},
			b:    common.Entity{Type: common.EntityTypePerson, Name: "Maria"},
			want: false,
		},
		{
			name: "cross type never merges",
			a:    common.Entity{Type: common.EntityTypePerson, Name: "Paris"},
			b:    common.Entity{Type: common.EntityTypeLocation, Name: "Paris"},
			want: false,
		},
		{
			name: "empty alias forms ignored",
			a: common.Entity{
				Type:    common.EntityTypePerson,
				Name:    "Alberto",
				Aliases: []string{""},
			},
			b: common.Entity{
				Type:    common.EntityTypePerson,
				Name:    "Maria",
				Aliases: []string{" "},
			},
			want: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := SameEntity(&tc.a, &tc.b); got != tc.want {
				t.Fatalf("SameEntity(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			// equivalence is symmetric
			if got := SameEntity(&tc.b, &tc.a); got != tc.want {
				t.Fatalf("SameEntity(%v, %v) = %v, want %v", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestRelationshipKey(t *testing.T) {
	t.Parallel()

	base := common.Relationship{
		Subject: common.EntityRef{Type: common.EntityTypePerson, Name: "Alberto"},
		Action:  "joined",
		Object:  common.EntityRef{Type: common.EntityTypeOrganization, Name: "ACME Inc."},
	}
	variant := common.Relationship{
		Subject: common.EntityRef{Type: common.EntityTypePerson, Name: "ALBERTO"},
		Action:  "Joined",
		Object:  common.EntityRef{Type: common.EntityTypeOrganization, Name: "acme inc"},
	}
	other := common.Relationship{
		Subject: common.EntityRef{Type: common.EntityTypePerson, Name: "Alberto"},
		Action:  "left",
		Object:  common.EntityRef{Type: common.EntityTypeOrganization, Name: "ACME Inc."},
	}

	if RelationshipKey(&base) != RelationshipKey(&variant) {
		t.Fatalf("expected normalized variants to share a key: %q vs %q",
			RelationshipKey(&base), RelationshipKey(&variant))
	}
	if RelationshipKey(&base) == RelationshipKey(&other) {
		t.Fatal("expected different actions to produce different keys")
	}
}

func TestRelationshipKey_TypeDistinguishes(t *testing.T) {
	t.Parallel()

	person := common.Relationship{
		Subject: common.EntityRef{Type: common.EntityTypePerson, Name: "Paris"},
		Action:  "hosted",
		Object:  common.EntityRef{Type: common.EntityTypeEvent, Name: "Summit"},
	}
	location := common.Relationship{
		Subject: common.EntityRef{Type: common.EntityTypeLocation, Name: "Paris"},
		Action:  "hosted",
		Object:  common.EntityRef{Type: common.EntityTypeEvent, Name: "Summit"},
	}

	if RelationshipKey(&person) == RelationshipKey(&location) {
		t.Fatal("expected subject type to be part of the key")
	}
}
