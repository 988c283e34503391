package fragment

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lower cases",
			in:   "ACME Inc.",
			want: "acmeinc",
		},
		{
			name: "drops diacritics",
			in:   "Pekín",
			want: "pekin",
		},
		{
			name: "drops separators",
			in:   "Mao Tse-tung",
			want: "maotsetung",
		},
		{
			name: "drops brackets and quotes",
			in:   `["The Greatest"]`,
			want: "thegreatest",
		},
		{
			name: "typographic quotes",
			in:   "“El Niño”",
			want: "elnino",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "only separators",
			in:   " -_.,:; ",
			want: "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_InsensitivityVectors(t *testing.T) {
	t.Parallel()

	variants := []string{"Mao Tse-tung", "MAOTSETUNG", " mao tsetung "}
	want := Normalize(variants[0])
	for _, v := range variants[1:] {
		if got := Normalize(v); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Mao Tse-tung", "Pekín", "ACME Inc.", "São Paulo", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
