package matcher

import "testing"

func TestShouldHide(t *testing.T) {
	cases := []struct {
		name      string
		company   string
		blockList []string
		want      bool
	}{
		{"case and whitespace", "  Acme Corp ", []string{"acme corp"}, true},
		{"entry is normalized too", "acme corp", []string{"  ACME Corp\t"}, true},
		{"different company", "Acme Corp", []string{"Other"}, false},
		{"empty name", "", []string{"acme"}, false},
		{"blank name", "   ", []string{"acme"}, false},
		{"substring is not a match", "Acme Corporation", []string{"Acme"}, false},
		{"superstring is not a match", "Acme", []string{"Acme Corporation"}, false},
		{"empty block list", "Acme", nil, false},
		{"empty entry never matches", "Acme", []string{"", "  "}, false},
		{"unicode folding", "STRASSE GmbH", []string{"straße gmbh"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldHide(tc.company, tc.blockList); got != tc.want {
				t.Fatalf("ShouldHide(%q, %q) = %v, want %v", tc.company, tc.blockList, got, tc.want)
			}
		})
	}
}

func TestSetDropsEmptyEntries(t *testing.T) {
	set := NewSet([]string{"Acme", "", " acme ", "Beta"})
	if len(set) != 2 {
		t.Fatalf("len(set) = %d, want 2", len(set))
	}
	if set.Match("") {
		t.Fatalf("empty company matched")
	}
}

func TestZeroSetMatchesNothing(t *testing.T) {
	var set Set
	if set.Match("Acme") {
		t.Fatalf("zero Set matched")
	}
}
