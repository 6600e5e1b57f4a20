package policy

import "testing"

func TestMatchesVersion(t *testing.T) {
	tests := []struct {
		name      string
		versions  []string
		installed string
		want      bool
	}{
		{name: "Listed", versions: []string{"1.0.0", "1.1.0"}, installed: "1.1.0", want: true},
		{name: "Not Listed", versions: []string{"1.0.0"}, installed: "1.0.1", want: false},
		{name: "Nil List", versions: nil, installed: "1.0.0", want: false},
		{name: "Empty List", versions: []string{}, installed: "1.0.0", want: false},
		{name: "No Semantic Equivalence", versions: []string{"1.0"}, installed: "1.0.0", want: false},
		{name: "Case Sensitive", versions: []string{"1.0.0-RC1"}, installed: "1.0.0-rc1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesVersion(tt.versions, tt.installed); got != tt.want {
				t.Errorf("MatchesVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}
