package cacheinfra

import "testing"

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"properties:filtered:*", "properties:filtered:YS9i", true},
		{"properties:filtered:*", "properties:filtered:", true},
		{"properties:filtered:*", "property:1", false},
		{"favourite:u1:*", "favourite:u1:f1", true},
		{"favourite:u1:*", "favourite:u2:f1", false},
		{"*:u1", "favourites:user:u1", true},
		{"a*b*c", "a-x-b-y-c", true},
		{"a*b*c", "a-x-c-y-b", false},
		{"ab*b", "ab", false},
		{"exact", "exact", true},
		{"exact", "exact2", false},
		{"*", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.key, func(t *testing.T) {
			if got := matchPattern(tt.pattern, tt.key); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}
