package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"project", "projct", 1},
		{"same", "same", 0},
		{"café", "cafe", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", ""))

	for _, w := range []string{"a", "hello", "internship", "naïve"} {
		assert.Equal(t, 1.0, Similarity(w, w), w)
	}

	pairs := [][2]string{
		{"experiance", "experience"},
		{"skils", "skills"},
		{"kitten", "sitting"},
		{"xyz", "contact"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "%v", p)
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}

	assert.InDelta(t, 0.9, Similarity("experiance", "experience"), 1e-9)
	assert.InDelta(t, 5.0/6.0, Similarity("skils", "skills"), 1e-9)
}
