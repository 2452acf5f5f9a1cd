package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKnowledge_Defaults(t *testing.T) {
	kb := testKnowledge(t)

	assert.Equal(t, "test", kb.Source())
	assert.Equal(t, 10.0, kb.Matching().FuzzyThreshold)
	assert.Equal(t, 0.75, kb.Matching().SimilarityCutoff)
	assert.Equal(t, 0.6, kb.Generation().FollowupGate)
	assert.Equal(t, 3, kb.Generation().FollowupMaxDepth)
	assert.Equal(t, 0.7, kb.Generation().PersonalizeGate)
	assert.Equal(t, "I didn't catch that. What would you like to know?", kb.EmptyPrompt())

	names := make([]string, 0, len(kb.Categories()))
	for _, c := range kb.Categories() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"greeting", "projects", "skills", "short"}, names)

	projects, ok := kb.Category("projects")
	require.True(t, ok)
	assert.Equal(t, []string{"project", "built"}, projects.Keywords)
}

func TestCategory_DetailFirstKeyWins(t *testing.T) {
	kb := testKnowledge(t)
	c, _ := kb.Category("projects")

	key, text, ok := c.Detail("more about beta and alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", key)
	assert.Equal(t, "Alpha details", text)

	_, _, ok = c.Detail("more about gamma")
	assert.False(t, ok)
}

func TestParseKnowledge_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no categories", `fallbacks: ["x"]`},
		{"no fallbacks", `
categories:
  - category: a
    patterns: ['a']
    responses: ["A"]`},
		{"empty responses", `
fallbacks: ["x"]
categories:
  - category: a
    patterns: ['a']
    responses: []`},
		{"no patterns", `
fallbacks: ["x"]
categories:
  - category: a
    responses: ["A"]`},
		{"duplicate category", `
fallbacks: ["x"]
categories:
  - category: a
    patterns: ['a']
    responses: ["A"]
  - category: a
    patterns: ['b']
    responses: ["B"]`},
		{"duplicate detail", `
fallbacks: ["x"]
categories:
  - category: a
    patterns: ['a']
    responses: ["A"]
    details:
      - {key: k, text: one}
      - {key: k, text: two}`},
		{"bad regex", `
fallbacks: ["x"]
categories:
  - category: a
    patterns: ['(a']
    responses: ["A"]`},
		{"typo key not folded", `
fallbacks: ["x"]
typos: {"Node.js": node}
categories:
  - category: a
    patterns: ['a']
    responses: ["A"]`},
		{"typo chain", `
fallbacks: ["x"]
typos: {teh: the, the: thee}
categories:
  - category: a
    patterns: ['a']
    responses: ["A"]`},
		{"not yaml", `categories: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKnowledge([]byte(tt.yaml), "inline")
			assert.ErrorIs(t, err, ErrInvalidKnowledge)
		})
	}
}

func TestParseKnowledge_PatternWithTwoKinds(t *testing.T) {
	_, err := ParseKnowledge([]byte(`
fallbacks: ["x"]
categories:
  - category: a
    patterns:
      - {literal: a, any: [b]}
    responses: ["A"]`), "inline")
	assert.Error(t, err)
}

func TestDefaultKnowledge(t *testing.T) {
	kb := defaultKnowledge(t)

	assert.Len(t, kb.Categories(), 24)
	assert.Len(t, kb.Projects(), 4)
	assert.Len(t, kb.Fallbacks(), 4)

	projects, ok := kb.Category("projects")
	require.True(t, ok)
	_, text, ok := projects.Detail("sundown")
	require.True(t, ok)
	assert.Contains(t, text, "Sundown Studio")

	assert.Equal(t, "tell me about your projects", kb.Normalizer().Normalize("tel me abt ur projcts"))
}
