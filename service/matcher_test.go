package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-bot/model"
)

func TestMatcher_ExactPhase(t *testing.T) {
	m := NewMatcher(testKnowledge(t))

	got := m.Match("hello")
	require.NotNil(t, got)
	assert.Equal(t, "greeting", got.Category)
	assert.Equal(t, model.PhaseExact, got.Phase)
	assert.Equal(t, float64(len(`^(hi|hello)$`)), got.Score)

	got = m.Match("what have you built")
	require.NotNil(t, got)
	assert.Equal(t, "projects", got.Category)
	assert.Equal(t, model.PhaseExact, got.Phase)
	assert.Equal(t, "(project|built)", got.Rule)
}

func TestMatcher_LongestPatternWins(t *testing.T) {
	kb, err := ParseKnowledge([]byte(`
fallbacks: ["x"]
categories:
  - category: generic
    patterns: ['about']
    responses: ["generic"]
  - category: specific
    patterns: ['tell\s+me\s+about']
    responses: ["specific"]
`), "inline")
	require.NoError(t, err)

	got := NewMatcher(kb).Match("tell me about it")
	require.NotNil(t, got)
	assert.Equal(t, "specific", got.Category)
}

func TestMatcher_TiesGoToEarlierCategory(t *testing.T) {
	kb, err := ParseKnowledge([]byte(`
fallbacks: ["x"]
categories:
  - category: first
    patterns: ['(tie|knot)']
    responses: ["first"]
  - category: second
    patterns: ['(knot|tie)']
    responses: ["second"]
`), "inline")
	require.NoError(t, err)

	got := NewMatcher(kb).Match("a tie")
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Category)
}

func TestMatcher_FuzzyPhase(t *testing.T) {
	m := NewMatcher(testKnowledge(t))

	got := m.Match("your skils")
	require.NotNil(t, got)
	assert.Equal(t, "skills", got.Category)
	assert.Equal(t, model.PhaseFuzzy, got.Phase)
	assert.Equal(t, "skill", got.Rule)
	assert.InDelta(t, 0.8*5, got.Score, 1e-9)
}

func TestMatcher_WeakExactHitCanLoseToFuzzy(t *testing.T) {
	m := NewMatcher(testKnowledge(t))

	// "ok" scores 2, under the fuzzy threshold, so keywords are tried too
	got := m.Match("ok projekt")
	require.NotNil(t, got)
	assert.Equal(t, "projects", got.Category)
	assert.Equal(t, model.PhaseFuzzy, got.Phase)
	assert.InDelta(t, 6.0, got.Score, 1e-9)

	got = m.Match("ok then")
	require.NotNil(t, got)
	assert.Equal(t, "short", got.Category)
	assert.Equal(t, model.PhaseExact, got.Phase)
}

func TestMatcher_StrongExactHitSkipsFuzzy(t *testing.T) {
	m := NewMatcher(testKnowledge(t))

	got := m.Match("built my skils")
	require.NotNil(t, got)
	assert.Equal(t, "projects", got.Category)
	assert.Equal(t, model.PhaseExact, got.Phase)
}

func TestMatcher_NoMatch(t *testing.T) {
	m := NewMatcher(testKnowledge(t))

	assert.Nil(t, m.Match("xqzvbnm"))
	assert.Nil(t, m.Match(""))
	assert.Nil(t, m.Match("   "))
}

func TestMatcher_Deterministic(t *testing.T) {
	m := NewMatcher(defaultKnowledge(t))

	for _, msg := range []string{"hello", "tell me about your projects", "skils", "xqzvbnm"} {
		first := m.Match(msg)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, m.Match(msg), msg)
		}
	}
}

func TestMatcher_DefaultKnowledge(t *testing.T) {
	kb := defaultKnowledge(t)
	m := NewMatcher(kb)

	tests := []struct {
		msg  string
		want string
	}{
		{"hello", "greeting"},
		{"tell me about your projects", "projects"},
		{"what are his skills", "skills"},
		{"how can I get in touch", "contact"},
		{"thanks a lot", "thanks"},
	}
	for _, tt := range tests {
		got := m.Match(kb.Normalizer().Normalize(tt.msg))
		require.NotNil(t, got, tt.msg)
		assert.Equal(t, tt.want, got.Category, tt.msg)
	}

	assert.Nil(t, m.Match("tell me more about sundown"))
}

func TestMatcher_WeakExactHitOnDefaultKnowledge(t *testing.T) {
	m := NewMatcher(defaultKnowledge(t))

	// "love" is an exact praise hit worth 4, below the fuzzy threshold
	got := m.Match("love it")
	require.NotNil(t, got)
	assert.Equal(t, "praise", got.Category)
	assert.Equal(t, model.PhaseExact, got.Phase)

	got = m.Match("love projekt")
	require.NotNil(t, got)
	assert.Equal(t, "projects", got.Category)
	assert.Equal(t, model.PhaseFuzzy, got.Phase)
	assert.Equal(t, "project", got.Rule)
	assert.InDelta(t, 6.0, got.Score, 1e-9)
}

func TestMatcher_OneLetterKeyword(t *testing.T) {
	m := NewMatcher(defaultKnowledge(t))

	got := m.Match("u")
	require.NotNil(t, got)
	assert.Equal(t, "howareyou", got.Category)
	assert.Equal(t, model.PhaseFuzzy, got.Phase)
	assert.InDelta(t, 1.0, got.Score, 1e-9)
}

func TestMatcher_LongTokenIsCheap(t *testing.T) {
	m := NewMatcher(defaultKnowledge(t))

	start := time.Now()
	assert.Nil(t, m.Match(strings.Repeat("x", 200000)))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithinReach(t *testing.T) {
	tests := []struct {
		a, b int
		want bool
	}{
		{5, 5, true},
		{4, 5, true},  // 1 <= 0.25*5
		{3, 5, false}, // 2 > 0.25*5
		{8, 6, true},  // 2 <= 0.25*8
		{1, 1, true},
		{2, 1, false},
		{200000, 7, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withinReach(tt.a, tt.b, 0.75), "%d vs %d", tt.a, tt.b)
	}
}
