package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"portfolio-bot/config"
)

// fixedRandom returns the same float for every gate and the same index
// (clamped) for every pick.
type fixedRandom struct {
	f float64
	i int
}

func (r fixedRandom) Float64() float64 { return r.f }

func (r fixedRandom) Intn(n int) int {
	if r.i >= n {
		return n - 1
	}
	return r.i
}

const testKnowledgeYAML = `
fallbacks: ["fallback one", "fallback two"]
typos:
  projct: project
categories:
  - category: greeting
    patterns: ['^(hi|hello)$']
    responses: ["Hello!"]
  - category: projects
    patterns:
      - '(project|built)'
    responses: ["Projects one", "Projects two"]
    followups: ["Want details?"]
    details:
      - key: alpha
        text: "Alpha details"
      - key: beta
        text: "Beta details"
  - category: skills
    patterns: ['(skill|stack)']
    responses: ["Skills!"]
  - category: short
    patterns: ['ok']
    responses: ["Okay."]
`

func testKnowledge(t *testing.T) *KnowledgeBase {
	t.Helper()
	kb, err := ParseKnowledge([]byte(testKnowledgeYAML), "test")
	require.NoError(t, err)
	return kb
}

func defaultKnowledge(t *testing.T) *KnowledgeBase {
	t.Helper()
	kb, err := ParseKnowledge(config.DefaultKnowledge, "embedded")
	require.NoError(t, err)
	return kb
}
