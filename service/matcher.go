package service

import (
	"strings"

	"portfolio-bot/model"
	"portfolio-bot/utils"
)

// MatchResult is the winning category of one Match call.
type MatchResult struct {
	Category string
	Score    float64
	Phase    model.MatchPhase
	// Rule is the pattern source (exact phase) or keyword (fuzzy phase) that won.
	Rule string
}

// Matcher classifies a normalized message into a knowledge category.
// It holds no state beyond the knowledge snapshot, so matching is
// deterministic.
type Matcher struct {
	kb *KnowledgeBase
}

func NewMatcher(kb *KnowledgeBase) *Matcher {
	return &Matcher{kb: kb}
}

// Match runs the exact phase over every rule of every category and keeps
// the most specific hit. When nothing hit, or the best hit is weaker than
// the fuzzy threshold, each message word is compared against the keyword
// index. Scores only replace the current best when strictly greater, so
// ties go to the category that appears first. Returns nil when nothing
// scored.
func (m *Matcher) Match(normalized string) *MatchResult {
	if strings.TrimSpace(normalized) == "" {
		return nil
	}

	var best *MatchResult
	for _, c := range m.kb.Categories() {
		for _, rule := range c.Rules {
			if !rule.Match(normalized) {
				continue
			}
			score := float64(rule.Specificity())
			if best == nil || score > best.Score {
				best = &MatchResult{Category: c.Name, Score: score, Phase: model.PhaseExact, Rule: rule.Source()}
			}
		}
	}

	cfg := m.kb.Matching()
	if best != nil && best.Score >= cfg.FuzzyThreshold {
		return best
	}

	words := strings.Fields(strings.ToLower(normalized))
	wordLens := make([]int, len(words))
	for i, w := range words {
		wordLens[i] = utils.RuneLen(w)
	}

	for _, c := range m.kb.Categories() {
		for _, kw := range c.Keywords {
			n := utils.RuneLen(kw)
			kwLen := float64(n)
			for i, w := range words {
				// the length gap alone is a lower bound on the distance
				if !withinReach(wordLens[i], n, cfg.SimilarityCutoff) {
					continue
				}
				sim := utils.Similarity(w, kw)
				if sim <= cfg.SimilarityCutoff {
					continue
				}
				score := sim * kwLen
				if best == nil || score > best.Score {
					best = &MatchResult{Category: c.Name, Score: score, Phase: model.PhaseFuzzy, Rule: kw}
				}
			}
		}
	}

	return best
}

// withinReach reports whether strings of these rune lengths could still
// score above cutoff.
func withinReach(a, b int, cutoff float64) bool {
	gap := a - b
	if gap < 0 {
		gap = -gap
	}
	return float64(gap) <= (1-cutoff)*float64(max(a, b))
}
