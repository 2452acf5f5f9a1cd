package service

import (
	"strings"

	"portfolio-bot/internal/logger"
	"portfolio-bot/model"
)

type DecisionResult struct {
	Type     model.DecisionType
	Category string
	// Reply is set for detail decisions; the other types are rendered by the Generator.
	Reply string
	Match *MatchResult
}

// DecisionLayer chooses how a turn is answered: a matched category, a
// detail expansion of the last topic, or the fallback.
type DecisionLayer struct {
	kb      *KnowledgeBase
	matcher *Matcher
}

func NewDecisionLayer(kb *KnowledgeBase) *DecisionLayer {
	return &DecisionLayer{
		kb:      kb,
		matcher: NewMatcher(kb),
	}
}

// Decide never fails. raw is the trimmed visitor text, normalized its
// typo-corrected form.
func (d *DecisionLayer) Decide(raw, normalized string, session *model.ConversationContext) *DecisionResult {
	log := logger.Component("decision")

	if m := d.matcher.Match(normalized); m != nil {
		log.Debug().
			Str("session", session.SessionID).
			Str("category", m.Category).
			Str("phase", string(m.Phase)).
			Float64("score", m.Score).
			Str("rule", m.Rule).
			Msg("intent matched")
		return &DecisionResult{Type: model.DecisionMatched, Category: m.Category, Match: m}
	}

	if res := d.detail(raw, session); res != nil {
		log.Debug().
			Str("session", session.SessionID).
			Str("category", res.Category).
			Msg("detail expansion")
		return res
	}

	log.Debug().Str("session", session.SessionID).Msg("no intent, using fallback")
	return &DecisionResult{Type: model.DecisionFallback}
}

func (d *DecisionLayer) detail(raw string, session *model.ConversationContext) *DecisionResult {
	if session.LastTopic == "" {
		return nil
	}
	lower := strings.ToLower(raw)
	if !strings.Contains(lower, "more") && !strings.Contains(lower, "detail") {
		return nil
	}

	c, ok := d.kb.Category(session.LastTopic)
	if !ok {
		return nil
	}
	if _, text, ok := c.Detail(lower); ok {
		return &DecisionResult{Type: model.DecisionDetail, Category: c.Name, Reply: text}
	}
	return nil
}
