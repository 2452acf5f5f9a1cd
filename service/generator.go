package service

import "portfolio-bot/model"

// Generator turns a matched category into reply text.
type Generator struct {
	kb  *KnowledgeBase
	rnd Random
}

func NewGenerator(kb *KnowledgeBase, rnd Random) *Generator {
	return &Generator{kb: kb, rnd: rnd}
}

// Generate picks one of the category's responses at random. A follow-up is
// appended only while the conversation is shallow, and then only when the
// random gate opens. Unknown categories get the fallback.
func (g *Generator) Generate(category string, cc *model.ConversationContext) string {
	c, ok := g.kb.Category(category)
	if !ok {
		return g.Fallback()
	}

	reply := pick(g.rnd, c.Responses)

	gen := g.kb.Generation()
	if len(c.Followups) > 0 && cc != nil && cc.ConversationDepth < gen.FollowupMaxDepth &&
		g.rnd.Float64() > gen.FollowupGate {
		reply += "\n\n" + pick(g.rnd, c.Followups)
	}

	return reply
}

func (g *Generator) Fallback() string {
	return pick(g.rnd, g.kb.Fallbacks())
}
