package service

import (
	"context"
	"regexp"
	"strings"

	"portfolio-bot/dao"
	"portfolio-bot/internal/logger"
	"portfolio-bot/model"
)

const DefaultSessionID = "default"

var namePattern = regexp.MustCompile(`(?i)\bmy\s+name\s+is\s+(\w+)|\bi'?m\s+(\w+)|\bcall\s+me\s+(\w+)`)

// KnowledgeSource hands out the knowledge snapshot for one request.
type KnowledgeSource interface {
	Current() *KnowledgeBase
}

type ChatService struct {
	knowledge      KnowledgeSource
	store          dao.SessionStore
	rnd            Random
	defaultSession string
}

type ChatOption func(*ChatService)

func WithRandom(rnd Random) ChatOption {
	return func(s *ChatService) { s.rnd = rnd }
}

func WithDefaultSession(id string) ChatOption {
	return func(s *ChatService) {
		if id != "" {
			s.defaultSession = id
		}
	}
}

func NewChatService(knowledge KnowledgeSource, store dao.SessionStore, opts ...ChatOption) *ChatService {
	s := &ChatService{
		knowledge:      knowledge,
		store:          store,
		rnd:            DefaultRandom(),
		defaultSession: DefaultSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply is the outcome of one conversational turn.
type Reply struct {
	Text      string
	Type      model.DecisionType
	Category  string
	SessionID string
}

// Respond answers one visitor message. Errors only come from the session store.
func (s *ChatService) Respond(ctx context.Context, message, sessionID string) (string, error) {
	r, err := s.Turn(ctx, message, sessionID)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

func (s *ChatService) HandleMessage(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	r, err := s.Turn(ctx, req.Message, req.SessionID)
	if err != nil {
		return nil, err
	}
	return &model.ChatResponse{
		Reply:     r.Text,
		Type:      r.Type,
		Category:  r.Category,
		SessionID: r.SessionID,
	}, nil
}

// Turn runs the whole pipeline for one message: name capture, typo
// correction, decision, generation, personalization and the context update,
// all inside a single store update for the session.
func (s *ChatService) Turn(ctx context.Context, message, sessionID string) (*Reply, error) {
	kb := s.knowledge.Current()

	raw := strings.TrimSpace(message)
	if raw == "" {
		return &Reply{Text: kb.EmptyPrompt(), Type: model.DecisionEmpty}, nil
	}
	if sessionID == "" {
		sessionID = s.defaultSession
	}

	decider := NewDecisionLayer(kb)
	gen := NewGenerator(kb, s.rnd)
	gates := kb.Generation()
	normalized := kb.Normalizer().Normalize(raw)

	var out Reply
	err := s.store.Update(ctx, sessionID, func(session *model.ConversationContext) error {
		if name := extractName(raw); name != "" {
			session.UserName = name
		}

		decision := decider.Decide(raw, normalized, session)
		out = Reply{Type: decision.Type, Category: decision.Category, SessionID: sessionID}

		switch decision.Type {
		case model.DecisionMatched:
			out.Text = gen.Generate(decision.Category, session)
			session.LastTopic = decision.Category
			session.MarkAsked(decision.Category)
		case model.DecisionDetail:
			out.Text = decision.Reply
		default:
			out.Text = gen.Fallback()
		}

		if session.UserName != "" && s.rnd.Float64() > gates.PersonalizeGate {
			out.Text = session.UserName + ", " + out.Text
		}

		session.ConversationDepth++
		return nil
	})
	if err != nil {
		logger.Component("chat").Error().Err(err).Str("session", sessionID).Msg("session update failed")
		return nil, err
	}

	logger.Component("chat").Info().
		Str("session", sessionID).
		Str("type", string(out.Type)).
		Str("category", out.Category).
		Msg("turn answered")
	return &out, nil
}

func extractName(message string) string {
	m := namePattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

func (s *ChatService) Session(ctx context.Context, sessionID string) (*model.ConversationContext, error) {
	return s.store.Get(ctx, sessionID)
}

func (s *ChatService) ResetSession(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *ChatService) SessionCount(ctx context.Context) (int, error) {
	return s.store.Len(ctx)
}
