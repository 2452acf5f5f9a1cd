package model

import "time"

type DecisionType string

const (
	DecisionMatched  DecisionType = "matched"
	DecisionDetail   DecisionType = "detail"
	DecisionFallback DecisionType = "fallback"
	DecisionEmpty    DecisionType = "empty"
)

type MatchPhase string

const (
	PhaseExact MatchPhase = "exact"
	PhaseFuzzy MatchPhase = "fuzzy"
)

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type ChatResponse struct {
	Reply     string       `json:"reply"`
	Type      DecisionType `json:"type,omitempty"`
	Category  string       `json:"category,omitempty"`
	SessionID string       `json:"sessionId,omitempty"`
}

// ConversationContext is the per-session state kept between turns.
type ConversationContext struct {
	SessionID         string    `json:"sessionId"`
	LastTopic         string    `json:"lastTopic,omitempty"`
	AskedAbout        []string  `json:"askedAbout"`
	ConversationDepth int       `json:"conversationDepth"`
	UserName          string    `json:"userName,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func NewConversationContext(sessionID string, now time.Time) *ConversationContext {
	return &ConversationContext{
		SessionID:  sessionID,
		AskedAbout: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy so callers can mutate it without touching the stored value.
func (c *ConversationContext) Clone() *ConversationContext {
	if c == nil {
		return nil
	}
	cp := *c
	cp.AskedAbout = append(make([]string, 0, len(c.AskedAbout)), c.AskedAbout...)
	return &cp
}

func (c *ConversationContext) HasAsked(category string) bool {
	for _, a := range c.AskedAbout {
		if a == category {
			return true
		}
	}
	return false
}

// MarkAsked records category in first-seen order.
func (c *ConversationContext) MarkAsked(category string) {
	if !c.HasAsked(category) {
		c.AskedAbout = append(c.AskedAbout, category)
	}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

type ContactResponse struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ContactMessage is a contact form submission as kept in the inbox.
type ContactMessage struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

type Project struct {
	ID          int      `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Category    string   `yaml:"category" json:"category"`
	TechStack   []string `yaml:"tech_stack" json:"techStack"`
	Description string   `yaml:"description" json:"description"`
	GithubLink  string   `yaml:"github_link" json:"githubLink"`
	LiveLink    string   `yaml:"live_link" json:"liveLink"`
	Image       string   `yaml:"image" json:"image"`
}

type KnowledgeSummary struct {
	Category  string `json:"category"`
	Patterns  int    `json:"patterns"`
	Keywords  int    `json:"keywords"`
	Responses int    `json:"responses"`
	Followups int    `json:"followups"`
	Details   int    `json:"details"`
}

type ReloadResponse struct {
	Message    string    `json:"message"`
	Categories int       `json:"categories"`
	ReloadedAt time.Time `json:"reloaded_at"`
}
