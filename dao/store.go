package dao

import (
	"context"
	"errors"

	"portfolio-bot/model"
)

var (
	ErrSessionConflict = errors.New("session conflict: concurrent update")
	ErrMaxRetries      = errors.New("max retries exceeded")
	ErrInvalidParam    = errors.New("invalid parameter")
)

// DefaultCapacity bounds how many sessions a store keeps.
const DefaultCapacity = 100

// UpdateFunc mutates a session in place. Returning an error discards the
// mutation.
type UpdateFunc func(session *model.ConversationContext) error

// SessionStore keeps ConversationContexts keyed by session id. Sessions are
// created on first use and evicted in insertion order once the store holds
// more than its capacity; reads never refresh a session's position.
type SessionStore interface {
	// GetOrCreate returns a copy of the session, creating it if unseen.
	GetOrCreate(ctx context.Context, sessionID string) (*model.ConversationContext, error)
	// Get returns a copy of the session, or nil if it does not exist.
	Get(ctx context.Context, sessionID string) (*model.ConversationContext, error)
	// Update applies fn atomically with respect to other updates of the same session.
	Update(ctx context.Context, sessionID string, fn UpdateFunc) error
	Delete(ctx context.Context, sessionID string) error
	Len(ctx context.Context) (int, error)
	Close() error
}

func getOrCreate(ctx context.Context, s SessionStore, sessionID string) (*model.ConversationContext, error) {
	var out *model.ConversationContext
	err := s.Update(ctx, sessionID, func(session *model.ConversationContext) error {
		out = session.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
