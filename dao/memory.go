package dao

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"portfolio-bot/internal/logger"
	"portfolio-bot/model"
)

// MemoryStore is the in-process SessionStore. One mutex guards lookup,
// creation, mutation and eviction. The list is only ever touched with Peek
// and with Add for new keys, so its eviction order is insertion order.
type MemoryStore struct {
	mu       sync.Mutex
	sessions *simplelru.LRU[string, *model.ConversationContext]
	capacity int
	now      func() time.Time
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &MemoryStore{capacity: capacity, now: time.Now}
	// NewLRU only fails for a non-positive size.
	s.sessions, _ = simplelru.NewLRU[string, *model.ConversationContext](capacity, s.onEvict)
	return s
}

func (s *MemoryStore) onEvict(sessionID string, _ *model.ConversationContext) {
	logger.Component("session-store").Debug().
		Str("session", sessionID).
		Int("capacity", s.capacity).
		Msg("session dropped")
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, sessionID string) (*model.ConversationContext, error) {
	return getOrCreate(ctx, s, sessionID)
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*model.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Peek(sessionID)
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionID is empty", ErrInvalidParam)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions.Peek(sessionID)
	var next *model.ConversationContext
	if ok {
		next = current.Clone()
	} else {
		next = model.NewConversationContext(sessionID, s.now())
	}

	if err := fn(next); err != nil {
		return err
	}
	next.SessionID = sessionID
	next.UpdatedAt = s.now()

	// new sessions enter the list only once fn succeeded
	if ok {
		*current = *next
		return nil
	}
	s.sessions.Add(sessionID, next)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions.Remove(sessionID)
	return nil
}

func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Len(), nil
}

// Keys lists session ids from oldest to newest insertion.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Keys()
}

func (s *MemoryStore) Close() error {
	return nil
}
