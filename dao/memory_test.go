package dao

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-bot/model"
)

func TestMemoryStore_GetOrCreateStartsEmpty(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	cc, err := s.GetOrCreate(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", cc.SessionID)
	assert.Empty(t, cc.LastTopic)
	assert.NotNil(t, cc.AskedAbout)
	assert.Empty(t, cc.AskedAbout)
	assert.Zero(t, cc.ConversationDepth)

	n, _ := s.Len(ctx)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_EvictsInInsertionOrder(t *testing.T) {
	s := NewMemoryStore(DefaultCapacity)
	ctx := context.Background()

	for i := 0; i <= DefaultCapacity; i++ {
		_, err := s.GetOrCreate(ctx, fmt.Sprintf("s%d", i))
		require.NoError(t, err)
	}

	n, _ := s.Len(ctx)
	assert.Equal(t, DefaultCapacity, n)

	first, err := s.Get(ctx, "s0")
	require.NoError(t, err)
	assert.Nil(t, first)

	last, err := s.Get(ctx, fmt.Sprintf("s%d", DefaultCapacity))
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestMemoryStore_AccessDoesNotRefreshOrder(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()

	_, _ = s.GetOrCreate(ctx, "a")
	_, _ = s.GetOrCreate(ctx, "b")

	// touching a must not save it from eviction
	require.NoError(t, s.Update(ctx, "a", func(cc *model.ConversationContext) error {
		cc.ConversationDepth++
		return nil
	}))
	_, _ = s.Get(ctx, "a")
	_, _ = s.GetOrCreate(ctx, "c")

	assert.Equal(t, []string{"b", "c"}, s.Keys())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	cc, err := s.GetOrCreate(ctx, "x")
	require.NoError(t, err)
	cc.LastTopic = "projects"
	cc.AskedAbout = append(cc.AskedAbout, "projects")

	stored, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, stored.LastTopic)
	assert.Empty(t, stored.AskedAbout)
}

func TestMemoryStore_UpdateErrorDiscardsChanges(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, "x", func(cc *model.ConversationContext) error {
		cc.LastTopic = "skills"
		cc.ConversationDepth = 7
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, stored)

	require.NoError(t, s.Update(ctx, "x", func(cc *model.ConversationContext) error {
		cc.ConversationDepth = 1
		return nil
	}))
	err = s.Update(ctx, "x", func(cc *model.ConversationContext) error {
		cc.LastTopic = "skills"
		cc.ConversationDepth = 7
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err = s.Get(ctx, "x")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.LastTopic)
	assert.Equal(t, 1, stored.ConversationDepth)
}

func TestMemoryStore_FailedCreateDoesNotEvict(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()
	noop := func(*model.ConversationContext) error { return nil }

	require.NoError(t, s.Update(ctx, "a", noop))
	require.NoError(t, s.Update(ctx, "b", noop))

	err := s.Update(ctx, "c", func(*model.ConversationContext) error { return errors.New("boom") })
	require.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, s.Keys())
}

func TestMemoryStore_EmptySessionID(t *testing.T) {
	s := NewMemoryStore(10)
	err := s.Update(context.Background(), "", func(*model.ConversationContext) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestMemoryStore_ConcurrentUpdates(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "shared", func(cc *model.ConversationContext) error {
				cc.ConversationDepth++
				return nil
			})
		}()
	}
	wg.Wait()

	cc, err := s.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, 50, cc.ConversationDepth)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	_, _ = s.GetOrCreate(ctx, "gone")
	require.NoError(t, s.Delete(ctx, "gone"))

	cc, err := s.Get(ctx, "gone")
	require.NoError(t, err)
	assert.Nil(t, cc)
}
