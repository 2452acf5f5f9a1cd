package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"portfolio-bot/internal/logger"
	"portfolio-bot/model"
)

type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	TTL        time.Duration
	Capacity   int
	MaxRetries int
}

// RedisStore shares sessions between processes. Each session is one JSON
// value; a list keeps session ids in insertion order for eviction.
type RedisStore struct {
	client     *redis.Client
	keyPrefix  string
	ttl        time.Duration
	capacity   int
	maxRetries int
}

// evictScript pops the oldest ids while the index is over capacity and
// deletes their sessions. KEYS[1] = index, ARGV[1] = capacity, ARGV[2] = session key prefix.
var evictScript = redis.NewScript(`
local evicted = {}
while redis.call('LLEN', KEYS[1]) > tonumber(ARGV[1]) do
	local id = redis.call('LPOP', KEYS[1])
	if not id then break end
	redis.call('DEL', ARGV[2] .. id)
	table.insert(evicted, id)
end
return evicted
`)

func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisStoreWithClient(client, opts)
}

func NewRedisStoreWithClient(client *redis.Client, opts RedisOptions) *RedisStore {
	s := &RedisStore{
		client:     client,
		keyPrefix:  opts.KeyPrefix,
		ttl:        opts.TTL,
		capacity:   opts.Capacity,
		maxRetries: opts.MaxRetries,
	}
	if s.keyPrefix == "" {
		s.keyPrefix = "portfolio-bot:"
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	if s.capacity <= 0 {
		s.capacity = DefaultCapacity
	}
	if s.maxRetries <= 0 {
		s.maxRetries = 3
	}
	return s
}

func (s *RedisStore) sessionPrefix() string       { return s.keyPrefix + "session:" }
func (s *RedisStore) sessionKey(id string) string { return s.sessionPrefix() + id }
func (s *RedisStore) indexKey() string            { return s.keyPrefix + "sessions" }

func (s *RedisStore) GetOrCreate(ctx context.Context, sessionID string) (*model.ConversationContext, error) {
	return getOrCreate(ctx, s, sessionID)
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*model.ConversationContext, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionID is empty", ErrInvalidParam)
	}
	return s.load(ctx, s.client, s.sessionKey(sessionID))
}

func (s *RedisStore) load(ctx context.Context, c redis.Cmdable, key string) (*model.ConversationContext, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session model.ConversationContext
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", key, err)
	}
	if session.AskedAbout == nil {
		session.AskedAbout = []string{}
	}
	return &session, nil
}

// Update runs fn inside a WATCH on the session key and retries with a
// linear backoff when another writer commits first.
func (s *RedisStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionID is empty", ErrInvalidParam)
	}

	key := s.sessionKey(sessionID)
	var lastErr error

	for i := 0; i <= s.maxRetries; i++ {
		created := false

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			session, err := s.load(ctx, tx, key)
			if err != nil {
				return err
			}

			now := time.Now()
			created = session == nil
			if created {
				session = model.NewConversationContext(sessionID, now)
			}

			if err := fn(session); err != nil {
				return err
			}
			session.SessionID = sessionID
			session.UpdatedAt = now

			data, err := json.Marshal(session)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, s.ttl)
				if created {
					// an expired session may still sit in the index
					pipe.LRem(ctx, s.indexKey(), 0, sessionID)
					pipe.RPush(ctx, s.indexKey(), sessionID)
				}
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			err = fmt.Errorf("%w: %v", ErrSessionConflict, err)
		}

		if !s.shouldRetry(err) {
			if err != nil {
				return err
			}
			if created {
				return s.evictOverflow(ctx)
			}
			return nil
		}
		lastErr = err

		if i < s.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Millisecond * time.Duration(10*(i+1))):
			}
		}
	}

	return fmt.Errorf("%w for session %s: %w", ErrMaxRetries, sessionID, lastErr)
}

// shouldRetry reports whether err is a lost optimistic-lock race.
func (s *RedisStore) shouldRetry(err error) bool {
	return errors.Is(err, ErrSessionConflict)
}

func (s *RedisStore) evictOverflow(ctx context.Context) error {
	evicted, err := evictScript.Run(ctx, s.client, []string{s.indexKey()}, s.capacity, s.sessionPrefix()).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("evict sessions: %w", err)
	}
	for _, id := range evicted {
		logger.Component("session-store").Debug().
			Str("session", id).
			Int("capacity", s.capacity).
			Msg("evicted oldest session")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionID is empty", ErrInvalidParam)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(sessionID))
		pipe.LRem(ctx, s.indexKey(), 0, sessionID)
		return nil
	})
	return err
}

// Len counts indexed sessions; ids whose value already expired still count
// until they are evicted or recreated.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.indexKey()).Result()
	return int(n), err
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
