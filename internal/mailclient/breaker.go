package mailclient

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"portfolio-bot/internal/logger"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type BreakerConfig struct {
	// MaxFailures consecutive failures trip the breaker.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout              time.Duration
	HalfOpenMaxSuccesses uint32
}

// CircuitBreaker stops calling the mail provider after repeated failures.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

func NewCircuitBreaker() *CircuitBreaker {
	return NewCircuitBreakerWithConfig(BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 1,
	})
}

func NewCircuitBreakerWithConfig(cfg BreakerConfig) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        "mail",
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Component("mailclient").Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := cb.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return result, err
}

func (cb *CircuitBreaker) State() string {
	return cb.breaker.State().String()
}
