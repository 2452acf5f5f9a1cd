package api

import (
	"context"
	"math/rand"
	"time"
)

// Delay is the artificial typing pause before a chat reply, drawn uniformly
// from [Min, Max]. The zero value does not wait.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

func (d Delay) duration() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(int64(d.Max-d.Min)+1))
}

func (d Delay) Wait(ctx context.Context) error {
	wait := d.duration()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
