package lib

import (
	"context"
	"math/rand"
	"time"
)

type BackoffConfig struct {
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	ResetAfter        time.Duration
}

// BackoffManager hands out growing, jittered delays. It is not safe for concurrent use.
type BackoffManager struct {
	config         BackoffConfig
	currentBackoff time.Duration
	lastReset      time.Time
}

func NewBackoffManager(config BackoffConfig) *BackoffManager {
	return &BackoffManager{
		config:         config,
		currentBackoff: config.InitialBackoff,
		lastReset:      time.Now(),
	}
}

func (b *BackoffManager) NextBackoff() time.Duration {
	now := time.Now()
	if b.config.ResetAfter > 0 && now.Sub(b.lastReset) > b.config.ResetAfter {
		b.currentBackoff = b.config.InitialBackoff
		b.lastReset = now
	}

	delay := b.currentBackoff
	delay += time.Duration(rand.Float64() * float64(delay) * 0.1)

	b.currentBackoff = time.Duration(float64(b.currentBackoff) * b.config.BackoffMultiplier)
	if b.currentBackoff > b.config.MaxBackoff {
		b.currentBackoff = b.config.MaxBackoff
	}

	return delay
}

func (b *BackoffManager) Reset() {
	b.currentBackoff = b.config.InitialBackoff
	b.lastReset = time.Now()
}

// WaitUntil calls probe until it succeeds or ctx is done, sleeping for the next
// backoff between attempts. onRetry, when set, sees every failed attempt.
func WaitUntil(ctx context.Context, b *BackoffManager, probe func(context.Context) error, onRetry func(err error, delay time.Duration)) error {
	for {
		err := probe(ctx)
		if err == nil {
			b.Reset()
			return nil
		}

		delay := b.NextBackoff()
		if onRetry != nil {
			onRetry(err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
