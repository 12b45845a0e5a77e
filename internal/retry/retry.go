package retry

import (
	"context"
	"log"
	"time"

	"outreach-engine/internal/domain"
)

// Policy is the one retry/backoff abstraction injected into every
// external call site. Only transient errors are retried; a rate-limit
// cool-down attached to the error overrides the backoff curve.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Cooldown    time.Duration
}

func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Cooldown:    15 * time.Second,
	}
}

// Do runs fn up to MaxAttempts times. Permanent, validation, conflict and
// config errors are returned immediately.
func (p Policy) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !domain.IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		wait := p.delay(attempt)
		if cd := domain.CooldownOf(err); cd > 0 {
			if p.Cooldown > cd {
				cd = p.Cooldown
			}
			wait = cd
			log.Printf("[retry:%s] rate limited, cooling down %s (attempt %d/%d)", name, wait, attempt, attempts)
		} else {
			log.Printf("[retry:%s] transient error, retrying in %s (attempt %d/%d): %v", name, wait, attempt, attempts, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}

// delay is exponential from BaseDelay, capped at MaxDelay.
func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}
