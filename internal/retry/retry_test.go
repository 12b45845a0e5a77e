package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/domain"
)

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDoRetriesTransient(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return &domain.TransientError{Op: "op", Err: errors.New("hiccup")}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	failure := &domain.TransientError{Op: "op", Err: errors.New("down")}
	err := fastPolicy(3).Do(context.Background(), "op", func(context.Context) error {
		calls++
		return failure
	})
	assert.Equal(t, 3, calls)
	assert.True(t, domain.IsTransient(err))
}

func TestDoPermanentNotRetried(t *testing.T) {
	calls := 0
	err := fastPolicy(5).Do(context.Background(), "op", func(context.Context) error {
		calls++
		return &domain.PermanentError{Op: "op", Err: errors.New("gone")}
	})
	assert.Equal(t, 1, calls)
	assert.True(t, domain.IsPermanent(err))
}

func TestDoValidationNotRetried(t *testing.T) {
	calls := 0
	err := fastPolicy(5).Do(context.Background(), "op", func(context.Context) error {
		calls++
		return &domain.ValidationError{Op: "evaluate", Err: errors.New("missing language block")}
	})
	assert.Equal(t, 1, calls)
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{MaxAttempts: 3, BaseDelay: time.Hour}.Do(ctx, "op", func(context.Context) error {
		calls++
		cancel()
		return &domain.TransientError{Op: "op", Err: errors.New("slow")}
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Policy{}.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDelayCappedAtMax(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	assert.Equal(t, time.Second, p.delay(1))
	assert.Equal(t, 2*time.Second, p.delay(2))
	assert.Equal(t, 3*time.Second, p.delay(3))
	assert.Equal(t, 3*time.Second, p.delay(8))
}
