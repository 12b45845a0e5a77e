package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusHarvested.Valid())
	assert.True(t, StatusFollowup4.Valid())
	assert.False(t, Status("archived").Valid())
	assert.False(t, Status("").Valid())
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []Status{
		StatusDisqualified, StatusLowScore, StatusReplied,
		StatusConverted, StatusUnsubscribed, StatusDead,
	}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}
	for _, s := range []Status{StatusHarvested, StatusQualified, StatusSent, StatusFollowup3} {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestFollowupStatus(t *testing.T) {
	assert.Equal(t, StatusFollowup1, FollowupStatus(1))
	assert.Equal(t, StatusFollowup4, FollowupStatus(4))
}

func TestClassifyTier(t *testing.T) {
	th := DefaultTierThresholds()
	n := func(v int64) *int64 { return &v }

	assert.Equal(t, TierUnknown, ClassifyTier(nil, th))
	assert.Equal(t, TierTooSmall, ClassifyTier(n(4_999), th))
	assert.Equal(t, TierSmall, ClassifyTier(n(5_000), th))
	assert.Equal(t, TierSmall, ClassifyTier(n(99_999), th))
	assert.Equal(t, TierSweetSpot, ClassifyTier(n(250_000), th))
	assert.Equal(t, TierSweetSpot, ClassifyTier(n(999_999), th))
	assert.Equal(t, TierBig, ClassifyTier(n(1_000_000), th))
}

func TestErrorClassification(t *testing.T) {
	transient := &TransientError{Op: "query", Err: errors.New("503"), Cooldown: 30 * time.Second}
	permanent := &PermanentError{Op: "query", Err: errors.New("403")}
	validation := &ValidationError{Op: "evaluate", Err: errors.New("missing field")}
	conflict := &ConflictError{EntityID: "E1", Expected: StatusHarvested, Actual: StatusQualified}

	assert.True(t, IsTransient(transient))
	assert.False(t, IsTransient(permanent))
	assert.True(t, IsPermanent(permanent))
	assert.True(t, IsValidation(validation))
	assert.True(t, IsConflict(conflict))

	assert.Equal(t, 30*time.Second, CooldownOf(transient))
	assert.Zero(t, CooldownOf(permanent))
}

func TestErrorsUnwrap(t *testing.T) {
	inner := errors.New("boom")
	assert.ErrorIs(t, &TransientError{Op: "x", Err: inner}, inner)
	assert.ErrorIs(t, &PermanentError{Op: "x", Err: inner}, inner)
	assert.ErrorIs(t, &ValidationError{Op: "x", Err: inner}, inner)
}
