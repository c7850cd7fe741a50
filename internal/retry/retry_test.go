package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Jitter: 0.2}

	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Jitter: 0.2}

	err := p.Do(context.Background(), func() error {
		calls++
		return boom
	}, nil)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	fatal := errors.New("bad credentials")
	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		Jitter:      0.2,
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}

	err := p.Do(context.Background(), func() error {
		calls++
		return fatal
	}, nil)

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_DelaysIncrease(t *testing.T) {
	var delays []time.Duration
	p := Policy{MaxAttempts: 4, BaseDelay: 2 * time.Millisecond, Jitter: 0}

	_ = p.Do(context.Background(), func() error {
		return errors.New("transient")
	}, func(_ error, d time.Duration) {
		delays = append(delays, d)
	})

	assert.Len(t, delays, 3)
	assert.Equal(t, 2*time.Millisecond, delays[0])
	assert.Equal(t, 4*time.Millisecond, delays[1])
	assert.Equal(t, 8*time.Millisecond, delays[2])
}

func TestDo_JitterStaysInBand(t *testing.T) {
	var delays []time.Duration
	p := Policy{MaxAttempts: 2, BaseDelay: 100 * time.Millisecond, Jitter: 0.2}

	_ = p.Do(context.Background(), func() error {
		return errors.New("transient")
	}, func(_ error, d time.Duration) {
		delays = append(delays, d)
	})

	assert.Len(t, delays, 1)
	assert.GreaterOrEqual(t, delays[0], 80*time.Millisecond)
	assert.LessOrEqual(t, delays[0], 120*time.Millisecond)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond, Jitter: 0}
	err := p.Do(ctx, func() error { return errors.New("transient") }, nil)

	assert.Error(t, err)
}
