package batcher

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusError struct {
	code int
}

func (e *statusError) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e *statusError) Retryable() bool { return e.code == 429 || (e.code >= 500 && e.code <= 599) }

func TestBackoffController_DoublesThenLatches(t *testing.T) {
	b := newBackoffController(DefaultInitialBackoff, DefaultBackoffCeiling)
	now := time.Unix(0, 0)
	cause := &statusError{code: 429}

	for _, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second} {
		got, latched := b.escalate(now, cause)
		require.False(t, latched)
		assert.Equal(t, want, got)
		assert.Equal(t, want, b.wait(now))
		assert.NoError(t, b.err())
	}

	_, latched := b.escalate(now, cause)
	require.True(t, latched)
	require.Error(t, b.err())
	assert.ErrorIs(t, b.err(), ErrPermanentFailure)

	var se *statusError
	assert.True(t, errors.As(b.err(), &se))
	assert.Equal(t, 429, se.code)
}

func TestBackoffController_ResetRestartsSchedule(t *testing.T) {
	b := newBackoffController(time.Second, 8*time.Second)
	now := time.Unix(100, 0)

	b.escalate(now, &statusError{code: 503})
	b.escalate(now, &statusError{code: 503})
	assert.Equal(t, 2*time.Second, b.delay)

	b.reset()
	assert.Zero(t, b.delay)
	assert.Zero(t, b.wait(now))

	got, latched := b.escalate(now, &statusError{code: 503})
	require.False(t, latched)
	assert.Equal(t, time.Second, got)
}

func TestBackoffController_Wait(t *testing.T) {
	b := newBackoffController(time.Second, 8*time.Second)
	now := time.Unix(0, 0)

	assert.Zero(t, b.wait(now))

	b.escalate(now, &statusError{code: 429})

	assert.Equal(t, 600*time.Millisecond, b.wait(now.Add(400*time.Millisecond)))
	assert.Zero(t, b.wait(now.Add(time.Second)))
	assert.Zero(t, b.wait(now.Add(2*time.Second)))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"throttled", &statusError{code: 429}, true},
		{"server error", &statusError{code: 500}, true},
		{"bad gateway wrapped", fmt.Errorf("call: %w", &statusError{code: 502}), true},
		{"bad request", &statusError{code: 400}, false},
		{"plain error", errors.New("429 in the message only"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
