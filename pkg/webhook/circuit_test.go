package webhook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danceloop/notifykit/pkg/webhook"
)

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	t.Run("opens after failure threshold", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(3, 1, time.Minute)
		assert.Equal(t, webhook.CircuitClosed, cb.State())

		cb.RecordFailure()
		cb.RecordFailure()
		assert.True(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, webhook.CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("success resets the failure count while closed", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(2, 1, time.Minute)
		cb.RecordFailure()
		cb.RecordSuccess()
		cb.RecordFailure()
		assert.Equal(t, webhook.CircuitClosed, cb.State())
	})

	t.Run("half-open after recovery timeout", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(1, 1, 10*time.Millisecond)
		cb.RecordFailure()
		assert.False(t, cb.Allow())

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, webhook.CircuitHalfOpen, cb.State())
		assert.True(t, cb.Allow())
	})

	t.Run("closes after success threshold in half-open", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(1, 2, 10*time.Millisecond)
		cb.RecordFailure()
		time.Sleep(20 * time.Millisecond)
		assert.True(t, cb.Allow())

		cb.RecordSuccess()
		assert.Equal(t, webhook.CircuitHalfOpen, cb.State())
		cb.RecordSuccess()
		assert.Equal(t, webhook.CircuitClosed, cb.State())
	})

	t.Run("failure in half-open reopens immediately", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(1, 1, 10*time.Millisecond)
		cb.RecordFailure()
		time.Sleep(20 * time.Millisecond)
		assert.True(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, webhook.CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("reset closes the circuit", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(1, 1, time.Minute)
		cb.RecordFailure()
		assert.False(t, cb.Allow())

		cb.Reset()
		assert.Equal(t, webhook.CircuitClosed, cb.State())
		assert.True(t, cb.Allow())
	})
}
