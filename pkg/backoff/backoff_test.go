package backoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danceloop/notifykit/pkg/backoff"
)

func TestExponential(t *testing.T) {
	t.Parallel()

	t.Run("doubles without jitter", func(t *testing.T) {
		t.Parallel()

		s := backoff.Exponential{
			InitialInterval: time.Second,
			Multiplier:      2,
		}

		assert.Equal(t, time.Second, s.NextInterval(1))
		assert.Equal(t, 2*time.Second, s.NextInterval(2))
		assert.Equal(t, 4*time.Second, s.NextInterval(3))
		assert.Equal(t, 8*time.Second, s.NextInterval(4))
	})

	t.Run("respects max interval", func(t *testing.T) {
		t.Parallel()

		s := backoff.Exponential{
			InitialInterval: time.Minute,
			MaxInterval:     5 * time.Minute,
			Multiplier:      2,
		}

		assert.Equal(t, 5*time.Minute, s.NextInterval(10))
	})

	t.Run("non-positive attempt returns zero", func(t *testing.T) {
		t.Parallel()

		s := backoff.Exponential{InitialInterval: time.Second}
		assert.Zero(t, s.NextInterval(0))
		assert.Zero(t, s.NextInterval(-1))
	})

	t.Run("jitter stays within bounds", func(t *testing.T) {
		t.Parallel()

		s := backoff.Exponential{
			InitialInterval: time.Second,
			Multiplier:      2,
			JitterFactor:    0.5,
		}

		for range 100 {
			d := s.NextInterval(2)
			assert.GreaterOrEqual(t, d, time.Second)
			assert.LessOrEqual(t, d, 3*time.Second)
		}
	})

	t.Run("zero values apply defaults", func(t *testing.T) {
		t.Parallel()

		s := backoff.Exponential{}
		assert.Equal(t, time.Second, s.NextInterval(1))
		assert.Equal(t, 2*time.Second, s.NextInterval(2))
	})
}

func TestFixed(t *testing.T) {
	t.Parallel()

	s := backoff.Fixed{Interval: 5 * time.Second}
	assert.Equal(t, 5*time.Second, s.NextInterval(1))
	assert.Equal(t, 5*time.Second, s.NextInterval(9))
	assert.Zero(t, s.NextInterval(0))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	s := backoff.Default()
	assert.NotZero(t, s.NextInterval(1))
}
