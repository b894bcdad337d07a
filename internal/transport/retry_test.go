package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaxAttemptsIsRetriesPlusOne(t *testing.T) {
	p := NewRetryPolicy(nil, 3, 0.5)
	assert.Equal(t, 4, p.MaxAttempts())
}

func TestShouldRetryOnConfiguredStatusOnly(t *testing.T) {
	p := NewRetryPolicy(map[int]bool{429: true, 503: true}, 3, 0.5)
	assert.True(t, p.ShouldRetry(429, false))
	assert.True(t, p.ShouldRetry(503, false))
	assert.False(t, p.ShouldRetry(404, false))
	assert.True(t, p.ShouldRetry(0, true), "a transport error always retries regardless of status codes")
}

func TestDelayForExponentialWithoutJitter(t *testing.T) {
	p := NewRetryPolicy(nil, 5, 1.0)
	p.randFloat = func() float64 { return 0.5 } // midpoint -> zero jitter offset

	assert.Equal(t, 1*time.Second, p.delayFor(1, 0, 0))
	assert.Equal(t, 2*time.Second, p.delayFor(2, 0, 0))
	assert.Equal(t, 4*time.Second, p.delayFor(3, 0, 0))
}

func TestDelayForJitterBounds(t *testing.T) {
	p := NewRetryPolicy(nil, 5, 1.0)

	p.randFloat = func() float64 { return 0 }
	low := p.delayFor(1, 0, 0)
	p.randFloat = func() float64 { return 1 }
	high := p.delayFor(1, 0, 0)

	assert.Equal(t, 800*time.Millisecond, low)
	assert.Equal(t, 1200*time.Millisecond, high)
}

func TestDelayForRespectsRetryAfterWhenLarger(t *testing.T) {
	p := NewRetryPolicy(nil, 5, 0.5)
	p.randFloat = func() float64 { return 0.5 }

	delay := p.delayFor(1, 429, 10*time.Second)
	assert.Equal(t, 10*time.Second, delay)
}

func TestDelayForIgnoresRetryAfterWhenSmaller(t *testing.T) {
	p := NewRetryPolicy(nil, 5, 4.0)
	p.randFloat = func() float64 { return 0.5 }

	delay := p.delayFor(1, 429, 1*time.Second)
	assert.Equal(t, 4*time.Second, delay)
}
