package transport

import (
	"math"
	"math/rand"
	"time"
)

// RetryPolicy is an explicit, injectable retry configuration — the
// generalized replacement for the teacher's decorator-based retry
// (internal/provider/retry.go's WithRetry[T]) and vessel-api-vesselapi-go's
// calcBackoff. The engine owns the loop; RetryPolicy only describes it.
type RetryPolicy struct {
	StatusCodes  map[int]bool
	MaxRetries   int
	BackoffFactor time.Duration

	// randFloat returns a value in [0,1); overridable by tests for
	// deterministic jitter assertions.
	randFloat func() float64
}

// NewRetryPolicy builds a RetryPolicy from the resolved Config fields.
func NewRetryPolicy(statusCodes map[int]bool, maxRetries int, backoffFactor float64) RetryPolicy {
	return RetryPolicy{
		StatusCodes:   statusCodes,
		MaxRetries:    maxRetries,
		BackoffFactor: time.Duration(backoffFactor * float64(time.Second)),
		randFloat:     rand.Float64,
	}
}

// MaxAttempts is max_retries + 1, per §4.3.
func (p RetryPolicy) MaxAttempts() int {
	return p.MaxRetries + 1
}

// ShouldRetry reports whether the given status code should trigger another
// attempt. transportErr is true when the attempt failed before any HTTP
// response was received (DNS/TLS/timeout).
func (p RetryPolicy) ShouldRetry(statusCode int, transportErr bool) bool {
	if transportErr {
		return true
	}
	return p.StatusCodes[statusCode]
}

// delayFor returns the backoff delay before attempt k (1-indexed),
// backoff_factor * 2^(k-1) seconds, with ±20% jitter. For a 429 response
// carrying retryAfter, the delay is max(retryAfter, backoff-based delay).
func (p RetryPolicy) delayFor(attempt int, statusCode int, retryAfter time.Duration) time.Duration {
	base := time.Duration(float64(p.BackoffFactor) * math.Pow(2, float64(attempt-1)))

	randFn := p.randFloat
	if randFn == nil {
		randFn = rand.Float64
	}
	jitter := 1 + (randFn()*0.4 - 0.2) // uniform in [0.8, 1.2)
	delay := time.Duration(float64(base) * jitter)

	if statusCode == 429 && retryAfter > delay {
		delay = retryAfter
	}
	return delay
}
