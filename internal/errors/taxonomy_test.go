package errors_test

import (
	"errors"
	"testing"

	venerr "github.com/sanix-darker/venice/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	assert.Equal(t, venerr.KindUnauthorized, venerr.FromStatus(401, ""))
	assert.Equal(t, venerr.KindRateLimited, venerr.FromStatus(429, ""))
	assert.Equal(t, venerr.KindModelNotFound, venerr.FromStatus(404, venerr.CodeModelNotFound))
	assert.Equal(t, venerr.KindCharacterNotFound, venerr.FromStatus(404, venerr.CodeCharacterNotFound))
	assert.Equal(t, venerr.KindNotFound, venerr.FromStatus(404, ""))
	assert.Equal(t, venerr.KindInvalidRequest, venerr.FromStatus(422, ""))
	assert.Equal(t, venerr.KindServerError, venerr.FromStatus(503, ""))
}

func TestRetryable(t *testing.T) {
	assert.True(t, venerr.KindRateLimited.Retryable())
	assert.True(t, venerr.KindServerError.Retryable())
	assert.False(t, venerr.KindInvalidRequest.Retryable())
	assert.False(t, venerr.KindNotFound.Retryable())
}

func TestErrorIsMatchesByKind(t *testing.T) {
	err := venerr.New(venerr.KindRateLimited, "too many requests", nil)
	assert.ErrorIs(t, err, venerr.ErrRateLimited)
	assert.NotErrorIs(t, err, venerr.ErrUnauthorized)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := venerr.Wrap(venerr.KindConnection, "request failed", cause, nil)
	require.ErrorIs(t, err, cause)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestErrorStringIncludesContextAndStatus(t *testing.T) {
	err := venerr.New(venerr.KindInvalidRequest, "bad model", map[string]string{"model": "llama"})
	err.StatusCode = 422
	msg := err.Error()
	assert.Contains(t, msg, "InvalidRequest")
	assert.Contains(t, msg, "bad model")
	assert.Contains(t, msg, "HTTP 422")
	assert.Contains(t, msg, "model=llama")
}

func TestWithContextDoesNotMutateOriginal(t *testing.T) {
	base := venerr.New(venerr.KindConfig, "missing key", map[string]string{"a": "1"})
	extended := base.WithContext("b", "2")

	assert.Equal(t, map[string]string{"a": "1"}, base.Context)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, extended.Context)
}
