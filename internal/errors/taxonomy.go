// Package errors defines the canonical error taxonomy shared by every
// component that rides on the transport core. It normalizes transport
// failures, HTTP status codes, and API-reported error codes into a small
// set of Kinds so callers can branch on errors.Is/errors.As instead of
// inspecting status codes or strings.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an Error into one of the taxonomy's buckets.
type Kind string

const (
	KindConfig          Kind = "ConfigError"
	KindConnection      Kind = "ConnectionError"
	KindUnauthorized    Kind = "Unauthorized"
	KindRateLimited     Kind = "RateLimited"
	KindNotFound        Kind = "NotFound"
	KindModelNotFound   Kind = "ModelNotFound"
	KindCharacterNotFound Kind = "CharacterNotFound"
	KindInvalidRequest  Kind = "InvalidRequest"
	KindServerError     Kind = "ServerError"
	KindTimeout         Kind = "Timeout"
	KindDecodeError     Kind = "DecodeError"
)

// Canonical API error codes recognized in response bodies, used to refine
// a 404 into one of the NotFound sub-kinds.
const (
	CodeModelNotFound     = "MODEL_NOT_FOUND"
	CodeCharacterNotFound = "CHARACTER_NOT_FOUND"
)

// Error is the structured error value surfaced by every component of the
// transport core. It carries enough context for callers to log or retry
// without re-deriving it from an HTTP response.
type Error struct {
	Kind       Kind
	Code       string // canonical code from the API body's error.code, when present
	StatusCode int    // 0 when no HTTP response was involved
	Message    string
	Context    map[string]string
	Cause      error
}

// New constructs an Error. context may be nil.
func New(kind Kind, message string, context map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Context: context}
}

// Wrap constructs an Error that preserves cause for diagnostics.
func Wrap(kind Kind, message string, cause error, context map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause, Context: context}
}

// WithContext returns a shallow copy of e with key=value merged into Context.
func (e *Error) WithContext(key, value string) *Error {
	cp := *e
	cp.Context = make(map[string]string, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

// Error renders "[CODE] message (HTTP S; Context: k=v, ...)". CODE falls
// back to the Kind when no canonical API code is known. The HTTP clause and
// Context clause are each omitted when empty.
func (e *Error) Error() string {
	code := e.Code
	if code == "" {
		code = string(e.Kind)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", code, e.Message)

	var tail []string
	if e.StatusCode != 0 {
		tail = append(tail, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
		tail = append(tail, "Context: "+strings.Join(pairs, ", "))
	}
	if len(tail) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(tail, "; "))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, &Error{Kind: KindRateLimited}) to match by Kind,
// mirroring how the taxonomy groups many HTTP statuses under one Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is against a bare Kind, e.g. errors.Is(err, ErrRateLimited).
var (
	ErrConfig         = &Error{Kind: KindConfig}
	ErrConnection     = &Error{Kind: KindConnection}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized}
	ErrRateLimited    = &Error{Kind: KindRateLimited}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrModelNotFound  = &Error{Kind: KindModelNotFound}
	ErrCharacterNotFound = &Error{Kind: KindCharacterNotFound}
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest}
	ErrServerError    = &Error{Kind: KindServerError}
	ErrTimeout        = &Error{Kind: KindTimeout}
	ErrDecodeError    = &Error{Kind: KindDecodeError}
)

// FromStatus maps an HTTP status code and optional canonical API code into
// a Kind, per the taxonomy: 401 -> Unauthorized, 429 -> RateLimited, 404
// refined by apiCode into ModelNotFound/CharacterNotFound or plain NotFound,
// other 4xx -> InvalidRequest, 5xx -> ServerError.
func FromStatus(statusCode int, apiCode string) Kind {
	switch {
	case statusCode == 401:
		return KindUnauthorized
	case statusCode == 429:
		return KindRateLimited
	case statusCode == 404:
		switch apiCode {
		case CodeModelNotFound:
			return KindModelNotFound
		case CodeCharacterNotFound:
			return KindCharacterNotFound
		default:
			return KindNotFound
		}
	case statusCode >= 400 && statusCode < 500:
		return KindInvalidRequest
	case statusCode >= 500:
		return KindServerError
	default:
		return KindInvalidRequest
	}
}

// Retryable reports whether an HTTP status code mapped to this Kind should
// be retried by the transport engine: RateLimited and ServerError only.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindServerError
}
