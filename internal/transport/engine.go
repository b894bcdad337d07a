// Package transport implements the pooled HTTP engine every endpoint
// wrapper rides on: request execution, auth headers, JSON/binary/SSE
// dispatch, and the bounded jittered-backoff retry policy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sanix-darker/venice/internal/config"
	venerr "github.com/sanix-darker/venice/internal/errors"
	"github.com/sanix-darker/venice/internal/metrics"
)

const userAgent = "venice-go/1.0"

// Request describes one call routed through the engine.
type Request struct {
	Method  string // any http.Method*; defaults to GET when empty
	Path    string // relative to Config.BaseURL
	Query   map[string]string
	Body    interface{} // marshaled as JSON when non-nil
	Timeout time.Duration
	Stream  bool
}

// Response is the decoded result of a non-streaming call.
type Response struct {
	StatusCode int
	Header     http.Header
	JSON       interface{}
	Raw        []byte
}

// Engine executes Requests against one Config's base URL and connection
// pool, applying the retry policy and recording rate-limit events.
type Engine struct {
	cfg     *config.Config
	policy  RetryPolicy
	resty   *resty.Client
	stream  *http.Client
	metrics *metrics.Recorder

	sleep func(context.Context, time.Duration) error
}

// New builds an Engine whose connection pool is sized from cfg and whose
// rate-limit events are recorded into rec.
func New(cfg *config.Config, rec *metrics.Recorder) *Engine {
	tr := &http.Transport{
		MaxIdleConns:        cfg.PoolMaxSize,
		MaxIdleConnsPerHost: cfg.PoolConnections,
		MaxConnsPerHost:     cfg.PoolMaxSize,
		IdleConnTimeout:     90 * time.Second,
	}

	rc := resty.New().
		SetTransport(tr).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", userAgent)

	return &Engine{
		cfg:     cfg,
		policy:  NewRetryPolicy(cfg.RetryStatusCodes, cfg.MaxRetries, cfg.RetryBackoffFactor),
		resty:   rc,
		stream:  &http.Client{Transport: tr},
		metrics: rec,
		sleep:   sleepCtx,
	}
}

// Metrics exposes the engine's rate-limit metrics recorder, per §4.7.
func (e *Engine) Metrics() *metrics.Recorder {
	return e.metrics
}

// Do executes a non-streaming JSON request with the full retry policy.
func (e *Engine) Do(ctx context.Context, req Request) (*Response, error) {
	var lastTransportErr error

	attempts := e.policy.MaxAttempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, transportErr := e.attempt(ctx, req)

		if transportErr != nil {
			lastTransportErr = transportErr
			if attempt == attempts || !e.policy.ShouldRetry(0, true) {
				return nil, venerr.Wrap(venerr.KindConnection, "request failed before a response was received", lastTransportErr, reqContext(req, 0, ""))
			}
			if !e.waitBeforeRetry(ctx, attempt, 0, 0) {
				return nil, ctxErr(ctx)
			}
			continue
		}

		status := resp.StatusCode()
		header := resp.Header()
		body := resp.Body()
		retryAfter := parseRetryAfter(header.Get("Retry-After"))

		if status == 429 {
			e.recordRateLimit(req, status, retryAfter)
		}

		if e.policy.ShouldRetry(status, false) && attempt < attempts {
			if !e.waitBeforeRetry(ctx, attempt, status, retryAfter) {
				return nil, ctxErr(ctx)
			}
			continue
		}

		if status >= 200 && status < 300 {
			return decodeSuccess(status, header, body)
		}

		return nil, mapHTTPError(req, status, header, body, retryAfter)
	}

	return nil, venerr.Wrap(venerr.KindConnection, "request failed before a response was received", lastTransportErr, reqContext(req, 0, ""))
}

// PostRaw executes a request and returns the raw response body regardless
// of content type, for binary payloads (audio, video downloads).
func (e *Engine) PostRaw(ctx context.Context, req Request) ([]byte, http.Header, error) {
	resp, err := e.Do(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return resp.Raw, resp.Header, nil
}

// attempt performs exactly one HTTP call (no retry logic). A non-nil
// transportErr means the call failed before any HTTP response existed.
func (e *Engine) attempt(ctx context.Context, req Request) (resp *resty.Response, transportErr error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	r := e.resty.R().SetContext(ctx)
	for k, v := range req.Query {
		r.SetQueryParam(k, v)
	}
	r.SetHeader("Authorization", "Bearer "+e.cfg.APIKey)
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	resp, transportErr = r.Execute(method, req.Path)
	return resp, transportErr
}

func (e *Engine) waitBeforeRetry(ctx context.Context, attempt, statusCode int, retryAfter time.Duration) bool {
	delay := e.policy.delayFor(attempt, statusCode, retryAfter)
	return e.sleep(ctx, delay) == nil
}

func (e *Engine) recordRateLimit(req Request, status int, retryAfter time.Duration) {
	if e.metrics == nil {
		return
	}
	var ra *int
	if retryAfter > 0 {
		s := int(retryAfter / time.Second)
		ra = &s
	}
	e.metrics.Record(metrics.Event{
		Timestamp:  time.Now(),
		Endpoint:   req.Path,
		Method:     req.Method,
		StatusCode: status,
		RetryAfter: ra,
	})
}

func decodeSuccess(status int, header http.Header, body []byte) (*Response, error) {
	resp := &Response{StatusCode: status, Header: header, Raw: body}
	if len(body) == 0 {
		return resp, nil
	}
	ct := header.Get("Content-Type")
	if ct != "" && !jsonContentType(ct) {
		return resp, nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, venerr.Wrap(venerr.KindDecodeError, "response body is not valid JSON", err, map[string]string{"preview": preview(body)})
	}
	resp.JSON = v
	return resp, nil
}

func jsonContentType(ct string) bool {
	return len(ct) >= 16 && ct[:16] == "application/json"
}

func preview(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

type apiErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mapHTTPError(req Request, status int, header http.Header, body []byte, retryAfter time.Duration) error {
	var apiCode, apiMessage string
	var parsed apiErrorBody
	if json.Unmarshal(body, &parsed) == nil {
		apiCode = parsed.Error.Code
		apiMessage = parsed.Error.Message
	}

	kind := venerr.FromStatus(status, apiCode)
	msg := apiMessage
	if msg == "" {
		msg = http.StatusText(status)
	}

	ctx := reqContext(req, status, header.Get("x-request-id"))
	if apiCode != "" {
		ctx["code"] = apiCode
	}
	if status == 429 && retryAfter > 0 {
		ctx["retry_after"] = strconv.Itoa(int(retryAfter / time.Second))
	}

	e := venerr.New(kind, msg, ctx)
	e.StatusCode = status
	e.Code = apiCode
	return e
}

func reqContext(req Request, status int, requestID string) map[string]string {
	ctx := map[string]string{"method": req.Method, "path": req.Path}
	if requestID != "" {
		ctx["request_id"] = requestID
	}
	return ctx
}

// parseRetryAfter accepts only delta-seconds integers, per the distilled
// spec's open question: HTTP-date forms are left unhandled.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func ctxErr(ctx context.Context) error {
	return venerr.Wrap(venerr.KindConnection, "request canceled while waiting to retry", ctx.Err(), map[string]string{"reason": "deadline"})
}

// OpenStream issues a streaming request and returns the live response body
// once a non-retryable status is observed. No retry occurs after the first
// byte of the body has been handed to the caller.
func (e *Engine) OpenStream(ctx context.Context, req Request) (io.ReadCloser, http.Header, error) {
	attempts := e.policy.MaxAttempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		httpReq, err := e.buildStreamRequest(ctx, req)
		if err != nil {
			return nil, nil, err
		}

		resp, err := e.stream.Do(httpReq)
		if err != nil {
			if attempt == attempts {
				return nil, nil, venerr.Wrap(venerr.KindConnection, "streaming request failed before a response was received", err, reqContext(req, 0, ""))
			}
			if !e.waitBeforeRetry(ctx, attempt, 0, 0) {
				return nil, nil, ctxErr(ctx)
			}
			continue
		}

		status := resp.StatusCode
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		if status == 429 {
			e.recordRateLimit(req, status, retryAfter)
		}

		if e.policy.ShouldRetry(status, false) && attempt < attempts {
			resp.Body.Close()
			if !e.waitBeforeRetry(ctx, attempt, status, retryAfter) {
				return nil, nil, ctxErr(ctx)
			}
			continue
		}

		if status >= 200 && status < 300 {
			return newIdleTimeoutReadCloser(resp.Body, e.idleReadTimeout(req)), resp.Header, nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, nil, mapHTTPError(req, status, resp.Header, body, retryAfter)
	}
	// Every branch above returns or continues; this satisfies the compiler,
	// not a reachable exhaustion path (attempt == attempts always returns).
	return nil, nil, venerr.New(venerr.KindServerError, "streaming request retries exhausted", reqContext(req, 0, ""))
}

// idleReadTimeout bounds how long a streaming Read may wait for the next
// chunk before the connection is assumed stalled, matching the per-request
// timeout the buffered path already enforces via resty. A per-call
// req.Timeout takes precedence over the engine-wide Config.Timeout.
func (e *Engine) idleReadTimeout(req Request) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	return e.cfg.Timeout
}

func (e *Engine) buildStreamRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := e.cfg.BaseURL + "/" + trimSlash(req.Path)
	var bodyReader io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, venerr.Wrap(venerr.KindInvalidRequest, "failed to encode request body", err, nil)
		}
		bodyReader = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, venerr.Wrap(venerr.KindInvalidRequest, "failed to build streaming request", err, nil)
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("User-Agent", userAgent)
	return httpReq, nil
}

func trimSlash(path string) string {
	for len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// idleTimeoutReadCloser bounds each individual Read to timeout, unlike a
// context deadline (which would bound the whole stream's total duration
// and kill a legitimately long-running SSE or download mid-flight). A
// stalled server that stops sending bytes without closing the connection
// surfaces a KindTimeout error instead of hanging the caller forever.
type idleTimeoutReadCloser struct {
	rc      io.ReadCloser
	timeout time.Duration
}

func newIdleTimeoutReadCloser(rc io.ReadCloser, timeout time.Duration) io.ReadCloser {
	if timeout <= 0 {
		return rc
	}
	return &idleTimeoutReadCloser{rc: rc, timeout: timeout}
}

func (r *idleTimeoutReadCloser) Read(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := r.rc.Read(p)
		done <- result{n, err}
	}()

	select {
	case res := <-done:
		return res.n, res.err
	case <-time.After(r.timeout):
		r.rc.Close()
		return 0, venerr.New(venerr.KindTimeout, "stream read timed out waiting for the next chunk", nil)
	}
}

func (r *idleTimeoutReadCloser) Close() error {
	return r.rc.Close()
}
