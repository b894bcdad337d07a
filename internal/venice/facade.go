// Package venice implements the endpoint facade: the thin, schema-free
// get/post/stream/post_raw primitives every per-service namespace is built
// from, plus the async job accessor and the shared metrics recorder. It
// knows nothing about any one service's request/response shapes — that is
// explicitly out of scope — it only knows how to route a call through the
// transport core.
package venice

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/sanix-darker/venice/internal/asyncjob"
	"github.com/sanix-darker/venice/internal/config"
	venerr "github.com/sanix-darker/venice/internal/errors"
	"github.com/sanix-darker/venice/internal/metrics"
	"github.com/sanix-darker/venice/internal/sse"
	"github.com/sanix-darker/venice/internal/transport"
)

// Client is the facade every per-service namespace (Models, Chat,
// Embeddings, Images, Audio, Video, Characters, Keys, Billing) embeds to
// reach the network.
type Client struct {
	engine *transport.Engine
	cfg    *config.Config
}

// New builds a Client from a resolved Config.
func New(cfg *config.Config) *Client {
	rec := metrics.NewRecorder(metrics.DefaultRetention)
	return &Client{engine: transport.New(cfg, rec), cfg: cfg}
}

// Config returns the resolved configuration this Client was built from.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// Metrics exposes the rate-limit event recorder shared by every request
// this Client issues.
func (c *Client) Metrics() *metrics.Recorder {
	return c.engine.Metrics()
}

// Get issues a buffered JSON GET against path with the given query params.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (interface{}, error) {
	resp, err := c.engine.Do(ctx, transport.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	return resp.JSON, nil
}

// Post issues a buffered JSON POST with body marshaled as the request
// payload, returning the decoded JSON response.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (interface{}, error) {
	resp, err := c.engine.Do(ctx, transport.Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, err
	}
	return resp.JSON, nil
}

// Delete issues a buffered JSON DELETE against path, returning the decoded
// JSON response.
func (c *Client) Delete(ctx context.Context, path string) (interface{}, error) {
	resp, err := c.engine.Do(ctx, transport.Request{Method: http.MethodDelete, Path: path})
	if err != nil {
		return nil, err
	}
	return resp.JSON, nil
}

// PostRaw issues a POST and returns the raw response body unparsed, for
// binary payloads (generated audio/video/images).
func (c *Client) PostRaw(ctx context.Context, path string, body interface{}) ([]byte, http.Header, error) {
	return c.engine.PostRaw(ctx, transport.Request{Method: http.MethodPost, Path: path, Body: body})
}

// StreamRaw opens a server-sent-event stream over path and returns an
// iterator of the raw string payload of each event.
func (c *Client) StreamRaw(ctx context.Context, path string, body interface{}) (*sse.RawIterator, error) {
	r, _, err := c.engine.OpenStream(ctx, transport.Request{Method: http.MethodPost, Path: path, Body: body, Stream: true})
	if err != nil {
		return nil, err
	}
	return sse.NewRawIterator(ctx, r), nil
}

// StreamParsed opens a server-sent-event stream over path and returns an
// iterator of each event's payload decoded as JSON.
func (c *Client) StreamParsed(ctx context.Context, path string, body interface{}) (*sse.ParsedIterator, error) {
	r, _, err := c.engine.OpenStream(ctx, transport.Request{Method: http.MethodPost, Path: path, Body: body, Stream: true})
	if err != nil {
		return nil, err
	}
	return sse.NewParsedIterator(ctx, r), nil
}

// DownloadToFile streams the binary artifact at path into destPath via the
// engine's raw-stream mode, without buffering the whole payload in memory
// the way PostRaw does.
func (c *Client) DownloadToFile(ctx context.Context, path, destPath string) error {
	body, _, err := c.engine.OpenStream(ctx, transport.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return venerr.Wrap(venerr.KindConfig, "failed to create download destination", err, map[string]string{"path": destPath})
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return venerr.Wrap(venerr.KindConnection, "failed while streaming artifact to disk", err, map[string]string{"path": destPath})
	}
	return nil
}

// WaitForJob polls path (a job-retrieval endpoint returning the job's
// current state) until it reaches a terminal state, per §4.6.
func (c *Client) WaitForJob(ctx context.Context, jobID string, retrieve asyncjob.RetrieveFunc, opts asyncjob.Options) (asyncjob.Job, error) {
	return asyncjob.Wait(ctx, jobID, retrieve, opts)
}

// CompleteJob is WaitForJob with the larger default 900s timeout used by
// "queue, then wait for completion" helpers.
func (c *Client) CompleteJob(ctx context.Context, jobID string, retrieve asyncjob.RetrieveFunc, opts asyncjob.Options) (asyncjob.Job, error) {
	return asyncjob.Complete(ctx, jobID, retrieve, opts)
}
