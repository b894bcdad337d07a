// Package venice is the public entry point of the client library: it
// resolves configuration, builds the transport engine, and exposes the
// per-service namespaces (Chat, Embeddings, Images, Audio, Video,
// Characters, Models, Keys, Billing) plus the shared rate-limit metrics
// recorder. Every per-endpoint request/response shape is intentionally
// left to the caller — this module only fixes how a call reaches the
// network and how its failures are classified.
package venice

import (
	"time"

	"github.com/sanix-darker/venice/internal/asyncjob"
	"github.com/sanix-darker/venice/internal/config"
	venerr "github.com/sanix-darker/venice/internal/errors"
	"github.com/sanix-darker/venice/internal/metrics"
	"github.com/sanix-darker/venice/internal/venice"
)

// Re-exported so callers never need to import internal/errors directly.
type (
	ErrorKind = venerr.Kind
	Error     = venerr.Error
)

const (
	KindConfig           = venerr.KindConfig
	KindConnection       = venerr.KindConnection
	KindUnauthorized     = venerr.KindUnauthorized
	KindRateLimited      = venerr.KindRateLimited
	KindNotFound         = venerr.KindNotFound
	KindModelNotFound    = venerr.KindModelNotFound
	KindCharacterNotFound = venerr.KindCharacterNotFound
	KindInvalidRequest   = venerr.KindInvalidRequest
	KindServerError      = venerr.KindServerError
	KindTimeout          = venerr.KindTimeout
	KindDecodeError      = venerr.KindDecodeError
)

// Job and JobState are re-exported for callers that decode video/retrieve
// responses into asyncjob.Job values to drive Video.Wait/Complete.
type (
	Job      = asyncjob.Job
	JobState = asyncjob.State
)

const (
	JobQueued     = asyncjob.StateQueued
	JobProcessing = asyncjob.StateProcessing
	JobCompleted  = asyncjob.StateCompleted
	JobFailed     = asyncjob.StateFailed
)

// JobOptions configures Video.Wait and Video.Complete.
type JobOptions = asyncjob.Options

// Event and Summary are re-exported from the rate-limit metrics recorder.
type (
	Event   = metrics.Event
	Summary = metrics.Summary
)

// Options mirrors internal/config.Options: every field is a pointer so a
// nil value defers to the environment, a local .env file, or the global
// dotenv file, in that order of decreasing precedence.
type Options struct {
	APIKey             *string
	BaseURL            *string
	Timeout            *time.Duration
	MaxRetries         *int
	RetryBackoffFactor *float64
	RetryStatusCodes   map[int]bool
	PoolConnections    *int
	PoolMaxSize        *int
	UseGlobalConfig    *bool
}

// Client is the full SDK surface: one Client per resolved Config, safe for
// concurrent use across goroutines.
type Client struct {
	*venice.Client
}

// New resolves opts into a Config (per the precedence above) and builds a
// Client backed by a pooled HTTP engine.
func New(opts Options) (*Client, error) {
	cfg, err := config.Resolve(config.Options{
		APIKey:             opts.APIKey,
		BaseURL:            opts.BaseURL,
		Timeout:            opts.Timeout,
		MaxRetries:         opts.MaxRetries,
		RetryBackoffFactor: opts.RetryBackoffFactor,
		RetryStatusCodes:   opts.RetryStatusCodes,
		PoolConnections:    opts.PoolConnections,
		PoolMaxSize:        opts.PoolMaxSize,
		UseGlobalConfig:    opts.UseGlobalConfig,
	})
	if err != nil {
		return nil, err
	}
	return &Client{Client: venice.New(cfg)}, nil
}

// NewFromAPIKey is the common-case constructor: everything else defaults
// from the environment or a dotenv file.
func NewFromAPIKey(apiKey string) (*Client, error) {
	return New(Options{APIKey: &apiKey})
}
