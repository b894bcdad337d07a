package venice

import (
	"context"

	"github.com/sanix-darker/venice/internal/asyncjob"
)

// Models returns the models/* namespace.
func (c *Client) Models() Models { return Models{c: c} }

// Chat returns the chat/completions namespace.
func (c *Client) Chat() Chat { return Chat{c: c} }

// Embeddings returns the embeddings/generate namespace.
func (c *Client) Embeddings() Embeddings { return Embeddings{c: c} }

// Images returns the image/* namespace.
func (c *Client) Images() Images { return Images{c: c} }

// Audio returns the audio/speech namespace.
func (c *Client) Audio() Audio { return Audio{c: c} }

// Video returns the video/* async namespace.
func (c *Client) Video() Video { return Video{c: c} }

// Characters returns the characters/* namespace.
func (c *Client) Characters() Characters { return Characters{c: c} }

// Keys returns the api_keys/* namespace.
func (c *Client) Keys() Keys { return Keys{c: c} }

// Billing returns the billing/* namespace.
func (c *Client) Billing() Billing { return Billing{c: c} }

// Models is the GET models/* namespace.
type Models struct{ c *Client }

// List calls GET models.
func (m Models) List(ctx context.Context) (interface{}, error) {
	return m.c.Get(ctx, PathModels, nil)
}

// Traits calls GET models/traits.
func (m Models) Traits(ctx context.Context) (interface{}, error) {
	return m.c.Get(ctx, PathModelTraits, nil)
}

// CompatibilityMapping calls GET models/compatibility_mapping.
func (m Models) CompatibilityMapping(ctx context.Context) (interface{}, error) {
	return m.c.Get(ctx, PathModelCompatibilityMapping, nil)
}

// ChunkIterator is satisfied by *sse.ParsedIterator; named here so
// CompleteStream's signature doesn't leak the sse package to callers that
// only hold a Chat namespace value.
type ChunkIterator interface {
	Next() (interface{}, bool)
	Err() error
	Close() error
}

// Chat is the chat/completions namespace, schema-free per the non-goal:
// body is forwarded as-is, mirroring the teacher's SimpleComplete bridge
// shape (a thin adapter over a richer engine, not a schema).
type Chat struct{ c *Client }

// Complete calls POST chat/completions and returns the decoded JSON body.
func (ch Chat) Complete(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return ch.c.Post(ctx, PathChatCompletions, body)
}

// CompleteStream calls POST chat/completions with stream:true set by the
// caller in body, returning a parsed-JSON SSE iterator over each chunk.
func (ch Chat) CompleteStream(ctx context.Context, body map[string]interface{}) (ChunkIterator, error) {
	return ch.c.StreamParsed(ctx, PathChatCompletions, body)
}

// Embeddings is the embeddings/generate namespace.
type Embeddings struct{ c *Client }

// Generate calls POST embeddings/generate.
func (e Embeddings) Generate(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return e.c.Post(ctx, PathEmbeddingsGenerate, body)
}

// Images is the image/* namespace.
type Images struct{ c *Client }

// Generate calls POST image/generate.
func (im Images) Generate(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return im.c.Post(ctx, PathImageGenerate, body)
}

// Edit calls POST image/edit.
func (im Images) Edit(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return im.c.Post(ctx, PathImageEdit, body)
}

// Upscale calls POST image/upscale.
func (im Images) Upscale(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return im.c.Post(ctx, PathImageUpscale, body)
}

// Styles calls GET image/styles.
func (im Images) Styles(ctx context.Context) (interface{}, error) {
	return im.c.Get(ctx, PathImageStyles, nil)
}

// Audio is the audio/speech namespace; its response is binary, so Speech
// returns the raw body rather than decoded JSON.
type Audio struct{ c *Client }

// Speech calls POST audio/speech and returns the raw audio bytes.
func (a Audio) Speech(ctx context.Context, body map[string]interface{}) ([]byte, error) {
	raw, _, err := a.c.PostRaw(ctx, PathAudioSpeech, body)
	return raw, err
}

// Video is the async queue/poll/download namespace, the only one that
// reaches into the async job helper.
type Video struct{ c *Client }

// Queue calls POST video/queue and returns the decoded JSON response.
func (v Video) Queue(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return v.c.Post(ctx, PathVideoQueue, body)
}

// Retrieve calls POST video/retrieve for job_id.
func (v Video) Retrieve(ctx context.Context, jobID string) (interface{}, error) {
	return v.c.Post(ctx, PathVideoRetrieve, map[string]interface{}{"job_id": jobID})
}

// Quote calls POST video/quote.
func (v Video) Quote(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return v.c.Post(ctx, PathVideoQuote, body)
}

// CompleteSync calls POST video/complete, the server's own synchronous
// queue-and-wait variant, as an alternative to the client-side Complete
// poll loop below.
func (v Video) CompleteSync(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return v.c.Post(ctx, PathVideoComplete, body)
}

// Wait polls Retrieve via decodeJob until job_id reaches a terminal state.
func (v Video) Wait(ctx context.Context, jobID string, decodeJob func(interface{}) (asyncjob.Job, error), opts asyncjob.Options) (asyncjob.Job, error) {
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		raw, err := v.Retrieve(ctx, jobID)
		if err != nil {
			return asyncjob.Job{}, err
		}
		return decodeJob(raw)
	}
	return v.c.WaitForJob(ctx, jobID, retrieve, opts)
}

// Complete calls Queue, then Wait with the 900s completion timeout.
func (v Video) Complete(ctx context.Context, body map[string]interface{}, decodeJob func(interface{}) (asyncjob.Job, error), opts asyncjob.Options) (asyncjob.Job, error) {
	queued, err := v.Queue(ctx, body)
	if err != nil {
		return asyncjob.Job{}, err
	}
	job, err := decodeJob(queued)
	if err != nil {
		return asyncjob.Job{}, err
	}
	return v.c.CompleteJob(ctx, job.ID, func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		raw, err := v.Retrieve(ctx, jobID)
		if err != nil {
			return asyncjob.Job{}, err
		}
		return decodeJob(raw)
	}, opts)
}

// Download streams the binary artifact at artifactPath into destPath
// without buffering it in memory, per §4.6.
func (v Video) Download(ctx context.Context, artifactPath, destPath string) error {
	return v.c.DownloadToFile(ctx, artifactPath, destPath)
}

// Characters is the GET characters/* namespace.
type Characters struct{ c *Client }

// List calls GET characters.
func (ch Characters) List(ctx context.Context) (interface{}, error) {
	return ch.c.Get(ctx, PathCharacters, nil)
}

// Get calls GET characters/{slug}.
func (ch Characters) Get(ctx context.Context, slug string) (interface{}, error) {
	return ch.c.Get(ctx, CharacterPath(slug), nil)
}

// Keys is the api_keys/* administration namespace.
type Keys struct{ c *Client }

// List calls GET api_keys.
func (k Keys) List(ctx context.Context) (interface{}, error) {
	return k.c.Get(ctx, PathAPIKeys, nil)
}

// Create calls POST api_keys.
func (k Keys) Create(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return k.c.Post(ctx, PathAPIKeys, body)
}

// Delete calls DELETE api_keys/{id}.
func (k Keys) Delete(ctx context.Context, id string) (interface{}, error) {
	return k.c.Delete(ctx, APIKeyPath(id))
}

// GenerateWeb3Key calls POST api_keys/generate_web3_key.
func (k Keys) GenerateWeb3Key(ctx context.Context, body map[string]interface{}) (interface{}, error) {
	return k.c.Post(ctx, PathAPIKeysGenerateWeb3Key, body)
}

// RateLimits calls GET api_keys/rate_limits.
func (k Keys) RateLimits(ctx context.Context) (interface{}, error) {
	return k.c.Get(ctx, PathAPIKeysRateLimits, nil)
}

// RateLimitsLog calls GET api_keys/rate_limits/log.
func (k Keys) RateLimitsLog(ctx context.Context) (interface{}, error) {
	return k.c.Get(ctx, PathAPIKeysRateLimitsLog, nil)
}

// Billing is the billing/* namespace.
type Billing struct{ c *Client }

// Usage calls GET billing/usage.
func (b Billing) Usage(ctx context.Context) (interface{}, error) {
	return b.c.Get(ctx, PathBillingUsage, nil)
}
