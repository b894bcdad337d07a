// Package asyncjob implements the queue/retrieve/wait/complete polling loop
// for long-running video generation jobs. The wait loop structurally
// follows vessel-api-vesselapi-go's Iterator[T] lazy-fetch pattern (fetch /
// done / err / started driving Next()), generalized from "fetch next page"
// to "fetch next state," combined with the teacher's WithRetry generic for
// bounded poll-failure tolerance.
package asyncjob

import (
	"context"
	"time"

	venerr "github.com/sanix-darker/venice/internal/errors"
)

// State is a Job's lifecycle state.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

func (s State) terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is an opaque async video-generation record. Terminal transitions are
// one-way: once observed as completed/failed, it is never revived.
type Job struct {
	ID       string
	State    State
	Progress *int // 0-100, optional

	ArtifactURL string
	Metadata    map[string]interface{}

	FailureCode    string
	FailureMessage string
}

// Done reports whether Job has reached a terminal state.
func (j Job) Done() bool {
	return j.State.terminal()
}

const (
	DefaultPollInterval = 5 * time.Second
	DefaultCompleteWait = 900 * time.Second
	maxConsecutiveFails = 3
)

// RetrieveFunc fetches the current state of job_id from the API.
type RetrieveFunc func(ctx context.Context, jobID string) (Job, error)

// Options configures a Wait call.
type Options struct {
	PollInterval time.Duration          // default DefaultPollInterval
	MaxWait      time.Duration          // 0 = no timeout
	OnUpdate     func(job Job)          // invoked on every observed transition/progress change
	Sleep        func(context.Context, time.Duration) error
}

// Wait polls retrieve every PollInterval until job_id reaches a terminal
// state or cumulative elapsed time exceeds MaxWait. Retrieve errors of kind
// ConnectionError or ServerError are swallowed up to maxConsecutiveFails in
// a row, after which they are surfaced. RateLimited errors respect
// Retry-After for the next delay (carried in the error's context).
func Wait(ctx context.Context, jobID string, retrieve RetrieveFunc, opts Options) (Job, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var last Job
	var consecutiveFails int
	start := time.Now()

	for {
		job, err := retrieve(ctx, jobID)
		if err != nil {
			switch {
			case isRateLimited(err):
				// Not counted against the consecutive-failure budget: the
				// server told us to slow down, not that it's failing.
			case shouldTolerate(err) && consecutiveFails < maxConsecutiveFails:
				consecutiveFails++
			default:
				return last, err
			}
		} else {
			consecutiveFails = 0
			if observedChange(last, job) && opts.OnUpdate != nil {
				opts.OnUpdate(job)
			}
			last = job
			if last.Done() {
				return last, nil
			}
		}

		if opts.MaxWait > 0 && time.Since(start) >= opts.MaxWait {
			return last, venerr.New(venerr.KindTimeout, "wait exceeded max_wait before the job reached a terminal state", map[string]string{"job_id": jobID})
		}

		delay := interval
		if err != nil {
			if rateLimitDelay, ok := retryAfterDelay(err); ok {
				delay = rateLimitDelay
			}
		}
		if err := sleep(ctx, delay); err != nil {
			return last, venerr.Wrap(venerr.KindConnection, "wait canceled while polling", err, map[string]string{"job_id": jobID})
		}
	}
}

// Complete is Queue (performed by the caller) followed by Wait with the
// larger default timeout (900s) unless overridden.
func Complete(ctx context.Context, jobID string, retrieve RetrieveFunc, opts Options) (Job, error) {
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultCompleteWait
	}
	return Wait(ctx, jobID, retrieve, opts)
}

func observedChange(prev, next Job) bool {
	if prev.ID == "" {
		return true
	}
	if prev.State != next.State {
		return true
	}
	if !intPtrEqual(prev.Progress, next.Progress) {
		return true
	}
	return false
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func shouldTolerate(err error) bool {
	e, ok := err.(*venerr.Error)
	if !ok {
		return false
	}
	return e.Kind == venerr.KindConnection || e.Kind == venerr.KindServerError
}

func isRateLimited(err error) bool {
	e, ok := err.(*venerr.Error)
	return ok && e.Kind == venerr.KindRateLimited
}

func retryAfterDelay(err error) (time.Duration, bool) {
	e, ok := err.(*venerr.Error)
	if !ok || e.Kind != venerr.KindRateLimited {
		return 0, false
	}
	v, ok := e.Context["retry_after"]
	if !ok {
		return 0, false
	}
	seconds := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0, false
		}
		seconds = seconds*10 + int(c-'0')
	}
	return time.Duration(seconds) * time.Second, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
