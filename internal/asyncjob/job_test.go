package asyncjob_test

import (
	"context"
	"testing"
	"time"

	"github.com/sanix-darker/venice/internal/asyncjob"
	venerr "github.com/sanix-darker/venice/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep() func(context.Context, time.Duration) error {
	return func(context.Context, time.Duration) error { return nil }
}

func TestWaitReturnsOnFirstTerminalState(t *testing.T) {
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		return asyncjob.Job{ID: jobID, State: asyncjob.StateCompleted, ArtifactURL: "https://cdn/x.mp4"}, nil
	}
	job, err := asyncjob.Wait(context.Background(), "job-1", retrieve, asyncjob.Options{Sleep: noSleep()})
	require.NoError(t, err)
	assert.True(t, job.Done())
	assert.Equal(t, asyncjob.StateCompleted, job.State)
}

func TestWaitPollsUntilTerminal(t *testing.T) {
	var calls int
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		calls++
		if calls < 3 {
			return asyncjob.Job{ID: jobID, State: asyncjob.StateProcessing}, nil
		}
		return asyncjob.Job{ID: jobID, State: asyncjob.StateCompleted}, nil
	}
	job, err := asyncjob.Wait(context.Background(), "job-1", retrieve, asyncjob.Options{Sleep: noSleep()})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, job.Done())
}

func TestWaitCallsOnUpdateOnObservedChangeOnly(t *testing.T) {
	var calls int
	var updates []asyncjob.State
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		calls++
		switch calls {
		case 1, 2:
			return asyncjob.Job{ID: jobID, State: asyncjob.StateQueued}, nil // same state twice, one update
		case 3:
			return asyncjob.Job{ID: jobID, State: asyncjob.StateProcessing}, nil
		default:
			return asyncjob.Job{ID: jobID, State: asyncjob.StateCompleted}, nil
		}
	}
	_, err := asyncjob.Wait(context.Background(), "job-1", retrieve, asyncjob.Options{
		Sleep:    noSleep(),
		OnUpdate: func(job asyncjob.Job) { updates = append(updates, job.State) },
	})
	require.NoError(t, err)
	assert.Equal(t, []asyncjob.State{asyncjob.StateQueued, asyncjob.StateProcessing, asyncjob.StateCompleted}, updates)
}

func TestWaitTolerates3ConsecutiveConnectionErrors(t *testing.T) {
	var calls int
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		calls++
		if calls <= 3 {
			return asyncjob.Job{}, venerr.New(venerr.KindConnection, "dial failed", nil)
		}
		return asyncjob.Job{ID: jobID, State: asyncjob.StateCompleted}, nil
	}
	job, err := asyncjob.Wait(context.Background(), "job-1", retrieve, asyncjob.Options{Sleep: noSleep()})
	require.NoError(t, err)
	assert.True(t, job.Done())
	assert.Equal(t, 4, calls)
}

func TestWaitSurfacesAfterTooManyConsecutiveErrors(t *testing.T) {
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		return asyncjob.Job{}, venerr.New(venerr.KindServerError, "down", nil)
	}
	_, err := asyncjob.Wait(context.Background(), "job-1", retrieve, asyncjob.Options{Sleep: noSleep()})
	require.Error(t, err)

	var vErr *venerr.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, venerr.KindServerError, vErr.Kind)
}

func TestWaitSurfacesNonTolerableErrorImmediately(t *testing.T) {
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		return asyncjob.Job{}, venerr.New(venerr.KindUnauthorized, "bad key", nil)
	}
	_, err := asyncjob.Wait(context.Background(), "job-1", retrieve, asyncjob.Options{Sleep: noSleep()})
	require.Error(t, err)

	var vErr *venerr.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, venerr.KindUnauthorized, vErr.Kind)
}

func TestWaitRespectsMaxWait(t *testing.T) {
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		return asyncjob.Job{ID: jobID, State: asyncjob.StateProcessing}, nil
	}
	_, err := asyncjob.Wait(context.Background(), "job-1", retrieve, asyncjob.Options{
		Sleep:   noSleep(),
		MaxWait: 10 * time.Millisecond,
	})
	require.Error(t, err)

	var vErr *venerr.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, venerr.KindTimeout, vErr.Kind)
}

func TestCompleteDefaultsTo900sMaxWait(t *testing.T) {
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		return asyncjob.Job{ID: jobID, State: asyncjob.StateCompleted}, nil
	}
	job, err := asyncjob.Complete(context.Background(), "job-1", retrieve, asyncjob.Options{Sleep: noSleep()})
	require.NoError(t, err)
	assert.True(t, job.Done())
}

func TestWaitHonorsRateLimitRetryAfterAsNextDelay(t *testing.T) {
	var delays []time.Duration
	var calls int
	retrieve := func(ctx context.Context, jobID string) (asyncjob.Job, error) {
		calls++
		if calls == 1 {
			return asyncjob.Job{}, venerr.New(venerr.KindRateLimited, "slow down", map[string]string{"retry_after": "7"})
		}
		return asyncjob.Job{ID: jobID, State: asyncjob.StateCompleted}, nil
	}
	_, err := asyncjob.Wait(context.Background(), "job-1", retrieve, asyncjob.Options{
		Sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	})
	require.NoError(t, err)
	require.Len(t, delays, 1)
	assert.Equal(t, 7*time.Second, delays[0])
}
