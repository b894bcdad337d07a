package venice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sanix-darker/venice/internal/asyncjob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelsNamespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/models":
			_ = json.NewEncoder(w).Encode(map[string]string{"endpoint": "models"})
		case "/models/traits":
			_ = json.NewEncoder(w).Encode(map[string]string{"endpoint": "traits"})
		}
	}))
	defer srv.Close()

	c := testClient(t, srv)
	out, err := c.Models().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "models", out.(map[string]interface{})["endpoint"])

	out, err = c.Models().Traits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "traits", out.(map[string]interface{})["endpoint"])
}

func TestCharactersNamespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
	}))
	defer srv.Close()

	c := testClient(t, srv)
	out, err := c.Characters().Get(context.Background(), "athena")
	require.NoError(t, err)
	assert.Equal(t, "/characters/athena", out.(map[string]interface{})["path"])
}

func TestKeysDeleteIssuesDeleteMethod(t *testing.T) {
	var seenMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"deleted": true})
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.Keys().Delete(context.Background(), "key-123")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, seenMethod)
}

func TestVideoQueueRetrieveAndWait(t *testing.T) {
	var pollCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/video/queue":
			_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1", "state": "queued"})
		case "/video/retrieve":
			pollCount++
			state := "processing"
			if pollCount >= 2 {
				state = "completed"
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1", "state": state})
		}
	}))
	defer srv.Close()

	c := testClient(t, srv)
	decodeJob := func(raw interface{}) (asyncjob.Job, error) {
		m := raw.(map[string]interface{})
		state := asyncjob.State(m["state"].(string))
		return asyncjob.Job{ID: m["job_id"].(string), State: state}, nil
	}

	job, err := c.Video().Complete(context.Background(), map[string]interface{}{"model": "v1"}, decodeJob, asyncjob.Options{
		Sleep: func(context.Context, time.Duration) error { return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, asyncjob.StateCompleted, job.State)
	assert.Equal(t, 2, pollCount)
}

func TestVideoCompleteSyncCallsServerEndpoint(t *testing.T) {
	var seenPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1", "state": "completed"})
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.Video().CompleteSync(context.Background(), map[string]interface{}{"model": "v1"})
	require.NoError(t, err)
	assert.Equal(t, "/video/complete", seenPath)
}

func TestVideoDownloadStreamsToFile(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x02, 0x03, 0x04}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	dest := filepath.Join(t.TempDir(), "artifact.mp4")
	err := c.Video().Download(context.Background(), "video/artifact.mp4", dest)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
