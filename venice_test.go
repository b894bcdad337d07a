package venice_test

import (
	"os"
	"testing"

	venice "github.com/sanix-darker/venice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTempDir isolates Resolve from any .env file in the real working
// directory, matching internal/config's own test helper.
func withTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestNewFromAPIKeyBuildsAClient(t *testing.T) {
	withTempDir(t)
	c, err := venice.NewFromAPIKey("test-key")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.NotNil(t, c.Metrics())
}

func TestNewFailsWithoutAnyCredentialSource(t *testing.T) {
	withTempDir(t)
	_, err := venice.New(venice.Options{})
	require.Error(t, err)

	var vErr *venice.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, venice.KindConfig, vErr.Kind)
}
