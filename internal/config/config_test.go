package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sanix-darker/venice/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return dir
}

func TestResolveRequiresAPIKey(t *testing.T) {
	withTempDir(t)
	_, err := config.Resolve(config.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestResolveExplicitAPIKeyWins(t *testing.T) {
	withTempDir(t)
	t.Setenv("VENICE_API_KEY", "env-key")

	explicit := "explicit-key"
	cfg, err := config.Resolve(config.Options{APIKey: &explicit})
	require.NoError(t, err)
	assert.Equal(t, "explicit-key", cfg.APIKey)
}

func TestResolveEnvBeatsLocalDotenv(t *testing.T) {
	dir := withTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.LocalDotenvFile), []byte("VENICE_API_KEY=dotenv-key\n"), 0o600))
	t.Setenv("VENICE_API_KEY", "env-key")

	cfg, err := config.Resolve(config.Options{})
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestResolveFallsBackToLocalDotenv(t *testing.T) {
	dir := withTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.LocalDotenvFile), []byte("VENICE_API_KEY=dotenv-key\n"), 0o600))

	cfg, err := config.Resolve(config.Options{})
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.APIKey)
}

func TestResolveDefaults(t *testing.T) {
	withTempDir(t)
	key := "k"
	cfg, err := config.Resolve(config.Options{APIKey: &key})
	require.NoError(t, err)

	assert.Equal(t, config.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, config.DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, config.DefaultRetryBackoffFactor, cfg.RetryBackoffFactor)
	assert.True(t, cfg.RetryStatusCodes[429])
	assert.True(t, cfg.RetryStatusCodes[503])
	assert.False(t, cfg.RetryStatusCodes[400])
}

func TestResolveRejectsInvalidBaseURL(t *testing.T) {
	withTempDir(t)
	key := "k"
	badURL := "not-a-url"
	_, err := config.Resolve(config.Options{APIKey: &key, BaseURL: &badURL})
	require.Error(t, err)
}

func TestResolveRejectsNonPositiveTimeout(t *testing.T) {
	withTempDir(t)
	key := "k"
	zero := time.Duration(0)
	_, err := config.Resolve(config.Options{APIKey: &key, Timeout: &zero})
	require.Error(t, err)
}

func TestUseGlobalConfigTruthyLiterals(t *testing.T) {
	withTempDir(t)
	key := "k"
	t.Setenv("VENICE_USE_GLOBAL_CONFIG", "YES")
	cfg, err := config.Resolve(config.Options{APIKey: &key})
	require.NoError(t, err)
	assert.True(t, cfg.UseGlobalConfig)
}

func TestWriteAndReadCredentialRoundTrip(t *testing.T) {
	withTempDir(t)
	require.NoError(t, config.WriteCredential(false, "VENICE_API_KEY", "abc123"))

	v, ok, err := config.ReadCredential(false, "VENICE_API_KEY")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", v)
}

func TestWriteCredentialPreservesOtherKeys(t *testing.T) {
	dir := withTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.LocalDotenvFile), []byte("OTHER_KEY=keep-me\n"), 0o600))

	require.NoError(t, config.WriteCredential(false, "VENICE_API_KEY", "new-value"))

	other, ok, err := config.ReadCredential(false, "OTHER_KEY")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "keep-me", other)
}

func TestReadCredentialMissingFileIsNotAnError(t *testing.T) {
	withTempDir(t)
	_, ok, err := config.ReadCredential(false, "VENICE_API_KEY")
	require.NoError(t, err)
	assert.False(t, ok)
}
