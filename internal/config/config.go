// Package config resolves the transport core's Config by merging layered
// sources — explicit arguments, the process environment, a local dotenv
// file, and an optional global dotenv file — in strict precedence order.
// It also exposes the credential read/write API that the CLI collaborator
// (cmd/venice) binds commands onto; the resolver itself never touches the
// network.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	venerr "github.com/sanix-darker/venice/internal/errors"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/subosito/gotenv"
)

const (
	DefaultBaseURL            = "https://api.venice.ai/api/v1"
	DefaultTimeout            = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryBackoffFactor = 0.5
	DefaultPoolConnections    = 10
	DefaultPoolMaxSize        = 20
	LocalDotenvFile           = ".env"
	globalConfigDirName       = "venice"
	globalDotenvFile          = ".env"
	envUseGlobalConfig        = "VENICE_USE_GLOBAL_CONFIG"
)

// DefaultRetryStatusCodes is the status-code set retried by the HTTP
// engine unless overridden.
func DefaultRetryStatusCodes() map[int]bool {
	return map[int]bool{408: true, 429: true, 500: true, 502: true, 503: true, 504: true}
}

// Config is immutable after Resolve returns it.
type Config struct {
	APIKey             string
	BaseURL            string
	Timeout            time.Duration
	MaxRetries         int
	RetryBackoffFactor float64
	RetryStatusCodes   map[int]bool
	PoolConnections    int
	PoolMaxSize        int
	UseGlobalConfig    bool
}

// Options carries explicit, caller-supplied overrides. A nil field means
// "not explicitly set" so that lower-precedence sources still apply.
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

// Source resolves a single environment-style key to a string value. Each
// precedence layer (explicit args excepted, which bypass Source entirely)
// is a Source; Resolve queries them in order and takes the first hit.
type Source interface {
	Lookup(key string) (string, bool)
}

// mapSource is a Source backed by a plain string map, used for both the
// process environment and parsed dotenv files.
type mapSource map[string]string

func (m mapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// environSource reads directly from os.Getenv so tests can't leak across
// unrelated map state.
type environSource struct{}

func (environSource) Lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// dotenvSource loads a .env file once at construction time. A missing file
// is not an error — it simply never matches.
func dotenvSource(path string) mapSource {
	f, err := os.Open(path)
	if err != nil {
		return mapSource{}
	}
	defer f.Close()

	vals, err := gotenv.StrictParse(f)
	if err != nil {
		return mapSource{}
	}
	out := make(mapSource, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out
}

// truthy literals recognized for VENICE_USE_GLOBAL_CONFIG, per §4.1.
var truthyLiterals = map[string]bool{"1": true, "true": true, "TRUE": true, "yes": true, "YES": true}

// Resolve merges Options, the environment, the local dotenv file, and
// (gated by VENICE_USE_GLOBAL_CONFIG) the global dotenv file into a Config.
// Precedence, highest first: explicit > env > local dotenv > global dotenv.
func Resolve(opts Options) (*Config, error) {
	envSrc := environSource{}
	localSrc := dotenvSource(LocalDotenvFile)

	useGlobal := resolveUseGlobalConfig(opts, envSrc, localSrc)

	// Precedence, highest first: env > local dotenv > global dotenv
	// (explicit Options are checked ahead of lookup by each resolveX
	// function). The global dotenv, if enabled, is parsed once here and
	// reused for every field lookup below rather than reopened per key.
	sources := []Source{envSrc, localSrc}
	if useGlobal {
		if path, err := GlobalDotenvPath(); err == nil {
			sources = append(sources, dotenvSource(path))
		}
	}
	lookup := func(key string) (string, bool) {
		for _, src := range sources {
			if v, ok := src.Lookup(key); ok {
				return v, true
			}
		}
		return "", false
	}

	cfg := &Config{
		BaseURL:            DefaultBaseURL,
		Timeout:            DefaultTimeout,
		MaxRetries:         DefaultMaxRetries,
		RetryBackoffFactor: DefaultRetryBackoffFactor,
		RetryStatusCodes:   DefaultRetryStatusCodes(),
		PoolConnections:    DefaultPoolConnections,
		PoolMaxSize:        DefaultPoolMaxSize,
		UseGlobalConfig:    useGlobal,
	}

	if err := resolveAPIKey(cfg, opts, lookup); err != nil {
		return nil, err
	}
	if err := resolveBaseURL(cfg, opts, lookup); err != nil {
		return nil, err
	}
	if err := resolveTimeout(cfg, opts, lookup); err != nil {
		return nil, err
	}
	if err := resolveMaxRetries(cfg, opts, lookup); err != nil {
		return nil, err
	}
	if err := resolveBackoffFactor(cfg, opts, lookup); err != nil {
		return nil, err
	}
	if err := resolveRetryStatusCodes(cfg, opts, lookup); err != nil {
		return nil, err
	}
	if err := resolvePoolConnections(cfg, opts, lookup); err != nil {
		return nil, err
	}
	if err := resolvePoolMaxSize(cfg, opts, lookup); err != nil {
		return nil, err
	}

	return cfg, nil
}

func resolveUseGlobalConfig(opts Options, envSrc environSource, localSrc mapSource) bool {
	if opts.UseGlobalConfig != nil {
		return *opts.UseGlobalConfig
	}
	if v, ok := envSrc.Lookup(envUseGlobalConfig); ok {
		return truthyLiterals[v]
	}
	if v, ok := localSrc.Lookup(envUseGlobalConfig); ok {
		return truthyLiterals[v]
	}
	return false
}

func resolveAPIKey(cfg *Config, opts Options, lookup func(string) (string, bool)) error {
	if opts.APIKey != nil && *opts.APIKey != "" {
		cfg.APIKey = *opts.APIKey
		return nil
	}
	if v, ok := lookup("VENICE_API_KEY"); ok && v != "" {
		cfg.APIKey = v
		return nil
	}
	return venerr.New(venerr.KindConfig, "api_key is required: set it explicitly, via VENICE_API_KEY, or in a dotenv file", nil)
}

func resolveBaseURL(cfg *Config, opts Options, lookup func(string) (string, bool)) error {
	raw := DefaultBaseURL
	if v, ok := lookup("VENICE_BASE_URL"); ok && v != "" {
		raw = v
	}
	if opts.BaseURL != nil && *opts.BaseURL != "" {
		raw = *opts.BaseURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return venerr.New(venerr.KindConfig, fmt.Sprintf("base_url %q must be an absolute http(s) URL", raw), nil)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return venerr.New(venerr.KindConfig, fmt.Sprintf("base_url %q must use http or https", raw), nil)
	}
	cfg.BaseURL = raw
	return nil
}

func resolveTimeout(cfg *Config, opts Options, lookup func(string) (string, bool)) error {
	if opts.Timeout != nil {
		return setPositiveDuration(cfg, *opts.Timeout)
	}
	if v, ok := lookup("VENICE_TIMEOUT"); ok && v != "" {
		seconds, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return venerr.New(venerr.KindConfig, fmt.Sprintf("VENICE_TIMEOUT %q is not a number of seconds", v), nil)
		}
		return setPositiveDuration(cfg, time.Duration(seconds*float64(time.Second)))
	}
	return nil
}

func setPositiveDuration(cfg *Config, d time.Duration) error {
	if d <= 0 {
		return venerr.New(venerr.KindConfig, "timeout must be positive", nil)
	}
	cfg.Timeout = d
	return nil
}

func resolveMaxRetries(cfg *Config, opts Options, lookup func(string) (string, bool)) error {
	if opts.MaxRetries != nil {
		return setNonNegativeInt(&cfg.MaxRetries, *opts.MaxRetries, "max_retries")
	}
	if v, ok := lookup("VENICE_MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return venerr.New(venerr.KindConfig, fmt.Sprintf("VENICE_MAX_RETRIES %q is not an integer", v), nil)
		}
		return setNonNegativeInt(&cfg.MaxRetries, n, "max_retries")
	}
	return nil
}

func resolveBackoffFactor(cfg *Config, opts Options, lookup func(string) (string, bool)) error {
	if opts.RetryBackoffFactor != nil {
		return setNonNegativeFloat(&cfg.RetryBackoffFactor, *opts.RetryBackoffFactor, "retry_backoff_factor")
	}
	if v, ok := lookup("VENICE_RETRY_BACKOFF_FACTOR"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return venerr.New(venerr.KindConfig, fmt.Sprintf("VENICE_RETRY_BACKOFF_FACTOR %q is not a number", v), nil)
		}
		return setNonNegativeFloat(&cfg.RetryBackoffFactor, f, "retry_backoff_factor")
	}
	return nil
}

func resolveRetryStatusCodes(cfg *Config, opts Options, lookup func(string) (string, bool)) error {
	if opts.RetryStatusCodes != nil {
		cfg.RetryStatusCodes = opts.RetryStatusCodes
		return nil
	}
	if v, ok := lookup("VENICE_RETRY_STATUS_CODES"); ok && v != "" {
		codes := map[int]bool{}
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return venerr.New(venerr.KindConfig, fmt.Sprintf("VENICE_RETRY_STATUS_CODES %q contains a non-integer", v), nil)
			}
			codes[n] = true
		}
		if len(codes) > 0 {
			cfg.RetryStatusCodes = codes
		}
	}
	return nil
}

func resolvePoolConnections(cfg *Config, opts Options, lookup func(string) (string, bool)) error {
	if opts.PoolConnections != nil {
		return setNonNegativeInt(&cfg.PoolConnections, *opts.PoolConnections, "pool_connections")
	}
	if v, ok := lookup("VENICE_POOL_CONNECTIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return venerr.New(venerr.KindConfig, fmt.Sprintf("VENICE_POOL_CONNECTIONS %q is not an integer", v), nil)
		}
		return setNonNegativeInt(&cfg.PoolConnections, n, "pool_connections")
	}
	return nil
}

func resolvePoolMaxSize(cfg *Config, opts Options, lookup func(string) (string, bool)) error {
	if opts.PoolMaxSize != nil {
		return setNonNegativeInt(&cfg.PoolMaxSize, *opts.PoolMaxSize, "pool_maxsize")
	}
	if v, ok := lookup("VENICE_POOL_MAXSIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return venerr.New(venerr.KindConfig, fmt.Sprintf("VENICE_POOL_MAXSIZE %q is not an integer", v), nil)
		}
		return setNonNegativeInt(&cfg.PoolMaxSize, n, "pool_maxsize")
	}
	return nil
}

func setNonNegativeInt(field *int, v int, name string) error {
	if v < 0 {
		return venerr.New(venerr.KindConfig, fmt.Sprintf("%s must be non-negative", name), nil)
	}
	*field = v
	return nil
}

func setNonNegativeFloat(field *float64, v float64, name string) error {
	if v < 0 {
		return venerr.New(venerr.KindConfig, fmt.Sprintf("%s must be non-negative", name), nil)
	}
	*field = v
	return nil
}

// GlobalDotenvPath returns $XDG_CONFIG_HOME/venice/.env, falling back to
// <home>/.config/venice/.env (via go-homedir, the teacher's own
// home-resolution idiom) when XDG_CONFIG_HOME is unset.
func GlobalDotenvPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, globalConfigDirName, globalDotenvFile), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", globalConfigDirName, globalDotenvFile), nil
}

// ReadCredential reads key from the local or global dotenv file, per the
// credential API exposed to the CLI collaborator (§6).
func ReadCredential(global bool, key string) (string, bool, error) {
	path, err := credentialPath(global)
	if err != nil {
		return "", false, err
	}
	src := dotenvSource(path)
	v, ok := src.Lookup(key)
	return v, ok, nil
}

// WriteCredential sets key=value in the local or global dotenv file,
// creating parent directories as needed and preserving any other keys
// already present in the file.
func WriteCredential(global bool, key, value string) error {
	path, err := credentialPath(global)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return venerr.Wrap(venerr.KindConfig, "failed to create config directory", err, map[string]string{"path": filepath.Dir(path)})
	}

	existing := dotenvSource(path)
	existing[key] = value

	keys := make([]string, 0, len(existing))
	for k := range existing {
		keys = append(keys, k)
	}
	// Deterministic output: sorted keys rather than map iteration order.
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, existing[k])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return venerr.Wrap(venerr.KindConfig, "failed to write credential file", err, map[string]string{"path": path})
	}
	return nil
}

func credentialPath(global bool) (string, error) {
	if global {
		return GlobalDotenvPath()
	}
	return LocalDotenvFile, nil
}
