// Package config provides commitgen configuration with a defined load order:
// CLI flags > environment variables > repo config > global config > defaults.
//
// Paths:
//   - Repo: .commitgen.toml (at the repo root)
//   - Global: XDG config dir, e.g. ~/.config/commitgen/config.toml (see os.UserConfigDir)
//
// Environment variables (override config files when set):
//   - COMMITGEN_PROVIDER (ollama or openai), COMMITGEN_MODEL, COMMITGEN_API_KEY,
//   - COMMITGEN_OLLAMA_BASE_URL, COMMITGEN_FORMAT (conventional, simple, detailed),
//   - COMMITGEN_MAX_LENGTH, COMMITGEN_MAX_DIFF_LENGTH,
//   - COMMITGEN_CONTEXT_LIMIT, COMMITGEN_WARN_THRESHOLD,
//   - COMMITGEN_TEMPERATURE, COMMITGEN_NUM_CTX,
//   - COMMITGEN_TIMEOUT (Go duration string or integer seconds).
//
// The API key may also live in the OS keychain (see keyring.go); resolution
// order is config/env value first, then OPENAI_API_KEY, then keychain.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"commitgen/cli/internal/erruser"
	"commitgen/cli/internal/prompt"
)

// Provider names the generation backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// Config holds all commitgen configuration. A zero Model means "use the
// provider's default model" (see EffectiveModel).
type Config struct {
	Provider      Provider      `toml:"provider"`
	Model         string        `toml:"model"`
	APIKey        string        `toml:"api_key"`
	OllamaBaseURL string        `toml:"ollama_base_url"`
	Format        prompt.Format `toml:"format"`
	// MaxLength is the first-line character budget given to the model and
	// enforced by post-processing. The validator's 50/72 policy is fixed
	// and independent of this value.
	MaxLength     int           `toml:"max_length"`
	MaxDiffLength int           `toml:"max_diff_length"`
	ContextLimit  int           `toml:"context_limit"`
	WarnThreshold float64       `toml:"warn_threshold"`
	Temperature   float64       `toml:"temperature"`
	NumCtx        int           `toml:"num_ctx"`
	// Timeout bounds the backend round trip. The pipeline itself imposes no
	// other deadline; increase this at your own discretion for big diffs on
	// slow local models.
	Timeout time.Duration `toml:"timeout"`
}

// Overrides represents optional CLI flag overrides. Non-nil pointer means
// "override with this value".
type Overrides struct {
	Provider      *string
	Model         *string
	APIKey        *string
	OllamaBaseURL *string
	Format        *string
	MaxLength     *int
	MaxDiffLength *int
	ContextLimit  *int
	WarnThreshold *float64
	Temperature   *float64
	NumCtx        *int
	Timeout       *time.Duration
}

// LoadOptions configures Load. All fields are optional.
type LoadOptions struct {
	// RepoRoot is the repository root; if set, repo config is RepoRoot/.commitgen.toml.
	RepoRoot string
	// GlobalConfigPath is the global config file path; if empty, the XDG path is used.
	GlobalConfigPath string
	// Env is the environment key=value slice; if nil, os.Environ() is used.
	Env []string
	// Overrides are applied last (highest precedence).
	Overrides *Overrides
}

const (
	_defaultProvider      = ProviderOllama
	_defaultOllamaModel   = "qwen2.5-coder:7b"
	_defaultOpenAIModel   = "gpt-4o-mini"
	_defaultOllamaBaseURL = "http://localhost:11434"
	_defaultFormat        = prompt.FormatConventional
	_defaultContextLimit  = 8192
	_defaultWarnThreshold = 0.9
	_defaultTemperature   = 0.2
	_defaultNumCtx        = 8192
	_defaultTimeout       = 5 * time.Minute
)

// RepoConfigName is the per-repository config file, looked up at the repo root.
const RepoConfigName = ".commitgen.toml"

// errIntOverflow is returned when an int64 value does not fit in int (e.g. on 32-bit or huge TOML/env values).
var errIntOverflow = errors.New("value out of range for int")

// int64ToInt converts n to int. It returns an error if n is outside the range of int.
func int64ToInt(n int64) (int, error) {
	if n < int64(math.MinInt) || n > int64(math.MaxInt) {
		return 0, errIntOverflow
	}
	return int(n), nil
}

// DefaultConfig returns the default configuration (no I/O).
func DefaultConfig() Config {
	return Config{
		Provider:      _defaultProvider,
		Model:         "",
		OllamaBaseURL: _defaultOllamaBaseURL,
		Format:        _defaultFormat,
		MaxLength:     prompt.DefaultMaxLength,
		MaxDiffLength: prompt.DefaultMaxDiffLength,
		ContextLimit:  _defaultContextLimit,
		WarnThreshold: _defaultWarnThreshold,
		Temperature:   _defaultTemperature,
		NumCtx:        _defaultNumCtx,
		Timeout:       _defaultTimeout,
	}
}

// EffectiveModel returns the configured model, or the active provider's
// default when unset.
func (c Config) EffectiveModel() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderOpenAI {
		return _defaultOpenAIModel
	}
	return _defaultOllamaModel
}

// GenOptions returns the generation options derived from the config.
func (c Config) GenOptions() prompt.Options {
	return prompt.Options{
		Format:        c.Format,
		MaxLength:     c.MaxLength,
		MaxDiffLength: c.MaxDiffLength,
	}
}

// GlobalConfigPath returns the XDG path of the global config file.
func GlobalConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", erruser.New("Could not determine config directory.", err)
	}
	return filepath.Join(dir, "commitgen", "config.toml"), nil
}

// Load loads configuration with precedence: defaults < global file < repo file < env < overrides.
// Missing config files are ignored. Invalid TOML or invalid env values return an error.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	cfg := DefaultConfig()

	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		var err error
		globalPath, err = GlobalConfigPath()
		if err != nil {
			return nil, err
		}
	}
	if err := mergeFile(&cfg, globalPath); err != nil {
		return nil, err
	}

	if opts.RepoRoot != "" {
		if err := mergeFile(&cfg, filepath.Join(opts.RepoRoot, RepoConfigName)); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg, opts.Env); err != nil {
		return nil, err
	}

	applyOverrides(&cfg, opts.Overrides)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeFile reads path and merges into cfg. Only overwrites fields that are
// present and non-zero in the file (so explicit empty/zero in TOML keeps previous value).
// Missing file is skipped (no error).
func mergeFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return erruser.New("Invalid configuration file.", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return erruser.New("Could not read configuration file.", err)
	}
	var file struct {
		Provider      *string  `toml:"provider"`
		Model         *string  `toml:"model"`
		APIKey        *string  `toml:"api_key"`
		OllamaBaseURL *string  `toml:"ollama_base_url"`
		Format        *string  `toml:"format"`
		MaxLength     *int64   `toml:"max_length"`
		MaxDiffLength *int64   `toml:"max_diff_length"`
		ContextLimit  *int64   `toml:"context_limit"`
		WarnThreshold *float64 `toml:"warn_threshold"`
		Temperature   *float64 `toml:"temperature"`
		NumCtx        *int64   `toml:"num_ctx"`
		Timeout       *string  `toml:"timeout"`
	}
	if _, err := toml.Decode(string(data), &file); err != nil {
		return erruser.New("Invalid configuration in "+filepath.Base(path)+".", err)
	}
	if file.Provider != nil && *file.Provider != "" {
		cfg.Provider = Provider(strings.ToLower(strings.TrimSpace(*file.Provider)))
	}
	if file.Model != nil && *file.Model != "" {
		cfg.Model = *file.Model
	}
	if file.APIKey != nil && *file.APIKey != "" {
		cfg.APIKey = *file.APIKey
	}
	if file.OllamaBaseURL != nil && *file.OllamaBaseURL != "" {
		cfg.OllamaBaseURL = *file.OllamaBaseURL
	}
	if file.Format != nil && *file.Format != "" {
		cfg.Format = prompt.Format(strings.ToLower(strings.TrimSpace(*file.Format)))
	}
	if file.MaxLength != nil && *file.MaxLength > 0 {
		v, err := int64ToInt(*file.MaxLength)
		if err != nil {
			return erruser.New("Configuration max_length value out of range.", err)
		}
		cfg.MaxLength = v
	}
	if file.MaxDiffLength != nil && *file.MaxDiffLength > 0 {
		v, err := int64ToInt(*file.MaxDiffLength)
		if err != nil {
			return erruser.New("Configuration max_diff_length value out of range.", err)
		}
		cfg.MaxDiffLength = v
	}
	if file.ContextLimit != nil && *file.ContextLimit > 0 {
		v, err := int64ToInt(*file.ContextLimit)
		if err != nil {
			return erruser.New("Configuration context_limit value out of range.", err)
		}
		cfg.ContextLimit = v
	}
	if file.WarnThreshold != nil && *file.WarnThreshold >= 0 {
		cfg.WarnThreshold = *file.WarnThreshold
	}
	if file.Temperature != nil && *file.Temperature >= 0 && *file.Temperature <= 2 {
		cfg.Temperature = *file.Temperature
	}
	if file.NumCtx != nil && *file.NumCtx > 0 {
		v, err := int64ToInt(*file.NumCtx)
		if err != nil {
			return erruser.New("Configuration num_ctx value out of range.", err)
		}
		cfg.NumCtx = v
	}
	if file.Timeout != nil && *file.Timeout != "" {
		d, err := parseDuration(*file.Timeout)
		if err != nil {
			return erruser.New("Configuration timeout is invalid.", err)
		}
		cfg.Timeout = d
	}
	return nil
}

// applyEnv applies COMMITGEN_* variables from env to cfg. Invalid numeric
// values return an error; empty values are ignored.
func applyEnv(cfg *Config, env []string) error {
	get := func(key string) string {
		prefix := key + "="
		for i := len(env) - 1; i >= 0; i-- {
			if strings.HasPrefix(env[i], prefix) {
				return env[i][len(prefix):]
			}
		}
		return ""
	}
	if v := get("COMMITGEN_PROVIDER"); v != "" {
		cfg.Provider = Provider(strings.ToLower(strings.TrimSpace(v)))
	}
	if v := get("COMMITGEN_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := get("COMMITGEN_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := get("COMMITGEN_OLLAMA_BASE_URL"); v != "" {
		cfg.OllamaBaseURL = v
	}
	if v := get("COMMITGEN_FORMAT"); v != "" {
		cfg.Format = prompt.Format(strings.ToLower(strings.TrimSpace(v)))
	}
	intKeys := []struct {
		env  string
		dst  *int
		name string
	}{
		{"COMMITGEN_MAX_LENGTH", &cfg.MaxLength, "max length"},
		{"COMMITGEN_MAX_DIFF_LENGTH", &cfg.MaxDiffLength, "max diff length"},
		{"COMMITGEN_CONTEXT_LIMIT", &cfg.ContextLimit, "context limit"},
		{"COMMITGEN_NUM_CTX", &cfg.NumCtx, "num_ctx"},
	}
	for _, k := range intKeys {
		v := get(k.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return erruser.New(fmt.Sprintf("Invalid %s in %s.", k.name, k.env), err)
		}
		*k.dst = n
	}
	if v := get("COMMITGEN_WARN_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || f < 0 {
			return erruser.New("Invalid warn threshold in COMMITGEN_WARN_THRESHOLD.", err)
		}
		cfg.WarnThreshold = f
	}
	if v := get("COMMITGEN_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || f < 0 || f > 2 {
			return erruser.New("Invalid temperature in COMMITGEN_TEMPERATURE.", err)
		}
		cfg.Temperature = f
	}
	if v := get("COMMITGEN_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return erruser.New("Invalid timeout in COMMITGEN_TIMEOUT.", err)
		}
		cfg.Timeout = d
	}
	return nil
}

// parseDuration accepts a Go duration string ("90s", "2m") or a bare
// integer meaning seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o == nil {
		return
	}
	if o.Provider != nil && *o.Provider != "" {
		cfg.Provider = Provider(strings.ToLower(strings.TrimSpace(*o.Provider)))
	}
	if o.Model != nil && *o.Model != "" {
		cfg.Model = *o.Model
	}
	if o.APIKey != nil && *o.APIKey != "" {
		cfg.APIKey = *o.APIKey
	}
	if o.OllamaBaseURL != nil && *o.OllamaBaseURL != "" {
		cfg.OllamaBaseURL = *o.OllamaBaseURL
	}
	if o.Format != nil && *o.Format != "" {
		cfg.Format = prompt.Format(strings.ToLower(strings.TrimSpace(*o.Format)))
	}
	if o.MaxLength != nil && *o.MaxLength > 0 {
		cfg.MaxLength = *o.MaxLength
	}
	if o.MaxDiffLength != nil && *o.MaxDiffLength > 0 {
		cfg.MaxDiffLength = *o.MaxDiffLength
	}
	if o.ContextLimit != nil && *o.ContextLimit > 0 {
		cfg.ContextLimit = *o.ContextLimit
	}
	if o.WarnThreshold != nil && *o.WarnThreshold >= 0 {
		cfg.WarnThreshold = *o.WarnThreshold
	}
	if o.Temperature != nil && *o.Temperature >= 0 {
		cfg.Temperature = *o.Temperature
	}
	if o.NumCtx != nil && *o.NumCtx > 0 {
		cfg.NumCtx = *o.NumCtx
	}
	if o.Timeout != nil && *o.Timeout > 0 {
		cfg.Timeout = *o.Timeout
	}
}

// validate rejects values no layer should have produced: unknown provider
// or format names. Numeric ranges are already enforced per-layer.
func validate(cfg *Config) error {
	switch cfg.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return erruser.New("Invalid provider; use ollama or openai.", nil)
	}
	if !cfg.Format.Valid() {
		return erruser.New("Invalid format; use conventional, simple, or detailed.", nil)
	}
	return nil
}
