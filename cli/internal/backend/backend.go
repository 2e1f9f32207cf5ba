// Package backend abstracts the text-generation service behind a single
// generate capability and builds the concrete provider from configuration.
// The pipeline never knows which provider is active.
package backend

import (
	"context"
	"fmt"
	"net/http"

	"commitgen/cli/internal/config"
	"commitgen/cli/internal/erruser"
	"commitgen/cli/internal/ollama"
	"commitgen/cli/internal/openai"
)

// system frames every generation request; the task-specific content is the
// built prompt.
const system = "You generate git commit messages from repository changes. Output only the commit message, no explanation."

// Backend turns a prompt into candidate commit message text. Implementations
// do not retry; a failure is final for the invocation.
type Backend interface {
	Generate(ctx context.Context, promptText string) (string, error)
	Name() string
}

// Error is a backend failure carrying the provider identity for display.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds the configured provider. For OpenAI, the API key is resolved
// from config, environment, or the OS keychain; a missing key is an error
// here, before any pipeline work happens.
func New(cfg *config.Config) (Backend, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		client := ollama.NewClient(cfg.OllamaBaseURL, &http.Client{Timeout: cfg.Timeout})
		return &ollamaBackend{
			client: client,
			model:  cfg.EffectiveModel(),
			opts: &ollama.GenerateOptions{
				Temperature: cfg.Temperature,
				NumCtx:      cfg.NumCtx,
			},
		}, nil
	case config.ProviderOpenAI:
		key, err := cfg.ResolveAPIKey()
		if err != nil {
			return nil, err
		}
		if key == "" {
			return nil, erruser.New("No OpenAI API key configured. Run \"commitgen config set-key\" or set OPENAI_API_KEY.", nil)
		}
		return &openaiBackend{client: openai.NewClient(key, cfg.EffectiveModel(), "")}, nil
	default:
		return nil, erruser.New("Invalid provider; use ollama or openai.", nil)
	}
}

// Canned returns a backend that always answers with text and never calls
// out. Used by --dry-run so CI can exercise the full flow without a model.
func Canned(name, text string) Backend {
	return cannedBackend{name: name, text: text}
}

type cannedBackend struct {
	name string
	text string
}

func (b cannedBackend) Name() string { return b.name }

func (b cannedBackend) Generate(ctx context.Context, promptText string) (string, error) {
	return b.text, nil
}

type ollamaBackend struct {
	client *ollama.Client
	model  string
	opts   *ollama.GenerateOptions
}

func (b *ollamaBackend) Name() string { return string(config.ProviderOllama) }

func (b *ollamaBackend) Generate(ctx context.Context, promptText string) (string, error) {
	res, err := b.client.Generate(ctx, b.model, system, promptText, b.opts)
	if err != nil {
		return "", &Error{Provider: b.Name(), Err: err}
	}
	return res.Response, nil
}

type openaiBackend struct {
	client *openai.Client
}

func (b *openaiBackend) Name() string { return string(config.ProviderOpenAI) }

func (b *openaiBackend) Generate(ctx context.Context, promptText string) (string, error) {
	out, err := b.client.Generate(ctx, system, promptText)
	if err != nil {
		return "", &Error{Provider: b.Name(), Err: err}
	}
	return out, nil
}
