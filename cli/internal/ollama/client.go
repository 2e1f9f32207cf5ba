// Package ollama provides an HTTP client for the Ollama API (health check,
// model list, non-streaming generation).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const _defaultTimeout = 10 * time.Second

// ErrUnreachable indicates the Ollama server could not be reached (connection refused, timeout, or non-2xx).
var ErrUnreachable = errors.New("ollama server unreachable")

// Client calls the Ollama API. Zero value is not valid; use NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// CheckResult is the result of a health/model check.
type CheckResult struct {
	Reachable    bool     // Server responded with 200.
	ModelPresent bool     // Requested model name appears in the tags list.
	ModelNames   []string // All model names from /api/tags (for diagnostics).
}

// NewClient builds an Ollama client. baseURL is the API root (e.g. http://localhost:11434).
// If httpClient is nil, a default client with a 10s timeout is used; generation
// calls usually need a longer timeout, so pass one in for those.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: _defaultTimeout}
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Check verifies the server is reachable and whether the given model is present.
// It GETs /api/tags and parses the response. On connection/HTTP error returns ErrUnreachable (via %w).
func (c *Client) Check(ctx context.Context, model string) (*CheckResult, error) {
	url := c.baseURL + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ollama tags request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama tags: %w", errors.Join(ErrUnreachable, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama tags: %w: HTTP %d", ErrUnreachable, resp.StatusCode)
	}
	var body tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("ollama tags: parse response: %w", err)
	}
	names := make([]string, 0, len(body.Models))
	for _, m := range body.Models {
		names = append(names, m.Name)
	}
	modelPresent := false
	for _, n := range names {
		if n == model {
			modelPresent = true
			break
		}
	}
	return &CheckResult{
		Reachable:    true,
		ModelPresent: modelPresent,
		ModelNames:   names,
	}, nil
}

// GenerateOptions are model runtime options passed through to /api/generate.
// Zero-valued fields are omitted so the server defaults apply.
type GenerateOptions struct {
	Temperature float64
	NumCtx      int
}

// GenerateResult holds the model response and token accounting from a single
// /api/generate call.
type GenerateResult struct {
	Response        string
	PromptEvalCount int
	EvalCount       int
	EvalDurationNs  int64
}

type generateRequest struct {
	Model   string                 `json:"model"`
	System  string                 `json:"system,omitempty"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	EvalDuration    int64  `json:"eval_duration"`
	Error           string `json:"error"`
}

// Generate POSTs a non-streaming generation request and returns the model's
// response text with token counts. opts may be nil for server defaults. On
// connection error returns ErrUnreachable (via %w); an error field in the
// response body is surfaced as a plain error.
func (c *Client) Generate(ctx context.Context, model, system, promptText string, opts *GenerateOptions) (*GenerateResult, error) {
	reqBody := generateRequest{
		Model:  model,
		System: system,
		Prompt: promptText,
		Stream: false,
	}
	if opts != nil {
		options := map[string]interface{}{}
		if opts.Temperature > 0 {
			options["temperature"] = opts.Temperature
		}
		if opts.NumCtx > 0 {
			options["num_ctx"] = opts.NumCtx
		}
		if len(options) > 0 {
			reqBody.Options = options
		}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("ollama generate: encode request: %w", err)
	}
	url := c.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama generate: %w", errors.Join(ErrUnreachable, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama generate: %w: HTTP %d", ErrUnreachable, resp.StatusCode)
	}
	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("ollama generate: parse response: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("ollama generate: %s", body.Error)
	}
	return &GenerateResult{
		Response:        body.Response,
		PromptEvalCount: body.PromptEvalCount,
		EvalCount:       body.EvalCount,
		EvalDurationNs:  body.EvalDuration,
	}, nil
}
