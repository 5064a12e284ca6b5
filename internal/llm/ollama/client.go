// Package ollama implements llm.Provider against an Ollama-compatible
// HTTP API (/api/generate and /api/chat, non-streaming).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danmudi/netlab/pkg/llm"
)

// DefaultTimeout bounds one request when the caller's context has no
// deadline.
const DefaultTimeout = 60 * time.Second

var _ llm.Provider = (*Client)(nil)

// Client talks to an Ollama server.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New creates a client for baseURL using model unless a call overrides it.
func New(baseURL, model string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type modelOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options *modelOptions `json:"options,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *modelOptions `json:"options,omitempty"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message llm.Message `json:"message"`
	Done    bool        `json:"done"`
}

// Generate implements llm.Provider.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (*llm.Response, error) {
	o := llm.ApplyOptions(opts...)
	req := generateRequest{
		Model:   c.modelFor(o),
		Prompt:  prompt,
		System:  o.System,
		Options: optionsFor(o),
	}
	var resp generateResponse
	if err := c.post(ctx, "/api/generate", req, &resp); err != nil {
		return nil, mapError(err)
	}
	return &llm.Response{Content: resp.Response, Model: resp.Model, Done: resp.Done}, nil
}

// Chat implements llm.Provider. A WithSystem option is sent as a leading
// system message.
func (c *Client) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	o := llm.ApplyOptions(opts...)
	msgs := messages
	if o.System != "" {
		msgs = make([]llm.Message, 0, len(messages)+1)
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: o.System})
		msgs = append(msgs, messages...)
	}
	req := chatRequest{
		Model:    c.modelFor(o),
		Messages: msgs,
		Options:  optionsFor(o),
	}
	var resp chatResponse
	if err := c.post(ctx, "/api/chat", req, &resp); err != nil {
		return nil, mapError(err)
	}
	return &llm.Response{Content: resp.Message.Content, Model: resp.Model, Done: resp.Done}, nil
}

func (c *Client) modelFor(o llm.CallOptions) string {
	if o.Model != "" {
		return o.Model
	}
	return c.model
}

func optionsFor(o llm.CallOptions) *modelOptions {
	if o.Temperature == nil && o.MaxTokens == 0 {
		return nil
	}
	return &modelOptions{Temperature: o.Temperature, NumPredict: o.MaxTokens}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ollamaStatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} from an Ollama error body,
// falling back to the raw text.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
