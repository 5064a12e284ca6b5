// Package llm defines the provider contract used by the tutor and the
// command simulator. Implementations live under internal/llm.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response is a completed generation.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Done    bool   `json:"done"`
}

// Provider generates text from a prompt or a conversation.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts ...CallOption) (*Response, error)
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error)
}

// CallOptions holds per-call overrides. Zero values mean provider default.
type CallOptions struct {
	Model       string
	System      string
	Temperature *float64
	MaxTokens   int
}

// CallOption modifies CallOptions.
type CallOption func(*CallOptions)

// WithModel overrides the provider's default model.
func WithModel(model string) CallOption {
	return func(o *CallOptions) { o.Model = model }
}

// WithSystem sets the system instruction.
func WithSystem(system string) CallOption {
	return func(o *CallOptions) { o.System = system }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) CallOption {
	return func(o *CallOptions) { o.Temperature = &t }
}

// WithMaxTokens caps the number of generated tokens.
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// ApplyOptions folds opts into a CallOptions value.
func ApplyOptions(opts ...CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ErrProviderUnavailable is returned when no provider is configured.
var ErrProviderUnavailable = errors.New("llm provider unavailable")

// ErrorCode classifies provider failures.
type ErrorCode string

const (
	ErrCodeTimeout        ErrorCode = "timeout"
	ErrCodeAuthentication ErrorCode = "authentication"
	ErrCodeModelNotFound  ErrorCode = "model_not_found"
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeServerError    ErrorCode = "server_error"
)

// ProviderError is a classified provider failure.
type ProviderError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewProviderError creates a ProviderError wrapping err.
func NewProviderError(code ErrorCode, msg string, err error) *ProviderError {
	return &ProviderError{Code: code, Message: msg, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("llm %s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether the failure may succeed on a later attempt.
func (e *ProviderError) IsRetryable() bool {
	return e.Code == ErrCodeTimeout || e.Code == ErrCodeServerError
}
