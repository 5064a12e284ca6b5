package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/danmudi/netlab/pkg/llm"
)

// ollamaStatusError is a non-200 reply from the server.
type ollamaStatusError struct {
	StatusCode int
	Message    string
}

func (e *ollamaStatusError) Error() string {
	return fmt.Sprintf("ollama: %d %s", e.StatusCode, e.Message)
}

// mapError classifies transport and status failures as llm.ProviderError.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out", err)
	}

	var se *ollamaStatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
			return llm.NewProviderError(llm.ErrCodeAuthentication, se.Message, err)
		case se.StatusCode == http.StatusNotFound && strings.Contains(strings.ToLower(se.Message), "model"):
			return llm.NewProviderError(llm.ErrCodeModelNotFound, se.Message, err)
		case se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500:
			return llm.NewProviderError(llm.ErrCodeServerError, se.Message, err)
		default:
			return llm.NewProviderError(llm.ErrCodeInvalidRequest, se.Message, err)
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) || strings.Contains(err.Error(), "connection refused") {
		return llm.NewProviderError(llm.ErrCodeServerError, "ollama server unreachable", err)
	}
	return llm.NewProviderError(llm.ErrCodeServerError, "ollama error", err)
}
