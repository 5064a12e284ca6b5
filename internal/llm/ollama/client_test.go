package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmudi/netlab/pkg/llm"
)

func TestClient_Chat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse{
			Model:   got.Model,
			Message: llm.Message{Role: llm.RoleAssistant, Content: "Sannu!"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "llama3.2")
	resp, err := c.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hello"}},
		llm.WithSystem("be brief"), llm.WithTemperature(0.3),
	)
	require.NoError(t, err)

	assert.Equal(t, "Sannu!", resp.Content)
	assert.Equal(t, "llama3.2", resp.Model)
	assert.True(t, resp.Done)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, llm.RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "be brief", got.Messages[0].Content)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.InDelta(t, 0.3, *got.Options.Temperature, 1e-9)
}

func TestClient_Generate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{Model: got.Model, Response: "Reply from 10.0.0.2", Done: true})
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3.2")
	resp, err := c.Generate(context.Background(), "ping 10.0.0.2", llm.WithModel("qwen"), llm.WithMaxTokens(128))
	require.NoError(t, err)

	assert.Equal(t, "Reply from 10.0.0.2", resp.Content)
	assert.Equal(t, "qwen", got.Model)
	assert.Equal(t, "ping 10.0.0.2", got.Prompt)
	require.NotNil(t, got.Options)
	assert.Equal(t, 128, got.Options.NumPredict)
	assert.Nil(t, got.Options.Temperature)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   llm.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"no key"}`, llm.ErrCodeAuthentication},
		{"model missing", http.StatusNotFound, `{"error":"model \"x\" not found"}`, llm.ErrCodeModelNotFound},
		{"bad request", http.StatusBadRequest, `{"error":"bad"}`, llm.ErrCodeInvalidRequest},
		{"server error", http.StatusInternalServerError, `boom`, llm.ErrCodeServerError},
		{"throttled", http.StatusTooManyRequests, `{"error":"slow down"}`, llm.ErrCodeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "m").Generate(context.Background(), "x")
			var pe *llm.ProviderError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.want, pe.Code)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL, "m").Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	var pe *llm.ProviderError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, llm.ErrCodeTimeout, pe.Code)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "m").Generate(context.Background(), "x")
	var pe *llm.ProviderError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, llm.ErrCodeServerError, pe.Code)
	assert.True(t, pe.IsRetryable())
}
