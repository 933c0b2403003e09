package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"job-engine-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"42"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL, "gpt-test", llm.Options{Temperature: 0.7})
	answer, err := p.Generate(context.Background(), "question", llm.WithMaxTokens(10))

	require.NoError(t, err)
	assert.Equal(t, "42", answer)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 10, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, llm.RoleUser, got.Messages[0].Role)
}

func TestOpenAIProvider_MissingKey(t *testing.T) {
	p := NewOpenAIProvider("", "", "", llm.Options{})
	_, err := p.Generate(context.Background(), "question")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestOpenAIProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[],"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL, "", llm.Options{})
	_, err := p.Generate(context.Background(), "question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
