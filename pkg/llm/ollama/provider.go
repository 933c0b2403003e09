package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"job-engine-be/pkg/llm"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	defaultTimeout = 120 * time.Second
)

// ErrModelNotPulled is returned by Ping when the server does not have the model
var ErrModelNotPulled = errors.New("ollama model is not pulled")

type OllamaProvider struct {
	baseURL  string
	model    string
	defaults llm.Options
	client   *http.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, model string, defaults llm.Options) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if defaults.Temperature == 0 {
		defaults.Temperature = 0.7
	}
	return &OllamaProvider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		defaults: defaults,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

func (o *OllamaProvider) BaseURL() string { return o.baseURL }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message llm.Message `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(o.defaults, opts...)

	payload := chatRequest{
		Model:    o.model,
		Messages: make([]llm.Message, len(history)),
		Options:  chatOptions{Temperature: options.Temperature, NumPredict: options.MaxTokens},
	}
	if options.Model != "" {
		payload.Model = options.Model
	}
	for i, msg := range history {
		// gemini-style history uses "model" for the assistant
		if msg.Role == "model" {
			msg.Role = llm.RoleAssistant
		}
		payload.Messages[i] = msg
	}

	var out chatResponse
	if err := o.do(ctx, http.MethodPost, "/api/chat", payload, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}
	if strings.TrimSpace(out.Message.Content) == "" {
		return "", llm.ErrEmptyResponse
	}
	return out.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Ping checks that the server answers and has the configured model
func (o *OllamaProvider) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := o.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return err
	}
	for _, m := range tags.Models {
		if m.Name == o.model || strings.TrimSuffix(m.Name, ":latest") == o.model {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelNotPulled, o.model)
}

func (o *OllamaProvider) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
