package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"job-engine-be/internal/dto"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 3 * time.Minute},
	}
}

func (c *apiClient) Chat(ctx context.Context, sessionID, message string) (*dto.ChatResponse, error) {
	var out envelope[*dto.ChatResponse]
	path := "/api/chat/v1/session/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodPost, path, dto.ChatRequest{Message: message}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *apiClient) History(ctx context.Context, sessionID string) (*dto.ChatHistoryResponse, error) {
	var out envelope[*dto.ChatHistoryResponse]
	if err := c.do(ctx, http.MethodGet, "/api/chat/v1/session/"+url.PathEscape(sessionID)+"/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *apiClient) Sessions(ctx context.Context) ([]dto.SessionInfo, error) {
	var out envelope[[]dto.SessionInfo]
	if err := c.do(ctx, http.MethodGet, "/api/chat/v1/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *apiClient) Clear(ctx context.Context, sessionID string) error {
	var out envelope[any]
	return c.do(ctx, http.MethodDelete, "/api/chat/v1/session/"+url.PathEscape(sessionID), nil, &out)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var failure envelope[any]
		if json.Unmarshal(raw, &failure) == nil && failure.Message != "" {
			return fmt.Errorf("%s (status %d)", failure.Message, resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	return json.Unmarshal(raw, out)
}
