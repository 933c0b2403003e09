package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"job-engine-be/internal/dto"
	"job-engine-be/pkg/events"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat/v1/session/s1", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "ok"})
			return
		}
		var req dto.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    dto.ChatResponse{Answer: "re: " + req.Message, SessionId: "s1", Error: "RAG unavailable, direct LLM answer"},
		})
	})
	mux.HandleFunc("/api/chat/v1/session/s1/history", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": dto.ChatHistoryResponse{
				SessionId: "s1",
				Messages:  []dto.ChatMessage{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}},
				Count:     2,
			},
		})
	})
	mux.HandleFunc("/api/chat/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "boom"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestAPIClient(t *testing.T) {
	srv, calls := newTestAPI(t)
	client := newAPIClient(srv.URL + "/")
	ctx := context.Background()

	res, err := client.Chat(ctx, "s1", "Bonjour")
	require.NoError(t, err)
	assert.Equal(t, "re: Bonjour", res.Answer)

	history, err := client.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, history.Count)

	require.NoError(t, client.Clear(ctx, "s1"))

	_, err = client.Sessions(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom (status 500)")

	assert.Equal(t, []string{
		"POST /api/chat/v1/session/s1",
		"GET /api/chat/v1/session/s1/history",
		"DELETE /api/chat/v1/session/s1",
	}, *calls)
}

func TestInteractive(t *testing.T) {
	color.NoColor = true
	srv, calls := newTestAPI(t)
	client := newAPIClient(srv.URL)

	in := strings.NewReader("Bonjour\n\n/history\n/clear\n/quit\nignored\n")
	var out bytes.Buffer
	require.NoError(t, interactive(context.Background(), in, &out, client, "s1"))

	text := out.String()
	assert.Contains(t, text, "re: Bonjour")
	assert.Contains(t, text, "[warning] RAG unavailable, direct LLM answer")
	assert.Contains(t, text, "> hi")
	assert.Len(t, *calls, 3)
}

func TestFormatEvent(t *testing.T) {
	evt := events.NewJobSearchPerformed("s1", "python", "fr", 12, 5)
	evt.OccurredAt = time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)

	assert.Equal(t,
		"09:30:00 JOB_SEARCH_PERFORMED country=fr kept=5 query=python session_id=s1 total=12",
		formatEvent(evt))
}
