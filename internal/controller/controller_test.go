package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"job-engine-be/internal/dto"
	"job-engine-be/internal/pkg/serverutils"
	"job-engine-be/pkg/jobsearch"
	"job-engine-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	lastSession string
	lastMessage string
	cleared     []string
}

func (s *stubChatService) Chat(ctx context.Context, sessionId, message string) (*dto.ChatResponse, error) {
	s.lastSession, s.lastMessage = sessionId, message
	if sessionId == "" {
		sessionId = "default"
	}
	return &dto.ChatResponse{Answer: "écho: " + message, SessionId: sessionId}, nil
}

func (s *stubChatService) History(ctx context.Context, sessionId string) (*dto.ChatHistoryResponse, error) {
	return &dto.ChatHistoryResponse{
		SessionId: sessionId,
		Messages:  []dto.ChatMessage{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}},
		Count:     2,
	}, nil
}

func (s *stubChatService) ClearSession(ctx context.Context, sessionId string) error {
	s.cleared = append(s.cleared, sessionId)
	return nil
}

func (s *stubChatService) ListSessions(ctx context.Context) ([]dto.SessionInfo, error) {
	return []dto.SessionInfo{{SessionId: "a", MessageCount: 2}}, nil
}

func (s *stubChatService) ResetAll(ctx context.Context) error { return nil }

func (s *stubChatService) SessionCount() int { return 1 }

type stubJobService struct {
	lastSearch  *dto.JobSearchRequest
	lastSummary *dto.JobSummaryRequest
	err         error
}

func (s *stubJobService) Search(ctx context.Context, request *dto.JobSearchRequest) (*dto.JobSearchResponse, error) {
	s.lastSearch = request
	if s.err != nil {
		return nil, s.err
	}
	return &dto.JobSearchResponse{Query: request.Query, Total: 1, Jobs: []store.JobListing{{ID: "j1"}}}, nil
}

func (s *stubJobService) SearchSummary(ctx context.Context, request *dto.JobSummaryRequest) (*dto.JobSummaryResponse, error) {
	s.lastSummary = request
	if s.err != nil {
		return nil, s.err
	}
	return &dto.JobSummaryResponse{Query: request.Query, Results: []dto.JobSummary{}}, nil
}

func (s *stubJobService) Details(ctx context.Context, jobId string) (*store.JobListing, error) {
	if jobId != "j1" {
		return nil, jobsearch.ErrJobNotFound
	}
	return &store.JobListing{ID: "j1", Title: "Go developer"}, nil
}

type stubKnowledgeService struct {
	texts    []string
	files    []string
	countErr error
}

func (s *stubKnowledgeService) AddText(ctx context.Context, request *dto.UploadTextRequest) (*dto.UploadDocumentResponse, error) {
	s.texts = append(s.texts, request.Text)
	return &dto.UploadDocumentResponse{Success: true, DocumentIds: []string{"c1"}, Message: "Texte ajouté avec succès (1 chunks créés)"}, nil
}

func (s *stubKnowledgeService) AddFile(ctx context.Context, filename string, content []byte) (*dto.UploadDocumentResponse, error) {
	s.files = append(s.files, filename+":"+string(content))
	return &dto.UploadDocumentResponse{Success: true, DocumentIds: []string{"c1"}, Message: "Fichier " + filename + " ajouté avec succès"}, nil
}

func (s *stubKnowledgeService) Reset(ctx context.Context) error { return nil }

func (s *stubKnowledgeService) Count(ctx context.Context) (int, error) { return 3, s.countErr }

type fixture struct {
	app       *fiber.App
	chat      *stubChatService
	jobs      *stubJobService
	knowledge *stubKnowledgeService
}

func newFixture(llmReady bool) *fixture {
	f := &fixture{
		app:       fiber.New(),
		chat:      &stubChatService{},
		jobs:      &stubJobService{},
		knowledge: &stubKnowledgeService{},
	}
	f.app.Use(serverutils.ErrorHandlerMiddleware())
	api := f.app.Group("/api")
	NewChatController(f.chat).RegisterRoutes(api)
	NewJobController(f.jobs, "fr").RegisterRoutes(api)
	NewKnowledgeController(f.knowledge).RegisterRoutes(api)
	NewHealthController(f.chat, f.knowledge, llmReady).RegisterRoutes(f.app)
	return f
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestChatController(t *testing.T) {
	f := newFixture(true)

	status, body := doJSON(t, f.app, "POST", "/api/chat/v1", map[string]string{"message": "Bonjour"})
	assert.Equal(t, 200, status)
	assert.Equal(t, "écho: Bonjour", body["data"].(map[string]interface{})["answer"])
	assert.Equal(t, "", f.chat.lastSession)

	status, _ = doJSON(t, f.app, "POST", "/api/chat/v1/session/abc", map[string]string{"message": "Salut", "session_id": "ignored"})
	assert.Equal(t, 200, status)
	assert.Equal(t, "abc", f.chat.lastSession)

	status, body = doJSON(t, f.app, "POST", "/api/chat/v1", map[string]string{"session_id": "x"})
	assert.Equal(t, 422, status)
	assert.Equal(t, false, body["success"])

	status, body = doJSON(t, f.app, "GET", "/api/chat/v1/session/abc/history", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(2), body["data"].(map[string]interface{})["count"])

	status, _ = doJSON(t, f.app, "DELETE", "/api/chat/v1/session/abc", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, []string{"abc"}, f.chat.cleared)

	status, body = doJSON(t, f.app, "GET", "/api/chat/v1/sessions", nil)
	assert.Equal(t, 200, status)
	assert.Len(t, body["data"], 1)
}

func TestJobController(t *testing.T) {
	f := newFixture(true)

	status, _ := doJSON(t, f.app, "GET", "/api/jobs/v1/search?query=golang&country=fr&remote_jobs_only=true", nil)
	assert.Equal(t, 200, status)
	require.NotNil(t, f.jobs.lastSearch)
	assert.Equal(t, "fr", f.jobs.lastSearch.Language)
	assert.Equal(t, 1, f.jobs.lastSearch.NumPages)
	assert.True(t, f.jobs.lastSearch.RemoteJobsOnly)

	status, _ = doJSON(t, f.app, "GET", "/api/jobs/v1/search?query=golang&num_pages=11", nil)
	assert.Equal(t, 422, status)

	status, _ = doJSON(t, f.app, "GET", "/api/jobs/v1/search", nil)
	assert.Equal(t, 422, status)

	status, _ = doJSON(t, f.app, "GET", "/api/jobs/v1/search/summary?query=dev", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, 5, f.jobs.lastSummary.Limit)

	status, body := doJSON(t, f.app, "GET", "/api/jobs/v1/j1", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "Go developer", body["data"].(map[string]interface{})["job_title"])

	status, _ = doJSON(t, f.app, "GET", "/api/jobs/v1/unknown", nil)
	assert.Equal(t, 404, status)
}

func TestJobController_BackendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "missing key", err: jobsearch.ErrNoAPIKey, want: 503},
		{name: "upstream failure", err: errors.New("status 500"), want: 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)
			f.jobs.err = tt.err
			status, body := doJSON(t, f.app, "GET", "/api/jobs/v1/search?query=go", nil)
			assert.Equal(t, tt.want, status)
			assert.Contains(t, body["message"], "Erreur lors de la recherche d'emploi")
		})
	}
}

func TestKnowledgeController(t *testing.T) {
	f := newFixture(true)

	status, body := doJSON(t, f.app, "POST", "/api/knowledge/v1/upload-text", map[string]interface{}{"text": "FAQ"})
	assert.Equal(t, 200, status)
	assert.Equal(t, []string{"FAQ"}, f.knowledge.texts)
	assert.Equal(t, true, body["data"].(map[string]interface{})["success"])

	status, _ = doJSON(t, f.app, "POST", "/api/knowledge/v1/upload-text", map[string]interface{}{"text": ""})
	assert.Equal(t, 400, status)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "guide.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("contenu"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest("POST", "/api/knowledge/v1/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	status, _ = send(t, f.app, req)
	assert.Equal(t, 200, status)
	assert.Equal(t, []string{"guide.txt:contenu"}, f.knowledge.files)

	form := strings.NewReader("text=hello")
	req = httptest.NewRequest("POST", "/api/knowledge/v1/upload", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, _ = send(t, f.app, req)
	assert.Equal(t, 200, status)

	req = httptest.NewRequest("POST", "/api/knowledge/v1/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, _ = send(t, f.app, req)
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, f.app, "DELETE", "/api/knowledge/v1/reset", nil)
	assert.Equal(t, 200, status)
}

func TestHealthController(t *testing.T) {
	f := newFixture(true)
	status, body := doJSON(t, f.app, "GET", "/health", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(3), body["chunks"])

	f.knowledge.countErr = errors.New("collection missing")
	status, body = doJSON(t, f.app, "GET", "/health", nil)
	assert.Equal(t, 503, status)
	assert.Equal(t, "unhealthy", body["status"])

	status, body = doJSON(t, newFixture(true).app, "GET", "/", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, AppVersion, body["version"])
}
