package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"job-engine-be/internal/pkg/logger"
	"job-engine-be/internal/repository/memory"
	"job-engine-be/pkg/events"
	"job-engine-be/pkg/rag/composer"
	"job-engine-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComposer struct {
	sessions *memory.SessionRepository
	result   composer.Result
	calls    []string
}

func (f *fakeComposer) Chat(ctx context.Context, sessionID, message string) *composer.Result {
	f.calls = append(f.calls, sessionID)
	f.sessions.AppendTurn(sessionID, message, f.result.Answer)
	res := f.result
	return &res
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []string{}
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type durationRecorder struct {
	observed int
}

func (d *durationRecorder) ObserveChat(time.Duration) { d.observed++ }

func newChatServiceUnderTest(result composer.Result) (IChatService, *fakeComposer, *recordingPublisher, *durationRecorder) {
	sessions := memory.NewSessionRepository(0)
	comp := &fakeComposer{sessions: sessions, result: result}
	pub := &recordingPublisher{}
	obs := &durationRecorder{}
	svc := NewChatService(comp, sessions, pub, obs, logger.NewNopLogger())
	return svc, comp, pub, obs
}

func TestChatService_ChatDefaultsSessionAndSources(t *testing.T) {
	svc, comp, pub, obs := newChatServiceUnderTest(composer.Result{Answer: "Bonjour"})

	res, err := svc.Chat(context.Background(), "  ", "Salut")
	require.NoError(t, err)

	assert.Equal(t, "default", res.SessionId)
	assert.Equal(t, "Bonjour", res.Answer)
	assert.NotNil(t, res.Sources)
	assert.Empty(t, res.Error)
	assert.Equal(t, []string{"default"}, comp.calls)
	assert.Empty(t, pub.types())
	assert.Equal(t, 1, obs.observed)
}

func TestChatService_ChatPublishesJobSearch(t *testing.T) {
	svc, _, pub, _ := newChatServiceUnderTest(composer.Result{
		Answer: "Voici des offres",
		JobSearch: &composer.JobSearch{
			Query:   "python developer",
			Country: "fr",
			Total:   12,
			Jobs:    []store.JobListing{{ID: "a"}, {ID: "b"}},
		},
	})

	res, err := svc.Chat(context.Background(), "s1", "je cherche un job python en France")
	require.NoError(t, err)
	require.NotNil(t, res.JobSearch)

	require.Equal(t, []string{events.TypeJobSearchPerformed}, pub.types())
	payload := pub.events[0].Payload()
	assert.Equal(t, "s1", payload["session_id"])
	assert.Equal(t, 12, payload["total"])
	assert.Equal(t, 2, payload["kept"])
}

func TestChatService_PublishFailureDoesNotFailChat(t *testing.T) {
	svc, _, pub, _ := newChatServiceUnderTest(composer.Result{
		Answer:    "ok",
		JobSearch: &composer.JobSearch{Query: "go"},
	})
	pub.err = errors.New("nats down")

	res, err := svc.Chat(context.Background(), "s1", "job go")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Answer)
}

func TestChatService_HistoryListAndClear(t *testing.T) {
	svc, _, pub, _ := newChatServiceUnderTest(composer.Result{Answer: "réponse"})
	ctx := context.Background()

	_, _ = svc.Chat(ctx, "b", "one")
	_, _ = svc.Chat(ctx, "a", "two")
	_, _ = svc.Chat(ctx, "a", "three")

	history, err := svc.History(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, history.Count)
	assert.Equal(t, "user", history.Messages[0].Role)
	assert.Equal(t, "two", history.Messages[0].Content)
	assert.Equal(t, "assistant", history.Messages[1].Role)

	unknown, err := svc.History(ctx, "never-seen")
	require.NoError(t, err)
	assert.Equal(t, 0, unknown.Count)
	assert.NotNil(t, unknown.Messages)

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].SessionId)
	assert.Equal(t, 4, sessions[0].MessageCount)

	require.NoError(t, svc.ClearSession(ctx, "a"))
	require.NoError(t, svc.ClearSession(ctx, "a"))
	assert.Equal(t, 1, svc.SessionCount())
	assert.Equal(t, []string{events.TypeSessionCleared, events.TypeSessionCleared}, pub.types())

	require.NoError(t, svc.ResetAll(ctx))
	assert.Equal(t, 0, svc.SessionCount())
}
