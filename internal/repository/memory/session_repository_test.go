package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"job-engine-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_GetOrCreateIsLazy(t *testing.T) {
	repo := NewSessionRepository(0)
	assert.Equal(t, 0, repo.Count())

	s := repo.GetOrCreate("s1")
	assert.Equal(t, "s1", s.ID)
	assert.Empty(t, s.Messages)
	assert.Equal(t, 1, repo.Count())

	repo.GetOrCreate("s1")
	assert.Equal(t, 1, repo.Count())
}

func TestSessionRepository_HistoryUnknownSession(t *testing.T) {
	repo := NewSessionRepository(0)

	history := repo.History("missing")
	require.NotNil(t, history)
	assert.Empty(t, history)
	assert.Equal(t, 0, repo.Count(), "reading history must not create the session")
}

func TestSessionRepository_AppendTurnKeepsPairsInOrder(t *testing.T) {
	repo := NewSessionRepository(0)
	repo.AppendTurn("s1", "Bonjour", "Salut !")
	repo.AppendTurn("s1", "Ça va ?", "Très bien.")

	history := repo.History("s1")
	require.Len(t, history, 4)
	assert.Equal(t, store.Turn{Role: store.RoleUser, Content: "Bonjour"}, history[0])
	assert.Equal(t, store.Turn{Role: store.RoleAssistant, Content: "Salut !"}, history[1])
	assert.Equal(t, store.Turn{Role: store.RoleUser, Content: "Ça va ?"}, history[2])
	assert.Equal(t, store.Turn{Role: store.RoleAssistant, Content: "Très bien."}, history[3])
}

func TestSessionRepository_HistoryIsACopy(t *testing.T) {
	repo := NewSessionRepository(0)
	repo.AppendTurn("s1", "a", "b")

	history := repo.History("s1")
	history[0].Content = "mutated"

	assert.Equal(t, "a", repo.History("s1")[0].Content)
}

func TestSessionRepository_SessionsAreIsolated(t *testing.T) {
	repo := NewSessionRepository(0)
	for i := 0; i < 5; i++ {
		repo.AppendTurn("A", fmt.Sprintf("a-%d", i), "ok")
		repo.AppendTurn("B", fmt.Sprintf("b-%d", i), "ok")
	}

	for _, turn := range repo.History("A") {
		if turn.Role == store.RoleUser {
			assert.Contains(t, turn.Content, "a-")
		}
	}
	for _, turn := range repo.History("B") {
		if turn.Role == store.RoleUser {
			assert.Contains(t, turn.Content, "b-")
		}
	}
}

func TestSessionRepository_DeleteIsIdempotent(t *testing.T) {
	repo := NewSessionRepository(0)
	repo.AppendTurn("s1", "a", "b")

	repo.Delete("s1")
	repo.Delete("s1")
	repo.Delete("never-seen")

	assert.Equal(t, 0, repo.Count())
	assert.Empty(t, repo.History("s1"))
}

func TestSessionRepository_ResetAllAndList(t *testing.T) {
	repo := NewSessionRepository(0)
	repo.AppendTurn("b", "x", "y")
	repo.AppendTurn("a", "x", "y")
	repo.AppendTurn("a", "x", "y")

	assert.Equal(t, []SessionInfo{
		{SessionID: "a", MessageCount: 4},
		{SessionID: "b", MessageCount: 2},
	}, repo.List())

	repo.ResetAll()
	assert.Equal(t, 0, repo.Count())
	assert.Empty(t, repo.List())
}

func TestSessionRepository_Context(t *testing.T) {
	repo := NewSessionRepository(0)

	_, found := repo.GetContext("s1", "lang")
	assert.False(t, found)

	repo.SetContext("s1", "lang", "fr")
	value, found := repo.GetContext("s1", "lang")
	assert.True(t, found)
	assert.Equal(t, "fr", value)
}

func TestSessionRepository_ConcurrentAppendsNeverInterleave(t *testing.T) {
	repo := NewSessionRepository(0)
	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("s%d", w%4)
			for i := 0; i < perWorker; i++ {
				msg := fmt.Sprintf("%d-%d", w, i)
				repo.AppendTurn(sessionID, "q"+msg, "a"+msg)
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for i := 0; i < 4; i++ {
		history := repo.History(fmt.Sprintf("s%d", i))
		require.Equal(t, 0, len(history)%2)
		for j := 0; j < len(history); j += 2 {
			assert.Equal(t, store.RoleUser, history[j].Role)
			assert.Equal(t, store.RoleAssistant, history[j+1].Role)
			assert.Equal(t, history[j].Content[1:], history[j+1].Content[1:], "pair must not interleave")
		}
		total += len(history)
	}
	assert.Equal(t, workers*perWorker*2, total)
}

func TestSessionRepository_TTLExpiresIdleSessions(t *testing.T) {
	repo := NewSessionRepository(20 * time.Millisecond)
	repo.AppendTurn("s1", "a", "b")
	require.Equal(t, 1, repo.Count())

	assert.Eventually(t, func() bool {
		return repo.Count() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSessionRepository_RenewalNeverRestoresDeletedSession(t *testing.T) {
	repo := NewSessionRepository(time.Hour)

	for round := 0; round < 200; round++ {
		repo.AppendTurn("s1", "q", "a")
		stale := repo.entry("s1")

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				repo.touch("s1", stale)
			}
		}()
		repo.Delete("s1")
		wg.Wait()

		// renewals that raced the delete must not bring the old entry back
		if current, ok := repo.lookup("s1"); ok {
			require.NotSame(t, stale, current, "round %d", round)
		}
		repo.touch("s1", stale)
		require.Equal(t, 0, repo.Count(), "round %d", round)
		require.Empty(t, repo.History("s1"))
	}
}
