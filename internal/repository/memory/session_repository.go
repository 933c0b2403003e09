package memory

import (
	"sort"
	"sync"
	"time"

	"job-engine-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionInfo summarizes a tracked session
type SessionInfo struct {
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
}

// sessionEntry owns one session and the mutex that serializes its mutations
type sessionEntry struct {
	mu      sync.Mutex
	session *store.Session
}

// SessionRepository keeps every session in process memory.
// The cache only indexes entries; mutations lock the entry, never the whole store.
type SessionRepository struct {
	cache *cache.Cache
	// index orders expiry renewals against removals
	index sync.Mutex
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionRepository creates the store. A ttl <= 0 keeps sessions until they are deleted.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 10 * time.Minute
		if ttl < cleanup {
			cleanup = ttl
		}
	}
	return &SessionRepository{
		cache: cache.New(expiration, cleanup),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (r *SessionRepository) entry(sessionID string) *sessionEntry {
	for {
		if x, found := r.cache.Get(sessionID); found {
			return x.(*sessionEntry)
		}
		e := &sessionEntry{session: store.NewSession(sessionID, r.now())}
		// Add fails when a concurrent caller created the entry first; loop picks theirs up
		if err := r.cache.Add(sessionID, e, cache.DefaultExpiration); err == nil {
			return e
		}
	}
}

func (r *SessionRepository) lookup(sessionID string) (*sessionEntry, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	return x.(*sessionEntry), true
}

// touch renews the sliding expiration of a session when a TTL is configured
func (r *SessionRepository) touch(sessionID string, e *sessionEntry) {
	if r.ttl <= 0 {
		return
	}
	r.index.Lock()
	defer r.index.Unlock()
	if current, ok := r.lookup(sessionID); ok && current == e {
		r.cache.Set(sessionID, e, cache.DefaultExpiration)
	}
}

// GetOrCreate returns a snapshot of the session, creating it on first reference
func (r *SessionRepository) GetOrCreate(sessionID string) store.Session {
	e := r.entry(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone()
}

// AppendTurn records a user message and its answer as one atomic pair
func (r *SessionRepository) AppendTurn(sessionID, userText, assistantText string) {
	r.Update(sessionID, func(s *store.Session) {
		s.Messages = append(s.Messages,
			store.Turn{Role: store.RoleUser, Content: userText},
			store.Turn{Role: store.RoleAssistant, Content: assistantText},
		)
	})
}

// History returns a copy of the message history; unknown sessions yield an empty slice
func (r *SessionRepository) History(sessionID string) []store.Turn {
	history := []store.Turn{}
	r.View(sessionID, func(s *store.Session) {
		history = append(history, s.Messages...)
	})
	return history
}

// Update runs fn with exclusive access to the session, creating it if needed
func (r *SessionRepository) Update(sessionID string, fn func(s *store.Session)) {
	e := r.entry(sessionID)
	e.mu.Lock()
	fn(e.session)
	e.session.UpdatedAt = r.now()
	e.mu.Unlock()
	r.touch(sessionID, e)
}

// View runs fn with exclusive access to an existing session.
// It reports false, without calling fn, when the session is unknown.
func (r *SessionRepository) View(sessionID string, fn func(s *store.Session)) bool {
	e, ok := r.lookup(sessionID)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
	return true
}

// SetContext stores an arbitrary session metadata value
func (r *SessionRepository) SetContext(sessionID, key string, value interface{}) {
	r.Update(sessionID, func(s *store.Session) {
		s.Context[key] = value
	})
}

// GetContext reads a session metadata value
func (r *SessionRepository) GetContext(sessionID, key string) (interface{}, bool) {
	var (
		value interface{}
		found bool
	)
	r.View(sessionID, func(s *store.Session) {
		value, found = s.Context[key]
	})
	return value, found
}

// Delete removes a session. Deleting an unknown session is a no-op.
func (r *SessionRepository) Delete(sessionID string) {
	r.index.Lock()
	r.cache.Delete(sessionID)
	r.index.Unlock()
}

// ResetAll drops every session
func (r *SessionRepository) ResetAll() {
	r.index.Lock()
	r.cache.Flush()
	r.index.Unlock()
}

// Count returns the number of tracked sessions
func (r *SessionRepository) Count() int {
	return len(r.cache.Items())
}

// List returns every tracked session with its message count, ordered by id
func (r *SessionRepository) List() []SessionInfo {
	items := r.cache.Items()
	infos := make([]SessionInfo, 0, len(items))
	for id, item := range items {
		e := item.Object.(*sessionEntry)
		e.mu.Lock()
		count := len(e.session.Messages)
		e.mu.Unlock()
		infos = append(infos, SessionInfo{SessionID: id, MessageCount: count})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].SessionID < infos[j].SessionID })
	return infos
}
