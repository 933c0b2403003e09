package store

import "time"

// MaxJobSearches is the number of job searches retained per session (oldest evicted first)
const MaxJobSearches = 10

// Role tags a turn entry at construction time
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the message history
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Document represents a retrieved knowledge base chunk for the RAG system
type Document struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title,omitempty"`
	Content  string                 `json:"content"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// JobSearchRecord is an immutable snapshot of one job search performed in a session
type JobSearchRecord struct {
	Query     string       `json:"query"`
	Country   string       `json:"country,omitempty"`
	Total     int          `json:"total"`
	Jobs      []JobListing `json:"jobs"`
	CreatedAt time.Time    `json:"created_at"`
}

// Session represents the conversational state of one session in memory
type Session struct {
	ID          string                 `json:"id"`
	Messages    []Turn                 `json:"messages"`
	JobSearches []JobSearchRecord      `json:"job_searches"`
	Context     map[string]interface{} `json:"context"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// NewSession creates an empty session
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Context:   make(map[string]interface{}),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no slices or maps with s.
// Listings and context values are copied shallowly; records are immutable once appended.
func (s *Session) Clone() Session {
	out := Session{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  append([]Turn(nil), s.Messages...),
		Context:   make(map[string]interface{}, len(s.Context)),
	}
	if len(s.JobSearches) > 0 {
		out.JobSearches = make([]JobSearchRecord, len(s.JobSearches))
		for i, rec := range s.JobSearches {
			rec.Jobs = append([]JobListing(nil), rec.Jobs...)
			out.JobSearches[i] = rec
		}
	}
	for k, v := range s.Context {
		out.Context[k] = v
	}
	return out
}
