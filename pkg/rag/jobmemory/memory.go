// Package jobmemory keeps the job searches performed in a session and renders
// them as text for the generation prompt.
package jobmemory

import (
	"fmt"
	"strings"
	"time"

	"job-engine-be/pkg/store"
)

const (
	descriptionLimit = 200
	olderSummaries   = 2
)

// SessionStore is the subset of the session repository used by the memory
type SessionStore interface {
	Update(sessionID string, fn func(s *store.Session))
	View(sessionID string, fn func(s *store.Session)) bool
}

// Memory records job searches inside the owning session, under the session lock
type Memory struct {
	sessions SessionStore
	now      func() time.Time
}

// NewMemory creates a job search memory on top of the session store
func NewMemory(sessions SessionStore) *Memory {
	return &Memory{sessions: sessions, now: time.Now}
}

// Record appends a search result and keeps only the most recent MaxJobSearches records
func (m *Memory) Record(sessionID, query, country string, total int, jobs []store.JobListing) store.JobSearchRecord {
	rec := store.JobSearchRecord{
		Query:     query,
		Country:   country,
		Total:     total,
		Jobs:      append([]store.JobListing(nil), jobs...),
		CreatedAt: m.now(),
	}
	m.sessions.Update(sessionID, func(s *store.Session) {
		s.JobSearches = append(s.JobSearches, rec)
		if over := len(s.JobSearches) - store.MaxJobSearches; over > 0 {
			s.JobSearches = append([]store.JobSearchRecord(nil), s.JobSearches[over:]...)
		}
	})
	return rec
}

// History returns every retained record, oldest first
func (m *Memory) History(sessionID string) []store.JobSearchRecord {
	var out []store.JobSearchRecord
	m.sessions.View(sessionID, func(s *store.Session) {
		out = append(out, s.JobSearches...)
	})
	return out
}

// Latest returns the most recent record
func (m *Memory) Latest(sessionID string) (store.JobSearchRecord, bool) {
	var (
		rec   store.JobSearchRecord
		found bool
	)
	m.sessions.View(sessionID, func(s *store.Session) {
		if n := len(s.JobSearches); n > 0 {
			rec, found = s.JobSearches[n-1], true
		}
	})
	return rec, found
}

// ByIndex returns the listing at the 1-based position of the latest record
func (m *Memory) ByIndex(sessionID string, position int) (store.JobListing, bool) {
	rec, ok := m.Latest(sessionID)
	if !ok || position < 1 || position > len(rec.Jobs) {
		return store.JobListing{}, false
	}
	return rec.Jobs[position-1], true
}

// Find filters the latest record by case-insensitive title and employer substrings.
// An empty filter matches everything; both filters must match when both are set.
func (m *Memory) Find(sessionID, title, employer string) []store.JobListing {
	matches := []store.JobListing{}
	rec, ok := m.Latest(sessionID)
	if !ok {
		return matches
	}

	title = strings.ToLower(strings.TrimSpace(title))
	employer = strings.ToLower(strings.TrimSpace(employer))
	for _, job := range rec.Jobs {
		if title != "" && !strings.Contains(strings.ToLower(job.Title), title) {
			continue
		}
		if employer != "" && !strings.Contains(strings.ToLower(job.Employer), employer) {
			continue
		}
		matches = append(matches, job)
	}
	return matches
}

// RenderContext describes the latest search in full and up to two older searches in one line each.
// It returns "" when the session has no job search.
func (m *Memory) RenderContext(sessionID string) string {
	records := m.History(sessionID)
	if len(records) == 0 {
		return ""
	}

	latest := records[len(records)-1]
	var sb strings.Builder
	sb.WriteString("=== Previous job search in this conversation ===\n")
	fmt.Fprintf(&sb, "Query: %s\n", latest.Query)
	if latest.Country != "" {
		fmt.Fprintf(&sb, "Country: %s\n", latest.Country)
	}
	fmt.Fprintf(&sb, "Results found: %d (searched %s)\n", latest.Total, latest.CreatedAt.UTC().Format(time.RFC3339))

	for i, job := range latest.Jobs {
		fmt.Fprintf(&sb, "\n%d. %s at %s\n", i+1, ValueOrUnknown(job.Title), ValueOrUnknown(job.Employer))
		fmt.Fprintf(&sb, "   Location: %s\n", ValueOrUnknown(job.Location()))
		fmt.Fprintf(&sb, "   Remote: %s\n", RemoteLabel(job))
		fmt.Fprintf(&sb, "   Employment type: %s\n", ValueOrUnknown(job.EmploymentType))
		if job.Description != "" {
			fmt.Fprintf(&sb, "   Description: %s\n", Truncate(job.Description, descriptionLimit))
		}
		fmt.Fprintf(&sb, "   Apply: %s\n", ValueOrUnknown(job.ApplyLink))
		fmt.Fprintf(&sb, "   Job ID: %s\n", ValueOrUnknown(job.ID))
	}

	older := records[:len(records)-1]
	if len(older) > olderSummaries {
		older = older[len(older)-olderSummaries:]
	}
	if len(older) > 0 {
		sb.WriteString("\nEarlier searches:\n")
		for i := len(older) - 1; i >= 0; i-- {
			rec := older[i]
			country := ""
			if rec.Country != "" {
				country = " (" + rec.Country + ")"
			}
			fmt.Fprintf(&sb, "- %q%s: %d results, %s\n", rec.Query, country, rec.Total, rec.CreatedAt.UTC().Format(time.RFC3339))
		}
	}

	return sb.String()
}

// Truncate cuts s to limit runes, marking the cut with "..."
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// ValueOrUnknown labels a missing field explicitly
func ValueOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}

// RemoteLabel renders the remote flag of a listing
func RemoteLabel(job store.JobListing) string {
	remote, known := job.Remote()
	switch {
	case !known:
		return "not specified"
	case remote:
		return "yes"
	default:
		return "no"
	}
}
