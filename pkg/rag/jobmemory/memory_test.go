package jobmemory

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"job-engine-be/internal/repository/memory"
	"job-engine-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory() *Memory {
	m := NewMemory(memory.NewSessionRepository(0))
	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	calls := 0
	m.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return m
}

func boolPtr(b bool) *bool { return &b }

func sampleJobs() []store.JobListing {
	return []store.JobListing{
		{ID: "j1", Title: "Développeur Python", Employer: "Acme", City: "Paris", Country: "FR", IsRemote: boolPtr(true), EmploymentType: "FULLTIME", ApplyLink: "https://acme.example/apply", Description: strings.Repeat("x", 300)},
		{ID: "j2", Title: "Data Engineer", Employer: "Globex", City: "Lyon", EmploymentType: "CONTRACTOR"},
		{ID: "j3", Title: "Python Backend Engineer", Employer: "Globex Labs"},
	}
}

func TestMemory_RecordKeepsTenMostRecentFIFO(t *testing.T) {
	m := newTestMemory()
	for i := 0; i < 25; i++ {
		m.Record("s1", fmt.Sprintf("q%d", i), "fr", i, nil)
		assert.LessOrEqual(t, len(m.History("s1")), store.MaxJobSearches)
	}

	history := m.History("s1")
	require.Len(t, history, store.MaxJobSearches)
	for i, rec := range history {
		assert.Equal(t, fmt.Sprintf("q%d", 15+i), rec.Query)
	}
}

func TestMemory_LatestAndByIndex(t *testing.T) {
	m := newTestMemory()

	_, ok := m.Latest("s1")
	assert.False(t, ok)
	_, ok = m.ByIndex("s1", 1)
	assert.False(t, ok)

	m.Record("s1", "old", "", 1, []store.JobListing{{ID: "old"}})
	m.Record("s1", "python", "fr", 42, sampleJobs())

	latest, ok := m.Latest("s1")
	require.True(t, ok)
	assert.Equal(t, "python", latest.Query)
	assert.Equal(t, 42, latest.Total)

	job, ok := m.ByIndex("s1", 1)
	require.True(t, ok)
	assert.Equal(t, "j1", job.ID)

	job, ok = m.ByIndex("s1", 3)
	require.True(t, ok)
	assert.Equal(t, "j3", job.ID)

	_, ok = m.ByIndex("s1", 0)
	assert.False(t, ok)
	_, ok = m.ByIndex("s1", 4)
	assert.False(t, ok)
}

func TestMemory_Find(t *testing.T) {
	m := newTestMemory()
	m.Record("s1", "python", "fr", 3, sampleJobs())

	tests := []struct {
		name     string
		title    string
		employer string
		wantIDs  []string
	}{
		{name: "title only", title: "PYTHON", wantIDs: []string{"j1", "j3"}},
		{name: "employer only", employer: "globex", wantIDs: []string{"j2", "j3"}},
		{name: "both filters", title: "engineer", employer: "labs", wantIDs: []string{"j3"}},
		{name: "no filters", wantIDs: []string{"j1", "j2", "j3"}},
		{name: "no match", title: "chef", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := []string{}
			for _, job := range m.Find("s1", tt.title, tt.employer) {
				ids = append(ids, job.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	assert.Empty(t, m.Find("unknown", "python", ""))
}

func TestMemory_RenderContext(t *testing.T) {
	m := newTestMemory()
	assert.Equal(t, "", m.RenderContext("s1"))

	m.Record("s1", "first", "de", 1, nil)
	m.Record("s1", "second", "", 2, nil)
	m.Record("s1", "third", "es", 3, nil)
	m.Record("s1", "python", "fr", 42, sampleJobs())

	out := m.RenderContext("s1")
	assert.Contains(t, out, "Query: python")
	assert.Contains(t, out, "Country: fr")
	assert.Contains(t, out, "1. Développeur Python at Acme")
	assert.Contains(t, out, "Location: Paris, FR")
	assert.Contains(t, out, "Remote: yes")
	assert.Contains(t, out, "Employment type: FULLTIME")
	assert.Contains(t, out, "Apply: https://acme.example/apply")
	assert.Contains(t, out, "Job ID: j1")
	assert.Contains(t, out, "Description: "+strings.Repeat("x", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 201))
	assert.Contains(t, out, "Remote: not specified")

	assert.Contains(t, out, `"third" (es): 3 results`)
	assert.Contains(t, out, `"second": 2 results`)
	assert.NotContains(t, out, `"first"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("  abc ", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "éé...", Truncate("ééé", 2))
}
