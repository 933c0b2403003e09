package service

import (
	"context"
	"testing"

	"job-engine-be/internal/dto"
	"job-engine-be/pkg/jobsearch"
	"job-engine-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobClient struct {
	params jobsearch.SearchParams
	jobs   []store.JobListing
	err    error
}

func (f *fakeJobClient) Search(ctx context.Context, params jobsearch.SearchParams) (*jobsearch.SearchResult, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &jobsearch.SearchResult{Jobs: f.jobs, Total: len(f.jobs)}, nil
}

func (f *fakeJobClient) Details(ctx context.Context, jobID string) (*store.JobListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, job := range f.jobs {
		if job.ID == jobID {
			j := job
			return &j, nil
		}
	}
	return nil, jobsearch.ErrJobNotFound
}

func TestJobService_SearchForwardsFilters(t *testing.T) {
	client := &fakeJobClient{jobs: []store.JobListing{{ID: "1", Title: "Go developer"}}}
	svc := NewJobService(client)

	res, err := svc.Search(context.Background(), &dto.JobSearchRequest{
		Query:           "golang",
		Country:         " FR ",
		Language:        "fr",
		NumPages:        2,
		EmploymentTypes: "FULLTIME",
		DatePosted:      "week",
		RemoteJobsOnly:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "fr", client.params.Country)
	assert.Equal(t, 2, client.params.NumPages)
	require.NotNil(t, client.params.RemoteOnly)
	assert.True(t, *client.params.RemoteOnly)
	assert.Equal(t, "week", client.params.DatePosted)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "golang", res.Query)
}

func TestJobService_SearchSummaryAppliesLimit(t *testing.T) {
	client := &fakeJobClient{jobs: []store.JobListing{
		{ID: "1", Title: "A", ApplyLink: "https://a"},
		{ID: "2", Title: "B"},
		{ID: "3", Title: "C"},
	}}
	svc := NewJobService(client)

	res, err := svc.SearchSummary(context.Background(), &dto.JobSummaryRequest{Query: "dev", Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalFound)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "1", res.Results[0].JobId)
	assert.Equal(t, "https://a", res.Results[0].ApplyLink)
	assert.Contains(t, res.Results[0].Summary, "A")
}

func TestJobService_Details(t *testing.T) {
	svc := NewJobService(&fakeJobClient{jobs: []store.JobListing{{ID: "x1", Title: "SRE"}}})

	job, err := svc.Details(context.Background(), "x1")
	require.NoError(t, err)
	assert.Equal(t, "SRE", job.Title)

	_, err = svc.Details(context.Background(), "missing")
	assert.ErrorIs(t, err, jobsearch.ErrJobNotFound)
}
