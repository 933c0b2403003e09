package service

import (
	"context"
	"strings"

	"job-engine-be/internal/dto"
	"job-engine-be/pkg/jobsearch"
	"job-engine-be/pkg/store"
)

type IJobService interface {
	Search(ctx context.Context, request *dto.JobSearchRequest) (*dto.JobSearchResponse, error)
	SearchSummary(ctx context.Context, request *dto.JobSummaryRequest) (*dto.JobSummaryResponse, error)
	Details(ctx context.Context, jobId string) (*store.JobListing, error)
}

// JobSearchClient is the job search backend used by the HTTP endpoints
type JobSearchClient interface {
	Search(ctx context.Context, params jobsearch.SearchParams) (*jobsearch.SearchResult, error)
	Details(ctx context.Context, jobID string) (*store.JobListing, error)
}

type jobService struct {
	client JobSearchClient
}

func NewJobService(client JobSearchClient) IJobService {
	return &jobService{client: client}
}

func (s *jobService) Search(ctx context.Context, request *dto.JobSearchRequest) (*dto.JobSearchResponse, error) {
	// the endpoint always states the filter, false by default
	remoteOnly := request.RemoteJobsOnly
	res, err := s.client.Search(ctx, jobsearch.SearchParams{
		Query:           request.Query,
		Country:         strings.ToLower(strings.TrimSpace(request.Country)),
		Language:        request.Language,
		NumPages:        request.NumPages,
		EmploymentTypes: request.EmploymentTypes,
		JobRequirements: request.JobRequirements,
		DatePosted:      request.DatePosted,
		RemoteOnly:      &remoteOnly,
	})
	if err != nil {
		return nil, err
	}

	return &dto.JobSearchResponse{
		Query:   request.Query,
		Country: request.Country,
		Total:   res.Total,
		Jobs:    res.Jobs,
	}, nil
}

func (s *jobService) SearchSummary(ctx context.Context, request *dto.JobSummaryRequest) (*dto.JobSummaryResponse, error) {
	res, err := s.client.Search(ctx, jobsearch.SearchParams{
		Query:    request.Query,
		Country:  strings.ToLower(strings.TrimSpace(request.Country)),
		Language: request.Language,
	})
	if err != nil {
		return nil, err
	}

	jobs := res.Jobs
	if request.Limit > 0 && len(jobs) > request.Limit {
		jobs = jobs[:request.Limit]
	}

	results := make([]dto.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		results = append(results, dto.JobSummary{
			Summary:   jobsearch.FormatSummary(job),
			JobId:     job.ID,
			ApplyLink: job.ApplyLink,
		})
	}

	return &dto.JobSummaryResponse{
		Query:      request.Query,
		Country:    request.Country,
		TotalFound: res.Total,
		Results:    results,
	}, nil
}

func (s *jobService) Details(ctx context.Context, jobId string) (*store.JobListing, error) {
	return s.client.Details(ctx, jobId)
}
