package dto

import "job-engine-be/pkg/store"

type JobSearchRequest struct {
	Query           string `query:"query" validate:"required"`
	Country         string `query:"country"`
	Language        string `query:"language"`
	NumPages        int    `query:"num_pages" validate:"min=1,max=10"`
	EmploymentTypes string `query:"employment_types"`
	JobRequirements string `query:"job_requirements"`
	DatePosted      string `query:"date_posted" validate:"omitempty,oneof=all today 3days week month"`
	RemoteJobsOnly  bool   `query:"remote_jobs_only"`
}

type JobSearchResponse struct {
	Query   string             `json:"query"`
	Country string             `json:"country,omitempty"`
	Total   int                `json:"total"`
	Jobs    []store.JobListing `json:"jobs"`
}

type JobSummaryRequest struct {
	Query    string `query:"query" validate:"required"`
	Country  string `query:"country"`
	Language string `query:"language"`
	Limit    int    `query:"limit" validate:"min=1,max=20"`
}

type JobSummary struct {
	Summary   string `json:"summary"`
	JobId     string `json:"job_id"`
	ApplyLink string `json:"job_apply_link"`
}

type JobSummaryResponse struct {
	Query      string       `json:"query"`
	Country    string       `json:"country,omitempty"`
	TotalFound int          `json:"total_found"`
	Results    []JobSummary `json:"results"`
}
