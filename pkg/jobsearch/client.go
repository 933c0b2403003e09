// Package jobsearch queries the JSearch job listing API published on RapidAPI.
package jobsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"job-engine-be/internal/pkg/logger"
	"job-engine-be/pkg/store"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL  = "https://jsearch.p.rapidapi.com"
	DefaultHost     = "jsearch.p.rapidapi.com"
	DefaultLanguage = "fr"
	DefaultTimeout  = 10 * time.Second
	MaxPages        = 10

	maxResponseBytes = 4 << 20
)

var (
	ErrNoAPIKey    = errors.New("rapidapi key is not configured")
	ErrEmptyQuery  = errors.New("job search query is empty")
	ErrJobNotFound = errors.New("job not found")
)

// SearchParams are the /search filters; empty fields are not sent
type SearchParams struct {
	Query           string `json:"query"`
	Country         string `json:"country,omitempty"`
	Language        string `json:"language,omitempty"`
	NumPages        int    `json:"num_pages"`
	EmploymentTypes string `json:"employment_types,omitempty"`
	JobRequirements string `json:"job_requirements,omitempty"`
	DatePosted      string `json:"date_posted,omitempty"`
	RemoteOnly      *bool  `json:"remote_jobs_only,omitempty"`
}

// SearchResult holds the listings of one search. Total counts the listings returned.
type SearchResult struct {
	Jobs  []store.JobListing `json:"jobs"`
	Total int                `json:"total"`
}

type Config struct {
	APIKey          string
	Host            string
	BaseURL         string
	DefaultLanguage string
	Timeout         time.Duration
	CacheTTL        time.Duration
}

// Client is a JSearch client. It is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      Cache
	logger     logger.ILogger
	group      singleflight.Group
}

func NewClient(config Config, cache Cache, logger logger.ILogger) *Client {
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = DefaultLanguage
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if cache == nil {
		cache = NopCache{}
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		cache:      cache,
		logger:     logger,
	}
}

type searchResponse struct {
	Status string             `json:"status"`
	Data   []store.JobListing `json:"data"`
}

// Search calls GET /search. Results are cached per parameter set when a cache is configured.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if c.config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	params = c.normalize(params)
	if params.Query == "" {
		return nil, ErrEmptyQuery
	}

	key := searchCacheKey(params)
	if raw, ok := c.cache.Get(ctx, key); ok {
		var cached SearchResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	query := url.Values{}
	query.Set("query", params.Query)
	query.Set("language", params.Language)
	query.Set("num_pages", strconv.Itoa(params.NumPages))
	if params.Country != "" {
		query.Set("country", params.Country)
	}
	if params.EmploymentTypes != "" {
		query.Set("employment_types", params.EmploymentTypes)
	}
	if params.JobRequirements != "" {
		query.Set("job_requirements", params.JobRequirements)
	}
	if params.DatePosted != "" {
		query.Set("date_posted", params.DatePosted)
	}
	if params.RemoteOnly != nil {
		query.Set("remote_jobs_only", strconv.FormatBool(*params.RemoteOnly))
	}

	var resp searchResponse
	if err := c.get(ctx, "/search", query, &resp); err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}

	result := &SearchResult{Jobs: resp.Data, Total: len(resp.Data)}
	if result.Jobs == nil {
		result.Jobs = []store.JobListing{}
	}

	if raw, err := json.Marshal(result); err == nil {
		c.cache.Set(ctx, key, raw, c.config.CacheTTL)
	}

	c.logger.Info("JOBSEARCH", "Search completed", map[string]interface{}{
		"query":   params.Query,
		"country": params.Country,
		"total":   result.Total,
	})
	return result, nil
}

type detailsResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Details calls GET /job-details. Concurrent lookups of the same id share one request,
// which is not tied to any single caller's cancellation.
func (c *Client) Details(ctx context.Context, jobID string) (*store.JobListing, error) {
	if c.config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrJobNotFound
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(jobID, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(shared, c.config.Timeout)
		defer cancel()

		var resp detailsResponse
		if err := c.get(callCtx, "/job-details", url.Values{"job_id": {jobID}}, &resp); err != nil {
			return nil, err
		}
		return decodeDetails(resp.Data)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("job details %s: %w", jobID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("job details %s: %w", jobID, res.Err)
		}
		job := res.Val.(store.JobListing)
		return &job, nil
	}
}

// data is a list for current API versions and an object for older ones
func decodeDetails(data json.RawMessage) (store.JobListing, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return store.JobListing{}, ErrJobNotFound
	}

	if strings.HasPrefix(trimmed, "[") {
		var jobs []store.JobListing
		if err := json.Unmarshal(data, &jobs); err != nil {
			return store.JobListing{}, fmt.Errorf("decode job details: %w", err)
		}
		if len(jobs) == 0 {
			return store.JobListing{}, ErrJobNotFound
		}
		return jobs[0], nil
	}

	var job store.JobListing
	if err := json.Unmarshal(data, &job); err != nil {
		return store.JobListing{}, fmt.Errorf("decode job details: %w", err)
	}
	return job, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.config.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.config.Host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jsearch request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jsearch error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) normalize(p SearchParams) SearchParams {
	p.Query = strings.TrimSpace(p.Query)
	p.Country = strings.ToLower(strings.TrimSpace(p.Country))
	if p.Language == "" {
		p.Language = c.config.DefaultLanguage
	}
	if p.NumPages < 1 {
		p.NumPages = 1
	}
	if p.NumPages > MaxPages {
		p.NumPages = MaxPages
	}
	return p
}

func searchCacheKey(p SearchParams) string {
	remote := "any"
	if p.RemoteOnly != nil {
		remote = strconv.FormatBool(*p.RemoteOnly)
	}
	return fmt.Sprintf("jobsearch:%s|%s|%s|%d|%s|%s|%s|%s",
		strings.ToLower(p.Query), p.Country, p.Language, p.NumPages,
		p.EmploymentTypes, p.JobRequirements, p.DatePosted, remote)
}
