// Package composer turns a session id and a user message into one answered,
// recorded turn. It merges the chat history, the job search memory, fresh job
// search results and retrieved documents before calling the generation backend.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-engine-be/internal/constant"
	"job-engine-be/internal/pkg/logger"
	"job-engine-be/pkg/jobsearch"
	"job-engine-be/pkg/llm"
	"job-engine-be/pkg/rag/history"
	"job-engine-be/pkg/rag/intent"
	"job-engine-be/pkg/rag/jobmemory"
	"job-engine-be/pkg/rag/prompt"
	"job-engine-be/pkg/rag/response"
	"job-engine-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	MaxJobResults  = 5
	excerptLimit   = 200
	defaultK       = 4
	tracerName     = "job-engine-be/composer"
	defaultTimeout = 30 * time.Second
)

var errEmptyAnswer = errors.New("generation returned an empty answer")

type SessionStore interface {
	History(sessionID string) []store.Turn
	AppendTurn(sessionID, userText, assistantText string)
}

type JobMemory interface {
	RenderContext(sessionID string) string
	Record(sessionID, query, country string, total int, jobs []store.JobListing) store.JobSearchRecord
}

type Classifier interface {
	Classify(ctx context.Context, message string) intent.Result
}

type JobSearcher interface {
	Search(ctx context.Context, params jobsearch.SearchParams) (*jobsearch.SearchResult, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]store.Document, error)
}

type Generator interface {
	Generate(ctx context.Context, question string, turns []store.Turn, docs []store.Document) (*response.Answer, error)
}

// Observer receives one event per decision point; internal/metrics implements it
type Observer interface {
	IntentClassified(source string, isJobSearch bool)
	JobSearchCompleted(outcome string)
	TurnCompleted(outcome string)
}

// Turn outcomes reported to the Observer
const (
	OutcomeAnswered = "answered"
	OutcomeRetried  = "retried"
	OutcomeFailed   = "failed"

	JobSearchOK          = "ok"
	JobSearchUnavailable = "unavailable"
)

type Timeouts struct {
	Classify   time.Duration
	JobSearch  time.Duration
	Retrieval  time.Duration
	Generation time.Duration
}

type Config struct {
	RetrieverK      int
	DefaultLanguage string
	Timeouts        Timeouts
}

// Source is a deduplicated document excerpt backing an answer
type Source struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// JobSearch describes the search performed for the current message
type JobSearch struct {
	Query   string             `json:"query"`
	Country string             `json:"country,omitempty"`
	Total   int                `json:"total"`
	Jobs    []store.JobListing `json:"jobs"`
}

// Result is always returned; Error is set when a degraded path was taken
type Result struct {
	Answer    string     `json:"answer"`
	Sources   []Source   `json:"sources"`
	JobSearch *JobSearch `json:"job_search,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type Composer struct {
	sessions   SessionStore
	jobs       JobMemory
	classifier Classifier
	searcher   JobSearcher
	retriever  Retriever
	generator  Generator
	llm        llm.LLMProvider
	window     *history.Window
	observer   Observer
	logger     logger.ILogger
	config     Config
}

type Option func(*Composer)

// WithJobSearcher enables job searches; without it detected intents only get the notice
func WithJobSearcher(s JobSearcher) Option {
	return func(c *Composer) { c.searcher = s }
}

// WithRetriever enables document retrieval
func WithRetriever(r Retriever) Option {
	return func(c *Composer) { c.retriever = r }
}

func WithHistoryWindow(w *history.Window) Option {
	return func(c *Composer) { c.window = w }
}

func WithObserver(o Observer) Option {
	return func(c *Composer) { c.observer = o }
}

func NewComposer(
	sessions SessionStore,
	jobs JobMemory,
	classifier Classifier,
	generator Generator,
	llmProvider llm.LLMProvider,
	logger logger.ILogger,
	config Config,
	opts ...Option,
) *Composer {
	if config.RetrieverK <= 0 {
		config.RetrieverK = defaultK
	}
	c := &Composer{
		sessions:   sessions,
		jobs:       jobs,
		classifier: classifier,
		generator:  generator,
		llm:        llmProvider,
		logger:     logger,
		config:     config,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat answers one message. It never fails: backend outages degrade the answer
// and are reported through Result.Error.
func (c *Composer) Chat(ctx context.Context, sessionID, message string) *Result {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "composer.Chat")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	result := &Result{Sources: []Source{}}
	priorContext := c.jobs.RenderContext(sessionID)
	builder := prompt.NewAugmentedBuilder(message).WithJobContext(priorContext)

	classification := c.classify(ctx, message)
	span.SetAttributes(
		attribute.Bool("intent.job_search", classification.IsJobSearch),
		attribute.String("intent.source", string(classification.Source)),
	)

	var jobErr error
	if classification.IsJobSearch {
		result.JobSearch, jobErr = c.searchJobs(ctx, sessionID, classification)
		if jobErr != nil {
			builder.WithNotice(constant.JobSearchUnavailableNotice)
		} else {
			builder.WithCurrentResults(prompt.RenderCurrentResults(
				result.JobSearch.Query, result.JobSearch.Country, result.JobSearch.Total, result.JobSearch.Jobs,
			))
		}
	}

	augmented := builder.Build()
	prior := c.sessions.History(sessionID)
	docs := c.retrieve(ctx, prompt.RetrievalQuery(augmented, prior))

	answer, genErr := c.generate(ctx, augmented, prior, docs)
	if genErr == nil {
		c.sessions.AppendTurn(sessionID, message, answer.Text)
		result.Answer = answer.Text
		result.Sources = Dedupe(answer.Sources)
		if jobErr != nil {
			result.Error = jobSearchError(jobErr)
		}
		c.observer.TurnCompleted(OutcomeAnswered)
		return result
	}

	c.logger.Warn("COMPOSER", "Generation failed, retrying without retrieval", map[string]interface{}{
		"session_id": sessionID,
		"error":      genErr.Error(),
	})

	text, retryErr := c.retry(ctx, message)
	if retryErr == nil {
		c.sessions.AppendTurn(sessionID, message, text)
		result.Answer = text
		result.Error = constant.RetryErrorMessage
		if jobErr != nil {
			result.Error += "; " + jobSearchError(jobErr)
		}
		c.observer.TurnCompleted(OutcomeRetried)
		span.SetStatus(codes.Error, constant.RetryErrorMessage)
		return result
	}

	c.logger.Error("COMPOSER", "Generation failed after retry", map[string]interface{}{
		"session_id": sessionID,
		"error":      retryErr.Error(),
	})
	span.RecordError(retryErr)
	span.SetStatus(codes.Error, "generation failed")
	c.observer.TurnCompleted(OutcomeFailed)

	result.Answer = constant.ChatApologyAnswer
	result.Error = fmt.Sprintf("generation failed: %v", retryErr)
	return result
}

func (c *Composer) classify(ctx context.Context, message string) intent.Result {
	ctx, cancel := c.withTimeout(ctx, c.config.Timeouts.Classify)
	defer cancel()

	res := c.classifier.Classify(ctx, message)
	c.observer.IntentClassified(string(res.Source), res.IsJobSearch)
	return res
}

func (c *Composer) searchJobs(ctx context.Context, sessionID string, res intent.Result) (*JobSearch, error) {
	if c.searcher == nil {
		c.observer.JobSearchCompleted(JobSearchUnavailable)
		return nil, errors.New("job search is not configured")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "composer.searchJobs")
	defer span.End()
	ctx, cancel := c.withTimeout(ctx, c.config.Timeouts.JobSearch)
	defer cancel()

	found, err := c.searcher.Search(ctx, jobsearch.SearchParams{
		Query:           res.Query,
		Country:         res.Country,
		Language:        c.config.DefaultLanguage,
		NumPages:        1,
		EmploymentTypes: string(res.EmploymentType),
		RemoteOnly:      res.Remote,
	})
	if err != nil {
		c.logger.Warn("COMPOSER", "Job search unavailable", map[string]interface{}{
			"session_id": sessionID,
			"query":      res.Query,
			"error":      err.Error(),
		})
		span.RecordError(err)
		c.observer.JobSearchCompleted(JobSearchUnavailable)
		return nil, err
	}

	jobs := found.Jobs
	if len(jobs) > MaxJobResults {
		jobs = jobs[:MaxJobResults]
	}
	jobs = append([]store.JobListing{}, jobs...)

	rec := c.jobs.Record(sessionID, res.Query, res.Country, found.Total, jobs)
	c.observer.JobSearchCompleted(JobSearchOK)

	return &JobSearch{
		Query:   rec.Query,
		Country: rec.Country,
		Total:   rec.Total,
		Jobs:    rec.Jobs,
	}, nil
}

// retrieve degrades to no documents when the retriever fails
func (c *Composer) retrieve(ctx context.Context, query string) []store.Document {
	if c.retriever == nil {
		return nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "composer.retrieve")
	defer span.End()
	ctx, cancel := c.withTimeout(ctx, c.config.Timeouts.Retrieval)
	defer cancel()

	docs, err := c.retriever.Retrieve(ctx, query, c.config.RetrieverK)
	if err != nil {
		c.logger.Warn("COMPOSER", "Retrieval unavailable, answering without documents", map[string]interface{}{
			"error": err.Error(),
		})
		span.RecordError(err)
		return nil
	}
	span.SetAttributes(attribute.Int("retrieval.documents", len(docs)))
	return docs
}

func (c *Composer) generate(ctx context.Context, question string, prior []store.Turn, docs []store.Document) (*response.Answer, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "composer.generate")
	defer span.End()
	ctx, cancel := c.withTimeout(ctx, c.config.Timeouts.Generation)
	defer cancel()

	answer, err := c.generator.Generate(ctx, question, c.window.Select(prior), docs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if answer == nil || strings.TrimSpace(answer.Text) == "" {
		return nil, errEmptyAnswer
	}
	return answer, nil
}

// retry sends the raw user message alone, bypassing retrieval and history
func (c *Composer) retry(ctx context.Context, message string) (string, error) {
	if c.llm == nil {
		return "", errors.New("no direct completion backend")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "composer.retry")
	defer span.End()
	ctx, cancel := c.withTimeout(ctx, c.config.Timeouts.Generation)
	defer cancel()

	text, err := c.llm.Generate(ctx, message)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyAnswer
	}
	return text, nil
}

func (c *Composer) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// Dedupe keeps the first document of each distinct trimmed content and
// shortens its excerpt to 200 characters
func Dedupe(docs []store.Document) []Source {
	sources := make([]Source, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		content := strings.TrimSpace(d.Content)
		if _, dup := seen[content]; dup {
			continue
		}
		seen[content] = struct{}{}

		metadata := d.Metadata
		if metadata == nil {
			metadata = map[string]interface{}{}
		}
		sources = append(sources, Source{
			Content:  jobmemory.Truncate(content, excerptLimit),
			Metadata: metadata,
		})
	}
	return sources
}

func jobSearchError(err error) string {
	return fmt.Sprintf("job search unavailable: %v", err)
}

type nopObserver struct{}

func (nopObserver) IntentClassified(string, bool) {}
func (nopObserver) JobSearchCompleted(string)     {}
func (nopObserver) TurnCompleted(string)          {}
