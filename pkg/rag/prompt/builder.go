package prompt

import (
	"fmt"
	"strings"

	"job-engine-be/internal/constant"
	"job-engine-be/pkg/rag/jobmemory"
	"job-engine-be/pkg/store"
)

// AugmentedBuilder assembles the question sent to retrieval and generation:
// the user message followed by the job context blocks.
type AugmentedBuilder struct {
	message        string
	jobContext     string
	currentResults string
	notice         string
}

// NewAugmentedBuilder starts from the raw user message
func NewAugmentedBuilder(message string) *AugmentedBuilder {
	return &AugmentedBuilder{message: message}
}

// WithJobContext adds the rendered job search memory of the session
func (b *AugmentedBuilder) WithJobContext(block string) *AugmentedBuilder {
	b.jobContext = strings.TrimSpace(block)
	return b
}

// WithCurrentResults adds the results fetched for this message
func (b *AugmentedBuilder) WithCurrentResults(block string) *AugmentedBuilder {
	b.currentResults = strings.TrimSpace(block)
	return b
}

// WithNotice adds a block shown as is, without the presentation instruction
func (b *AugmentedBuilder) WithNotice(block string) *AugmentedBuilder {
	b.notice = strings.TrimSpace(block)
	return b
}

func (b *AugmentedBuilder) Build() string {
	var prompt strings.Builder
	prompt.WriteString(b.message)

	if b.jobContext != "" {
		prompt.WriteString("\n\n")
		prompt.WriteString(b.jobContext)
	}

	if b.currentResults != "" {
		prompt.WriteString("\n\n")
		prompt.WriteString(b.currentResults)
		prompt.WriteString("\n\n")
		prompt.WriteString(constant.CurrentResultsInstruction)
	}

	if b.notice != "" {
		prompt.WriteString("\n\n")
		prompt.WriteString(b.notice)
	}

	return prompt.String()
}

// RenderCurrentResults describes the listings found for the current message
func RenderCurrentResults(query, country string, total int, jobs []store.JobListing) string {
	var sb strings.Builder
	sb.WriteString("=== Job search results for this message ===\n")
	fmt.Fprintf(&sb, "Query: %s\n", query)
	if country != "" {
		fmt.Fprintf(&sb, "Country: %s\n", country)
	}
	fmt.Fprintf(&sb, "Results found: %d (showing %d)\n", total, len(jobs))

	if len(jobs) == 0 {
		sb.WriteString("No job offer matched this search.\n")
		return sb.String()
	}

	for i, job := range jobs {
		fmt.Fprintf(&sb, "\n%d. %s at %s\n", i+1, jobmemory.ValueOrUnknown(job.Title), jobmemory.ValueOrUnknown(job.Employer))
		fmt.Fprintf(&sb, "   Location: %s\n", jobmemory.ValueOrUnknown(job.Location()))
		fmt.Fprintf(&sb, "   Remote: %s\n", jobmemory.RemoteLabel(job))
		fmt.Fprintf(&sb, "   Employment type: %s\n", jobmemory.ValueOrUnknown(job.EmploymentType))
		fmt.Fprintf(&sb, "   Apply: %s\n", jobmemory.ValueOrUnknown(job.ApplyLink))
	}
	return sb.String()
}

// RetrievalQuery seeds document retrieval with the last prior user message, if any
func RetrievalQuery(augmented string, prior []store.Turn) string {
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].Role == store.RoleUser && strings.TrimSpace(prior[i].Content) != "" {
			return prior[i].Content + "\n" + augmented
		}
	}
	return augmented
}

// BuildQAPrompt fills the question answering template with the retrieved documents
func BuildQAPrompt(question string, docs []store.Document) string {
	knowledge := constant.NoKnowledgeContext
	if len(docs) > 0 {
		parts := make([]string, 0, len(docs))
		for _, d := range docs {
			if content := strings.TrimSpace(d.Content); content != "" {
				parts = append(parts, content)
			}
		}
		if len(parts) > 0 {
			knowledge = strings.Join(parts, "\n\n")
		}
	}
	return fmt.Sprintf(constant.QAPromptTemplate, knowledge, question)
}
