package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"job-engine-be/internal/constant"
	"job-engine-be/internal/pkg/logger"
	"job-engine-be/pkg/llm"
	"job-engine-be/pkg/store"

	"github.com/kaptinlin/jsonrepair"
)

// Source tells which tier produced a Result
type Source string

const (
	SourceGate     Source = "gate"
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

var errNoJSON = errors.New("no JSON object in extraction response")

// Result is the outcome of classifying one user message
type Result struct {
	IsJobSearch    bool                 `json:"is_job_search"`
	Query          string               `json:"query,omitempty"`
	Country        string               `json:"country,omitempty"`
	Remote         *bool                `json:"remote,omitempty"` // nil when the message does not say
	EmploymentType store.EmploymentType `json:"employment_type,omitempty"`
	Source         Source               `json:"-"`
}

// jobKeywords are matched as plain substrings of the lowercased message
var jobKeywords = []string{
	"emploi", "job", "travail", "poste", "carrière", "recrutement",
	"cherche", "recherche", "offre", "candidature", "embauche",
	"développeur", "ingénieur", "manager", "designer", "analyste",
}

var (
	englishKeywordPattern = regexp.MustCompile(`\b(roles?|hiring|careers?|candidates?|search(ing)?|vacanc(y|ies)|openings?)\b`)

	searchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(cherche|recherche|trouve|trouver).*?(emploi|job|travail|poste)`),
		regexp.MustCompile(`(emploi|job|travail|poste).*?(en|à|dans|pour)`),
		regexp.MustCompile(`(offre|offres).*?(emploi|travail)`),
		regexp.MustCompile(`(disponible|disponibles).*?(emploi|job|travail)`),
		regexp.MustCompile(`(looking for|find|search(ing)? for).*?(job|position|role|work)`),
	}
)

// Classifier decides whether a message asks for a job search.
// It never returns an error: every backend failure degrades to the local heuristic.
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewClassifier(llmProvider llm.LLMProvider, logger logger.ILogger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Classify runs the keyword gate, then the LLM extraction, then the fallback
func (c *Classifier) Classify(ctx context.Context, message string) Result {
	if !PassesGate(message) {
		return Result{IsJobSearch: false, Source: SourceGate}
	}

	if c.llmProvider == nil {
		return Fallback(message)
	}

	prompt := fmt.Sprintf(constant.JobIntentExtractionPrompt, message)
	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		c.logger.Warn("INTENT", "Extraction call failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return Fallback(message)
	}

	result, err := parseExtraction(response)
	if err != nil {
		c.logger.Warn("INTENT", "Extraction parsing failed, using fallback", map[string]interface{}{
			"error":    err.Error(),
			"response": response,
		})
		return Fallback(message)
	}

	c.logger.Debug("INTENT", "Message classified", map[string]interface{}{
		"is_job_search":   result.IsJobSearch,
		"query":           result.Query,
		"country":         result.Country,
		"remote":          result.Remote,
		"employment_type": result.EmploymentType,
	})
	return result
}

// PassesGate reports whether the message looks like a job search at all
func PassesGate(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range jobKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if englishKeywordPattern.MatchString(lower) {
		return true
	}
	for _, p := range searchPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

type extraction struct {
	Query          *string     `json:"query"`
	Country        *string     `json:"country"`
	Remote         interface{} `json:"remote"`
	EmploymentType *string     `json:"employment_type"`
}

func parseExtraction(response string) (Result, error) {
	text := stripFences(response)
	if text == "" || strings.EqualFold(strings.Trim(text, `"`), "null") {
		return Result{IsJobSearch: false, Source: SourceLLM}, nil
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return Result{}, errNoJSON
	}
	if end := strings.LastIndex(text, "}"); end > start {
		text = text[start : end+1]
	} else {
		text = text[start:]
	}

	var ext extraction
	if err := json.Unmarshal([]byte(text), &ext); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(text)
		if repairErr != nil {
			return Result{}, fmt.Errorf("repair extraction json: %w", repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &ext); err != nil {
			return Result{}, fmt.Errorf("unmarshal extraction: %w", err)
		}
	}

	result := Result{Source: SourceLLM}
	if ext.Query == nil || strings.TrimSpace(*ext.Query) == "" {
		return result, nil
	}

	result.IsJobSearch = true
	result.Query = strings.TrimSpace(*ext.Query)
	if ext.Country != nil {
		result.Country = NormalizeCountry(*ext.Country)
	}
	result.Remote = asBool(ext.Remote)
	if ext.EmploymentType != nil {
		result.EmploymentType = store.ParseEmploymentType(*ext.EmploymentType)
	}
	return result, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func asBool(v interface{}) *bool {
	yes, no := true, false
	switch b := v.(type) {
	case bool:
		return &b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "oui", "1":
			return &yes
		case "false", "no", "non", "0":
			return &no
		}
	}
	return nil
}
