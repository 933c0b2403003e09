package intent

import (
	"regexp"
	"strings"

	"job-engine-be/pkg/store"
)

type termCode struct {
	term string
	code string
}

// countryTable is scanned in order; the first matching name wins
var countryTable = []termCode{
	{"france", "fr"}, {"french", "fr"}, {"paris", "fr"}, {"lyon", "fr"}, {"marseille", "fr"}, {"toulouse", "fr"},
	{"allemagne", "de"}, {"germany", "de"}, {"berlin", "de"},
	{"espagne", "es"}, {"spain", "es"}, {"madrid", "es"},
	{"italie", "it"}, {"italy", "it"}, {"rome", "it"},
	{"belgique", "be"}, {"belgium", "be"}, {"bruxelles", "be"},
	{"suisse", "ch"}, {"switzerland", "ch"}, {"genève", "ch"},
	{"canada", "ca"}, {"montréal", "ca"},
	{"usa", "us"}, {"united states", "us"}, {"états-unis", "us"},
	{"royaume-uni", "gb"}, {"united kingdom", "gb"}, {"london", "gb"}, {"londres", "gb"},
}

var remoteTerms = []string{"remote", "télétravail", "teletravail", "telecommute", "work from home", "à distance", "full remote"}

var onSiteTerms = []string{"présentiel", "presentiel", "sur site", "on-site", "onsite", "in office", "au bureau"}

var employmentTable = []struct {
	term string
	kind store.EmploymentType
}{
	{"temps plein", store.EmploymentFullTime}, {"full-time", store.EmploymentFullTime}, {"full time", store.EmploymentFullTime}, {"fulltime", store.EmploymentFullTime}, {"cdi", store.EmploymentFullTime},
	{"temps partiel", store.EmploymentPartTime}, {"part-time", store.EmploymentPartTime}, {"part time", store.EmploymentPartTime}, {"parttime", store.EmploymentPartTime},
	{"stage", store.EmploymentIntern}, {"stagiaire", store.EmploymentIntern}, {"alternance", store.EmploymentIntern}, {"internship", store.EmploymentIntern}, {"intern", store.EmploymentIntern},
	{"freelance", store.EmploymentContractor}, {"contractor", store.EmploymentContractor}, {"indépendant", store.EmploymentContractor}, {"cdd", store.EmploymentContractor},
}

var titleList = []string{"développeur", "ingénieur", "designer", "manager", "analyste", "data scientist", "python", "java"}

var (
	queryPattern = regexp.MustCompile(`(?:cherche|recherche|trouve|trouver|veut|veux).*?(?:emploi|job|travail|poste).*?((?:développeur|ingénieur|designer|manager|analyste|data|scientist|python|java|javascript|react|vue|angular)[^.?!]*)`)

	// queryStops end the job title, the rest of the sentence is location or contract details
	queryStops = []string{" en ", " à ", " a ", " au ", " aux ", " in ", " dans ", " pour ", " sur ", " avec ", ",", ";"}

	termPatterns = map[string]*regexp.Regexp{}
)

func init() {
	for _, e := range countryTable {
		termPatterns[e.term] = compileTerm(e.term)
	}
	for _, t := range remoteTerms {
		termPatterns[t] = compileTerm(t)
	}
	for _, t := range onSiteTerms {
		termPatterns[t] = compileTerm(t)
	}
	for _, e := range employmentTable {
		termPatterns[e.term] = compileTerm(e.term)
	}
}

// compileTerm matches term as a whole word, letters with accents included
func compileTerm(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(term) + `s?(?:$|[^\p{L}\p{N}])`)
}

func hasTerm(lower, term string) bool {
	if p, ok := termPatterns[term]; ok {
		return p.MatchString(lower)
	}
	return compileTerm(term).MatchString(lower)
}

// Fallback extracts search parameters locally without any backend call.
// It reports a job search only when a job title could be found.
func Fallback(message string) Result {
	lower := strings.ToLower(message)
	result := Result{
		Country:        DetectCountry(lower),
		Remote:         detectRemote(lower),
		EmploymentType: detectEmploymentType(lower),
		Source:         SourceFallback,
	}

	result.Query = extractQuery(lower)
	result.IsJobSearch = result.Query != ""
	return result
}

// DetectCountry returns the ISO code of the first country name found in the text
func DetectCountry(text string) string {
	lower := strings.ToLower(text)
	for _, e := range countryTable {
		if hasTerm(lower, e.term) {
			return e.code
		}
	}
	return ""
}

// NormalizeCountry turns a model-provided country into a lowercase ISO code, or ""
func NormalizeCountry(country string) string {
	c := strings.ToLower(strings.TrimSpace(country))
	if c == "" || c == "null" || c == "none" {
		return ""
	}
	if len(c) == 2 {
		return c
	}
	return DetectCountry(c)
}

// detectRemote returns nil when the text states neither remote nor on-site work
func detectRemote(lower string) *bool {
	for _, t := range remoteTerms {
		if hasTerm(lower, t) {
			remote := true
			return &remote
		}
	}
	for _, t := range onSiteTerms {
		if hasTerm(lower, t) {
			remote := false
			return &remote
		}
	}
	return nil
}

func detectEmploymentType(lower string) store.EmploymentType {
	for _, e := range employmentTable {
		if hasTerm(lower, e.term) {
			return e.kind
		}
	}
	return ""
}

func extractQuery(lower string) string {
	if m := queryPattern.FindStringSubmatch(lower); m != nil {
		if q := cleanQuery(m[1]); q != "" {
			return q
		}
	}
	for _, title := range titleList {
		if strings.Contains(lower, title) {
			return title
		}
	}
	return ""
}

func cleanQuery(q string) string {
	q = " " + q + " "
	cut := len(q)
	for _, stop := range queryStops {
		if i := strings.Index(q, stop); i >= 0 && i < cut {
			cut = i
		}
	}
	return strings.Join(strings.Fields(q[:cut]), " ")
}
