package jobsearch

import (
	"fmt"
	"strings"

	"job-engine-be/pkg/store"
)

// FormatSummary renders one listing as a short markdown line
func FormatSummary(job store.JobListing) string {
	title := job.Title
	if strings.TrimSpace(title) == "" {
		title = "Titre non spécifié"
	}
	company := job.Employer
	if strings.TrimSpace(company) == "" {
		company = "Entreprise non spécifiée"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** chez %s", title, company)
	if loc := job.Location(); loc != "" {
		sb.WriteString(" - " + loc)
	}

	remote, _ := job.Remote()
	switch {
	case job.EmploymentType != "" && remote:
		fmt.Fprintf(&sb, " (%s, Télétravail)", job.EmploymentType)
	case job.EmploymentType != "":
		fmt.Fprintf(&sb, " (%s)", job.EmploymentType)
	case remote:
		sb.WriteString(" (Télétravail)")
	}

	if job.PostedAt != "" {
		sb.WriteString("\nPublié le: " + job.PostedAt)
	}
	return sb.String()
}
