package store

import "strings"

// EmploymentType mirrors the employment types accepted by the job search API
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "FULLTIME"
	EmploymentPartTime   EmploymentType = "PARTTIME"
	EmploymentContractor EmploymentType = "CONTRACTOR"
	EmploymentIntern     EmploymentType = "INTERN"
)

// ParseEmploymentType normalizes s ("full-time", "FULL_TIME", ...), returning "" when it is not a known type
func ParseEmploymentType(s string) EmploymentType {
	normalized := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToUpper(strings.TrimSpace(s)))
	switch EmploymentType(normalized) {
	case EmploymentFullTime:
		return EmploymentFullTime
	case EmploymentPartTime:
		return EmploymentPartTime
	case EmploymentContractor:
		return EmploymentContractor
	case EmploymentIntern:
		return EmploymentIntern
	}
	return ""
}

// JobListing is a job offer as returned by the external search API.
// Empty strings and nil pointers mean the upstream did not provide the field.
type JobListing struct {
	ID             string `json:"job_id"`
	Title          string `json:"job_title"`
	Employer       string `json:"employer_name"`
	City           string `json:"job_city,omitempty"`
	State          string `json:"job_state,omitempty"`
	Country        string `json:"job_country,omitempty"`
	IsRemote       *bool  `json:"job_is_remote,omitempty"`
	EmploymentType string `json:"job_employment_type,omitempty"`
	Description    string `json:"job_description,omitempty"`
	ApplyLink      string `json:"job_apply_link,omitempty"`
	Publisher      string `json:"job_publisher,omitempty"`
	PostedAt       string `json:"job_posted_at_datetime_utc,omitempty"`
}

// Location joins the known location parts, or returns "" when none is known
func (j JobListing) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{j.City, j.State, j.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Remote reports the remote flag and whether it is known
func (j JobListing) Remote() (remote bool, known bool) {
	if j.IsRemote == nil {
		return false, false
	}
	return *j.IsRemote, true
}
