package worklist

import (
	"strings"

	"radiology-portal/internal/models"
)

const (
	localDateLayout = "02/01/2006"
	isoDateLayout   = "2006-01-02"
)

// MatchesQuery is the free-text part of the pipeline on its own. The match
// is a case-insensitive substring test against the patient name (whole and
// per token), the assigned doctor, the accession number, both date
// renderings, the indication, the AI status and the exam type.
func MatchesQuery(e *models.Exam, query string) bool {
	q := normalizeQuery(query)
	if q == "" {
		return true
	}
	return e != nil && matchesQuery(e, q)
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func matchesQuery(e *models.Exam, q string) bool {
	if nameMatches(e.PatientName, q) || nameMatches(e.AssignedDoctor, q) {
		return true
	}

	fields := [...]string{
		e.ExamID,
		e.Date.Format(localDateLayout),
		e.Date.Format(isoDateLayout),
		e.Indication,
		string(e.AIStatus),
		e.ExamType,
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func nameMatches(name, q string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, token := range strings.Fields(lower) {
		if strings.Contains(token, q) {
			return true
		}
	}
	return strings.Contains(lower, q)
}
