package worklist

import (
	"radiology-portal/internal/models"
)

// Apply returns the exams matching every active predicate of c, ordered by
// c.Sort. The input slice and its exams are left untouched.
func Apply(exams []*models.Exam, c Criteria) []*models.Exam {
	out := make([]*models.Exam, 0, len(exams))
	if c.inverted() {
		return out
	}

	q := normalizeQuery(c.Query)
	for _, e := range exams {
		if e != nil && matches(e, c, q) {
			out = append(out, e)
		}
	}

	Sort(out, c.Sort)
	return out
}

// Matches reports whether a single exam passes every predicate of c.
func Matches(e *models.Exam, c Criteria) bool {
	if e == nil || c.inverted() {
		return false
	}
	return matches(e, c, normalizeQuery(c.Query))
}

func matches(e *models.Exam, c Criteria, q string) bool {
	if c.Category != "" && e.Category != c.Category {
		return false
	}
	if c.Site != "" && e.Site != c.Site {
		return false
	}
	if c.Modality != "" && e.Modality() != c.Modality {
		return false
	}
	if c.Doctor != "" && e.AssignedDoctor != c.Doctor {
		return false
	}
	switch c.Report {
	case ReportReported:
		if !e.Reported {
			return false
		}
	case ReportUnreported:
		if e.Reported {
			return false
		}
	}
	if !c.From.IsZero() && e.Date.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && e.Date.After(endOfDay(c.To)) {
		return false
	}
	return q == "" || matchesQuery(e, q)
}

// CountByCategory returns the number of exams in each workflow box. Every
// box is present in the result, possibly with a zero count.
func CountByCategory(exams []*models.Exam) map[models.Category]int {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = 0
	}
	for _, e := range exams {
		if e != nil {
			counts[e.Category]++
		}
	}
	return counts
}
