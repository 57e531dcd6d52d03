package worklist

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"radiology-portal/internal/models"
)

// Collation is the locale used for patient name ordering.
var Collation = language.French

// Sort orders exams in place. Ties on the sort key are broken by exam ID so
// that a descending order is always the exact reverse of the ascending one.
func Sort(exams []*models.Exam, order SortOrder) {
	switch ParseSortOrder(string(order)) {
	case SortDateAsc:
		slices.SortFunc(exams, compareDate)
	case SortPatientNameAsc:
		slices.SortFunc(exams, nameComparator())
	case SortPatientNameDesc:
		byName := nameComparator()
		slices.SortFunc(exams, func(a, b *models.Exam) int { return byName(b, a) })
	default:
		slices.SortFunc(exams, func(a, b *models.Exam) int { return compareDate(b, a) })
	}
}

func compareDate(a, b *models.Exam) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// nameComparator builds a fresh collator per sort; collate.Collator keeps
// internal buffers and is not safe for concurrent use.
func nameComparator() func(a, b *models.Exam) int {
	col := collate.New(Collation)
	return func(a, b *models.Exam) int {
		if c := col.CompareString(a.PatientName, b.PatientName); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
}
