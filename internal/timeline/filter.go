package timeline

import (
	"time"

	"radiology-portal/internal/models"
)

type View string

const (
	ViewDepartment View = "department"
	ViewAnatomy    View = "anatomy"
)

// All disables the department or anatomy selection of a Filter.
const All = "ALL"

type Period string

const (
	PeriodAll                 Period = "ALL"
	PeriodWeek                Period = "1 Week"
	PeriodMonth               Period = "1 Month"
	PeriodThreeMonths         Period = "3 Months"
	PeriodSixMonths           Period = "6 Months"
	PeriodYear                Period = "1 Year"
	PeriodThreeYears          Period = "3 Years"
	PeriodOlderThanThreeYears Period = "More than 3 years"
)

var Periods = []Period{
	PeriodAll, PeriodWeek, PeriodMonth, PeriodThreeMonths,
	PeriodSixMonths, PeriodYear, PeriodThreeYears, PeriodOlderThanThreeYears,
}

// Cutoff returns the boundary date of p relative to now. ok is false for
// PeriodAll and unknown periods.
func (p Period) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, -1, 0), true
	case PeriodThreeMonths:
		return now.AddDate(0, -3, 0), true
	case PeriodSixMonths:
		return now.AddDate(0, -6, 0), true
	case PeriodYear:
		return now.AddDate(-1, 0, 0), true
	case PeriodThreeYears, PeriodOlderThanThreeYears:
		return now.AddDate(-3, 0, 0), true
	}
	return time.Time{}, false
}

// Filter is the calendar-map selection.
type Filter struct {
	View       View   `json:"view"`
	Department string `json:"department"`
	Anatomy    string `json:"anatomy"`
	Period     Period `json:"period"`
}

func DefaultFilter() Filter {
	return Filter{View: ViewDepartment, Department: All, Anatomy: All, Period: PeriodThreeYears}
}

// Apply keeps the points selected by f. The department choice only applies
// in the department view and the anatomy choice only in the anatomy view;
// anatomy "Others" keeps the points outside the known regions. Periods keep
// points on or after the cutoff, future appointments included, except
// "More than 3 years" which keeps the points strictly before it.
func (f Filter) Apply(points []models.ExamPoint, regions *Lanes, now time.Time) []models.ExamPoint {
	out := make([]models.ExamPoint, 0, len(points))
	cutoff, bounded := f.Period.Cutoff(now)

	for _, p := range points {
		if f.View == ViewDepartment && f.Department != "" && f.Department != All && p.Department != f.Department {
			continue
		}
		if f.View == ViewAnatomy && f.Anatomy != "" && f.Anatomy != All {
			if f.Anatomy == OthersLane {
				if regions != nil && regions.Known(p.AnatomicalRegion) {
					continue
				}
			} else if p.AnatomicalRegion != f.Anatomy {
				continue
			}
		}
		if bounded {
			if f.Period == PeriodOlderThanThreeYears {
				if !p.Date.Before(cutoff) {
					continue
				}
			} else if p.Date.Before(cutoff) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
