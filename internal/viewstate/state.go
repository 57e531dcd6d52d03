// Package viewstate holds the worklist view selection as an immutable
// value and republishes the filtered exam list whenever it changes.
package viewstate

import (
	"fmt"
	"time"

	"radiology-portal/internal/models"
	"radiology-portal/internal/worklist"
)

type Field string

const (
	FieldCategory Field = "category"
	FieldQuery    Field = "query"
	FieldSort     Field = "sort"
	FieldSite     Field = "site"
	FieldModality Field = "modality"
	FieldDoctor   Field = "doctor"
	FieldFrom     Field = "from"
	FieldTo       Field = "to"
	FieldReport   Field = "report"
	// FieldReset clears every secondary filter and the query, keeping the
	// category and sort order.
	FieldReset Field = "reset"
)

// DateLayout is the wire format of FieldFrom and FieldTo values.
const DateLayout = "2006-01-02"

// Event is one user input: a field and its new raw value.
type Event struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// State is the current view selection. The zero value is not useful; start
// from Initial. State values are never modified in place.
type State struct {
	criteria worklist.Criteria
}

func Initial() State {
	return State{criteria: worklist.Criteria{
		Category: models.CategoryInbox,
		Sort:     worklist.SortDateDesc,
	}}
}

func (s State) Criteria() worklist.Criteria {
	return s.criteria
}

func (s State) Category() models.Category {
	return s.criteria.Category
}

// With returns the state after e. Moving to another category clears the
// search query.
func (s State) With(e Event) (State, error) {
	c := s.criteria
	switch e.Field {
	case FieldCategory:
		next := models.Category(e.Value)
		if !next.Valid() {
			return s, fmt.Errorf("unknown category %q", e.Value)
		}
		if next != c.Category {
			c.Query = ""
		}
		c.Category = next
	case FieldQuery:
		c.Query = e.Value
	case FieldSort:
		c.Sort = worklist.ParseSortOrder(e.Value)
	case FieldSite:
		c.Site = models.Site(e.Value)
	case FieldModality:
		c.Modality = e.Value
	case FieldDoctor:
		c.Doctor = e.Value
	case FieldFrom, FieldTo:
		var t time.Time
		if e.Value != "" {
			parsed, err := time.Parse(DateLayout, e.Value)
			if err != nil {
				return s, fmt.Errorf("invalid %s date: %w", e.Field, err)
			}
			t = parsed
		}
		if e.Field == FieldFrom {
			c.From = t
		} else {
			c.To = t
		}
	case FieldReport:
		c.Report = worklist.ReportStatus(e.Value)
	case FieldReset:
		c = worklist.Criteria{Category: c.Category, Sort: c.Sort}
	default:
		return s, fmt.Errorf("unknown field %q", e.Field)
	}

	// An inverted date range is a valid state; it selects nothing.
	check := c
	check.From, check.To = time.Time{}, time.Time{}
	if err := check.Validate(); err != nil {
		return s, err
	}
	return State{criteria: c}, nil
}
