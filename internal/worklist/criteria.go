// Package worklist implements the exam list filter, search and sort
// pipeline. Every function is pure: inputs are never mutated.
package worklist

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"radiology-portal/internal/models"
)

type SortOrder string

const (
	SortDateDesc        SortOrder = "date-desc"
	SortDateAsc         SortOrder = "date-asc"
	SortPatientNameAsc  SortOrder = "patient-name-asc"
	SortPatientNameDesc SortOrder = "patient-name-desc"
)

// ParseSortOrder maps unknown values to SortDateDesc.
func ParseSortOrder(s string) SortOrder {
	switch o := SortOrder(s); o {
	case SortDateDesc, SortDateAsc, SortPatientNameAsc, SortPatientNameDesc:
		return o
	}
	return SortDateDesc
}

func (o SortOrder) Label() string {
	switch ParseSortOrder(string(o)) {
	case SortDateAsc:
		return "Date ASC"
	case SortPatientNameAsc:
		return "Patient Name ASC"
	case SortPatientNameDesc:
		return "Patient Name DESC"
	}
	return "Date DESC"
}

type ReportStatus string

const (
	ReportAny        ReportStatus = ""
	ReportReported   ReportStatus = "reported"
	ReportUnreported ReportStatus = "unreported"
)

// Criteria selects and orders the visible part of the worklist. Zero
// values disable a predicate: an empty Category, Site, Modality, Doctor or
// Report matches everything, as does a zero From or To.
type Criteria struct {
	Category models.Category `json:"category"`
	Query    string          `json:"query"`
	Sort     SortOrder       `json:"sort"`
	Site     models.Site     `json:"site"`
	Modality string          `json:"modality"`
	Doctor   string          `json:"doctor"`
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Report   ReportStatus    `json:"report"`
}

var ErrInvertedRange = errors.New("date range start is after its end")

// Validate reports criteria a caller should reject before filtering.
// Apply itself never fails; it returns an empty result for an inverted
// range instead.
func (c Criteria) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Category, validation.In(
			models.CategoryInbox, models.CategoryPending,
			models.CategorySecondOpinion, models.CategoryCompleted)),
		validation.Field(&c.Site, validation.In(models.SitePrincipal, models.SitePoliclinique)),
		validation.Field(&c.Modality, validation.In("CT", "MR", "US", "CR", "MG")),
		validation.Field(&c.Report, validation.In(ReportReported, ReportUnreported)),
		validation.Field(&c.To, validation.By(func(interface{}) error {
			if c.inverted() {
				return ErrInvertedRange
			}
			return nil
		})),
	)
}

func (c Criteria) inverted() bool {
	return !c.From.IsZero() && !c.To.IsZero() && c.From.After(endOfDay(c.To))
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
