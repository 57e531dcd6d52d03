package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the fields an exam needs before it is stored.
func (e Exam) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.PatientName, validation.Required),
		validation.Field(&e.ExamID, validation.Required),
		validation.Field(&e.Date, validation.Required),
		validation.Field(&e.Category, validation.In(CategoryInbox, CategoryPending, CategorySecondOpinion, CategoryCompleted)),
		validation.Field(&e.AIStatus, validation.In(AIStatusGreen, AIStatusOrange, AIStatusRed)),
		validation.Field(&e.Site, validation.In(SitePrincipal, SitePoliclinique)),
		validation.Field(&e.Priority, validation.In(PriorityNormal, PriorityHigh)),
	)
}
