// Package store holds the exam worklist, the doctors and the patient
// timeline data, in memory or in Postgres.
package store

import (
	"context"
	"errors"
	"time"

	"radiology-portal/internal/models"
)

var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPriority = errors.New("invalid priority")
)

// Store is implemented by MemoryStore and PostgresStore.
type Store interface {
	ListExams(ctx context.Context) ([]*models.Exam, error)
	GetExam(ctx context.Context, id string) (*models.Exam, error)
	CreateExam(ctx context.Context, exam *models.Exam) (*models.Exam, error)
	UpdateExam(ctx context.Context, id string, patch ExamPatch) (*models.Exam, error)
	DeleteExam(ctx context.Context, id string) error
	MoveExam(ctx context.Context, id string, to models.Category) (*models.Exam, error)
	SetAssignedDoctor(ctx context.Context, examID, doctor string) error
	SetExpandedAll(ctx context.Context, category models.Category, expanded bool) error
	TogglePinned(ctx context.Context, id string) (*models.Exam, error)
	ToggleSelected(ctx context.Context, id string) (*models.Exam, error)
	SetPriority(ctx context.Context, id string, p models.Priority) (*models.Exam, error)

	ListDoctors(ctx context.Context) ([]*models.Doctor, error)
	SaveDoctorCounts(ctx context.Context, counts map[string]int) error

	ListExamPoints(ctx context.Context) ([]models.ExamPoint, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	ListAnatomyRegions(ctx context.Context) ([]models.AnatomyRegion, error)
	ListPatientRecords(ctx context.Context) ([]models.PatientRecord, error)
}

// ExamPatch is a partial update; nil fields are left unchanged. Category
// is not patchable: MoveExam is the only way to change it.
type ExamPatch struct {
	PatientName *string          `json:"patient_name,omitempty"`
	ExamType    *string          `json:"exam_type,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	Indication  *string          `json:"indication,omitempty"`
	AIStatus    *models.AIStatus `json:"ai_status,omitempty"`
	Site        *models.Site     `json:"site,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	Reported    *bool            `json:"reported,omitempty"`
	IsPinned    *bool            `json:"is_pinned,omitempty"`
}

func (p ExamPatch) apply(e *models.Exam) {
	if p.PatientName != nil {
		e.PatientName = *p.PatientName
	}
	if p.ExamType != nil {
		e.ExamType = *p.ExamType
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Indication != nil {
		e.Indication = *p.Indication
	}
	if p.AIStatus != nil {
		e.AIStatus = *p.AIStatus
	}
	if p.Site != nil {
		e.Site = *p.Site
	}
	if p.Priority != nil {
		e.Priority = *p.Priority
	}
	if p.Reported != nil {
		e.Reported = *p.Reported
	}
	if p.IsPinned != nil {
		e.IsPinned = *p.IsPinned
	}
}

// prepare fills defaults on a new exam and validates it.
func prepare(exam *models.Exam, newID func() string) error {
	if exam.ID == "" {
		exam.ID = newID()
	}
	if exam.Category == "" {
		exam.Category = models.CategoryInbox
	}
	if exam.AIStatus == "" {
		exam.AIStatus = models.AIStatusGreen
	}
	if exam.Site == "" {
		exam.Site = models.SitePrincipal
	}
	if exam.Priority == "" {
		exam.Priority = models.PriorityNormal
	}
	return exam.Validate()
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
