package assignment

import (
	"context"

	"radiology-portal/internal/models"
)

// DataStore defines the storage operations the engine needs.
type DataStore interface {
	ListExams(ctx context.Context) ([]*models.Exam, error)
	ListDoctors(ctx context.Context) ([]*models.Doctor, error)
	SetAssignedDoctor(ctx context.Context, examID, doctor string) error
	SaveDoctorCounts(ctx context.Context, counts map[string]int) error
}
