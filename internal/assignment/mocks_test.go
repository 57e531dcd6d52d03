package assignment

import (
	"context"

	"radiology-portal/internal/models"
)

type MockDataStore struct {
	ListExamsFunc         func(ctx context.Context) ([]*models.Exam, error)
	ListDoctorsFunc       func(ctx context.Context) ([]*models.Doctor, error)
	SetAssignedDoctorFunc func(ctx context.Context, examID, doctor string) error
	SaveDoctorCountsFunc  func(ctx context.Context, counts map[string]int) error
}

func (m *MockDataStore) ListExams(ctx context.Context) ([]*models.Exam, error) {
	return m.ListExamsFunc(ctx)
}

func (m *MockDataStore) ListDoctors(ctx context.Context) ([]*models.Doctor, error) {
	return m.ListDoctorsFunc(ctx)
}

func (m *MockDataStore) SetAssignedDoctor(ctx context.Context, examID, doctor string) error {
	return m.SetAssignedDoctorFunc(ctx, examID, doctor)
}

func (m *MockDataStore) SaveDoctorCounts(ctx context.Context, counts map[string]int) error {
	if m.SaveDoctorCountsFunc != nil {
		return m.SaveDoctorCountsFunc(ctx, counts)
	}
	return nil
}

// fakeData backs a MockDataStore with in-memory exams and doctors.
type fakeData struct {
	exams   []*models.Exam
	doctors []*models.Doctor
	writes  int
	saved   map[string]int
}

func (f *fakeData) store() *MockDataStore {
	return &MockDataStore{
		ListExamsFunc: func(ctx context.Context) ([]*models.Exam, error) {
			return f.exams, nil
		},
		ListDoctorsFunc: func(ctx context.Context) ([]*models.Doctor, error) {
			return f.doctors, nil
		},
		SetAssignedDoctorFunc: func(ctx context.Context, examID, doctor string) error {
			f.writes++
			for _, ex := range f.exams {
				if ex.ID == examID {
					ex.AssignedDoctor = doctor
				}
			}
			return nil
		},
		SaveDoctorCountsFunc: func(ctx context.Context, counts map[string]int) error {
			f.saved = counts
			for _, d := range f.doctors {
				d.ExamCount = counts[d.Name]
			}
			return nil
		},
	}
}
