package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"radiology-portal/internal/models"
)

// MemoryStore keeps everything in process. Reads hand out copies.
type MemoryStore struct {
	mu sync.RWMutex

	exams   []*models.Exam
	doctors []*models.Doctor

	points      []models.ExamPoint
	departments []models.Department
	regions     []models.AnatomyRegion
	records     []models.PatientRecord

	newID func() string
}

func NewMemoryStore(seed Seed) *MemoryStore {
	s := &MemoryStore{
		points:      slices.Clone(seed.ExamPoints),
		departments: slices.Clone(seed.Departments),
		regions:     slices.Clone(seed.AnatomyRegions),
		records:     slices.Clone(seed.PatientRecords),
		newID:       uuid.NewString,
	}
	for _, ex := range seed.Exams {
		s.exams = append(s.exams, ex.Clone())
	}
	for _, d := range seed.Doctors {
		c := *d
		s.doctors = append(s.doctors, &c)
	}
	return s
}

func (s *MemoryStore) find(id string) (int, error) {
	for i, ex := range s.exams {
		if ex.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrExamNotFound, id)
}

func (s *MemoryStore) ListExams(ctx context.Context) ([]*models.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Exam, len(s.exams))
	for i, ex := range s.exams {
		out[i] = ex.Clone()
	}
	return out, nil
}

func (s *MemoryStore) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return s.exams[i].Clone(), nil
}

func (s *MemoryStore) CreateExam(ctx context.Context, exam *models.Exam) (*models.Exam, error) {
	if exam == nil {
		return nil, fmt.Errorf("exam cannot be nil")
	}
	ex := exam.Clone()
	if err := prepare(ex, s.newID); err != nil {
		return nil, fmt.Errorf("invalid exam: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.find(ex.ID); err == nil {
		return nil, fmt.Errorf("exam %s already exists", ex.ID)
	}
	s.exams = append(s.exams, ex)
	return ex.Clone(), nil
}

func (s *MemoryStore) UpdateExam(ctx context.Context, id string, patch ExamPatch) (*models.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.find(id)
	if err != nil {
		return nil, err
	}
	ex := s.exams[i].Clone()
	patch.apply(ex)
	if err := ex.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exam: %w", err)
	}
	s.exams[i] = ex
	return ex.Clone(), nil
}

func (s *MemoryStore) DeleteExam(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.find(id)
	if err != nil {
		return err
	}
	s.exams = slices.Delete(s.exams, i, i+1)
	return nil
}

func (s *MemoryStore) MoveExam(ctx context.Context, id string, to models.Category) (*models.Exam, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, to)
	}
	return s.mutate(id, func(ex *models.Exam) { ex.Category = to })
}

func (s *MemoryStore) SetAssignedDoctor(ctx context.Context, examID, doctor string) error {
	_, err := s.mutate(examID, func(ex *models.Exam) { ex.AssignedDoctor = doctor })
	return err
}

func (s *MemoryStore) SetExpandedAll(ctx context.Context, category models.Category, expanded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ex := range s.exams {
		if category == "" || ex.Category == category {
			ex.IsExpanded = expanded
		}
	}
	return nil
}

func (s *MemoryStore) TogglePinned(ctx context.Context, id string) (*models.Exam, error) {
	return s.mutate(id, func(ex *models.Exam) { ex.IsPinned = !ex.IsPinned })
}

func (s *MemoryStore) ToggleSelected(ctx context.Context, id string) (*models.Exam, error) {
	return s.mutate(id, func(ex *models.Exam) { ex.IsSelected = !ex.IsSelected })
}

func (s *MemoryStore) SetPriority(ctx context.Context, id string, p models.Priority) (*models.Exam, error) {
	if p != models.PriorityNormal && p != models.PriorityHigh {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, p)
	}
	return s.mutate(id, func(ex *models.Exam) { ex.Priority = p })
}

func (s *MemoryStore) mutate(id string, fn func(*models.Exam)) (*models.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.find(id)
	if err != nil {
		return nil, err
	}
	fn(s.exams[i])
	return s.exams[i].Clone(), nil
}

func (s *MemoryStore) ListDoctors(ctx context.Context) ([]*models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Doctor, len(s.doctors))
	for i, d := range s.doctors {
		c := *d
		out[i] = &c
	}
	return out, nil
}

// SaveDoctorCounts stores counts keyed by doctor name. Every name must
// belong to a known doctor.
func (s *MemoryStore) SaveDoctorCounts(ctx context.Context, counts map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := make(map[string]*models.Doctor, len(s.doctors))
	for _, d := range s.doctors {
		byName[d.Name] = d
	}
	for name := range counts {
		if _, ok := byName[name]; !ok {
			return fmt.Errorf("%w: %s", ErrDoctorNotFound, name)
		}
	}
	for name, n := range counts {
		byName[name].ExamCount = n
	}
	return nil
}

func (s *MemoryStore) ListExamPoints(ctx context.Context) ([]models.ExamPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.points), nil
}

func (s *MemoryStore) ListDepartments(ctx context.Context) ([]models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.departments), nil
}

func (s *MemoryStore) ListAnatomyRegions(ctx context.Context) ([]models.AnatomyRegion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.regions), nil
}

func (s *MemoryStore) ListPatientRecords(ctx context.Context) ([]models.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}
