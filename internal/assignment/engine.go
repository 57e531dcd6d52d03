// Package assignment assigns exams to doctors and keeps every doctor's
// exam count equal to a full scan of the exam collection.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"radiology-portal/internal/models"
)

var (
	ErrUnknownDoctor = errors.New("unknown doctor")
	ErrUnknownExam   = errors.New("unknown exam")
	ErrNoDoctors     = errors.New("no doctors available")
)

// Engine serializes its operations: each one reads, writes and recounts
// under mu so a stale recount can never be saved over a newer one.
type Engine struct {
	mu   sync.Mutex
	db   DataStore
	pick func(n int) int
}

type Option func(*Engine)

// WithPicker replaces the random doctor picker used by AssignRandom.
func WithPicker(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

func NewEngine(db DataStore, opts ...Option) *Engine {
	e := &Engine{
		db:   db,
		pick: rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// snapshot is one consistent read of the store.
type snapshot struct {
	exams   map[string]*models.Exam
	doctors []*models.Doctor
}

func (e *Engine) load(ctx context.Context) (*snapshot, error) {
	exams, err := e.db.ListExams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	doctors, err := e.db.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	s := &snapshot{exams: make(map[string]*models.Exam, len(exams)), doctors: doctors}
	for _, ex := range exams {
		if ex != nil {
			s.exams[ex.ID] = ex
		}
	}
	return s, nil
}

// doctor resolves ref against a doctor's name or id.
func (s *snapshot) doctor(ref string) (*models.Doctor, bool) {
	for _, d := range s.doctors {
		if d.Name == ref || d.ID == ref {
			return d, true
		}
	}
	return nil, false
}

func (s *snapshot) checkExams(examIDs []string) error {
	for _, id := range examIDs {
		if _, ok := s.exams[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownExam, id)
		}
	}
	return nil
}

// Doctor resolves ref, a doctor name or id.
func (e *Engine) Doctor(ctx context.Context, ref string) (*models.Doctor, error) {
	doctors, err := e.db.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	s := &snapshot{doctors: doctors}
	d, ok := s.doctor(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDoctor, ref)
	}
	return d, nil
}

// Assign gives every exam in examIDs to doctor, referenced by name or id.
// Nothing is written unless the doctor and all exams exist.
func (e *Engine) Assign(ctx context.Context, examIDs []string, doctor string) ([]*models.Doctor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := s.doctor(doctor)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDoctor, doctor)
	}
	if err := s.checkExams(examIDs); err != nil {
		return nil, err
	}

	plan := make(map[string]string, len(examIDs))
	for _, id := range examIDs {
		plan[id] = d.Name
	}
	return e.apply(ctx, examIDs, plan)
}

// AssignRandom gives each exam to a doctor drawn uniformly at random.
func (e *Engine) AssignRandom(ctx context.Context, examIDs []string) ([]*models.Doctor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(s.doctors) == 0 {
		return nil, ErrNoDoctors
	}
	if err := s.checkExams(examIDs); err != nil {
		return nil, err
	}

	plan := make(map[string]string, len(examIDs))
	for _, id := range examIDs {
		plan[id] = s.doctors[e.pick(len(s.doctors))].Name
	}
	return e.apply(ctx, examIDs, plan)
}

// AssignBalanced gives each exam, in order, to the doctor with the lowest
// current count. Ties go to the doctor listed first.
func (e *Engine) AssignBalanced(ctx context.Context, examIDs []string) ([]*models.Doctor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(s.doctors) == 0 {
		return nil, ErrNoDoctors
	}
	if err := s.checkExams(examIDs); err != nil {
		return nil, err
	}

	load := count(s.doctors, s.exams)
	plan := make(map[string]string, len(examIDs))
	for _, id := range examIDs {
		if prev := s.exams[id].AssignedDoctor; prev != "" {
			if _, ok := load[prev]; ok {
				load[prev]--
			}
		}

		var best *models.Doctor
		minLoad := int(^uint(0) >> 1)
		for _, d := range s.doctors {
			if load[d.Name] < minLoad {
				minLoad = load[d.Name]
				best = d
			}
		}
		load[best.Name]++
		plan[id] = best.Name
	}
	return e.apply(ctx, examIDs, plan)
}

// Unassign clears the doctor of every exam in examIDs.
func (e *Engine) Unassign(ctx context.Context, examIDs []string) ([]*models.Doctor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkExams(examIDs); err != nil {
		return nil, err
	}

	plan := make(map[string]string, len(examIDs))
	for _, id := range examIDs {
		plan[id] = ""
	}
	return e.apply(ctx, examIDs, plan)
}

func (e *Engine) apply(ctx context.Context, examIDs []string, plan map[string]string) ([]*models.Doctor, error) {
	for _, id := range examIDs {
		if err := e.db.SetAssignedDoctor(ctx, id, plan[id]); err != nil {
			return nil, fmt.Errorf("assign exam %s: %w", id, err)
		}
	}
	return e.recount(ctx)
}

// Recount scans every exam and stores each doctor's number of assigned
// exams. Doctors without exams get zero.
func (e *Engine) Recount(ctx context.Context) ([]*models.Doctor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recount(ctx)
}

func (e *Engine) recount(ctx context.Context) ([]*models.Doctor, error) {
	s, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	counts := count(s.doctors, s.exams)
	if err := e.db.SaveDoctorCounts(ctx, counts); err != nil {
		return nil, fmt.Errorf("save doctor counts: %w", err)
	}

	out := make([]*models.Doctor, len(s.doctors))
	for i, d := range s.doctors {
		c := *d
		c.ExamCount = counts[d.Name]
		out[i] = &c
	}
	return out, nil
}

// count is the full doctors x exams scan.
func count(doctors []*models.Doctor, exams map[string]*models.Exam) map[string]int {
	counts := make(map[string]int, len(doctors))
	for _, d := range doctors {
		n := 0
		for _, ex := range exams {
			if ex.AssignedDoctor == d.Name {
				n++
			}
		}
		counts[d.Name] = n
	}
	return counts
}
