package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"radiology-portal/internal/db"
	"radiology-portal/internal/models"
)

type PostgresStore struct {
	q     *db.Queries
	db    *sql.DB
	newID func() string
}

func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{q: db.New(conn), db: conn, newID: uuid.NewString}
}

func toModel(row db.Exam) (*models.Exam, error) {
	ex := &models.Exam{
		ID:             row.ID,
		PatientName:    row.PatientName,
		ExamID:         row.ExamID,
		ExamType:       row.ExamType,
		Date:           row.Date,
		Indication:     row.Indication,
		AIStatus:       models.AIStatus(row.AIStatus),
		Category:       models.Category(row.Category),
		Site:           models.Site(row.Site),
		Priority:       models.Priority(row.Priority),
		Reported:       row.Reported,
		IsPinned:       row.IsPinned,
		IsExpanded:     row.IsExpanded,
		IsSelected:     row.IsSelected,
		AssignedDoctor: row.AssignedDoctor.String,
	}
	if len(row.Thumbnails) > 0 {
		if err := json.Unmarshal(row.Thumbnails, &ex.Thumbnails); err != nil {
			return nil, fmt.Errorf("decode thumbnails of exam %s: %w", row.ID, err)
		}
	}
	return ex, nil
}

func fromModel(ex *models.Exam) (db.Exam, error) {
	thumbs := ex.Thumbnails
	if thumbs == nil {
		thumbs = []models.Thumbnail{}
	}
	raw, err := json.Marshal(thumbs)
	if err != nil {
		return db.Exam{}, err
	}
	return db.Exam{
		ID:             ex.ID,
		PatientName:    ex.PatientName,
		ExamID:         ex.ExamID,
		ExamType:       ex.ExamType,
		Date:           ex.Date,
		Indication:     ex.Indication,
		AIStatus:       string(ex.AIStatus),
		Category:       string(ex.Category),
		Site:           string(ex.Site),
		Priority:       string(ex.Priority),
		Reported:       ex.Reported,
		IsPinned:       ex.IsPinned,
		IsExpanded:     ex.IsExpanded,
		IsSelected:     ex.IsSelected,
		AssignedDoctor: nullString(ex.AssignedDoctor),
		Thumbnails:     raw,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// examResult maps sql.ErrNoRows onto ErrExamNotFound.
func examResult(id string, row db.Exam, err error) (*models.Exam, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrExamNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return toModel(row)
}

func affected(id string, n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrExamNotFound, id)
	}
	return nil
}

func (s *PostgresStore) ListExams(ctx context.Context) ([]*models.Exam, error) {
	rows, err := s.q.ListExams(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Exam, 0, len(rows))
	for _, r := range rows {
		ex, err := toModel(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}

func (s *PostgresStore) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	row, err := s.q.GetExam(ctx, id)
	return examResult(id, row, err)
}

func (s *PostgresStore) CreateExam(ctx context.Context, exam *models.Exam) (*models.Exam, error) {
	if exam == nil {
		return nil, fmt.Errorf("exam cannot be nil")
	}
	ex := exam.Clone()
	if err := prepare(ex, s.newID); err != nil {
		return nil, fmt.Errorf("invalid exam: %w", err)
	}
	row, err := fromModel(ex)
	if err != nil {
		return nil, err
	}
	if err := s.q.CreateExam(ctx, row); err != nil {
		return nil, fmt.Errorf("insert exam: %w", err)
	}
	return ex, nil
}

func (s *PostgresStore) UpdateExam(ctx context.Context, id string, patch ExamPatch) (*models.Exam, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	q := s.q.WithTx(tx)

	row, err := q.GetExam(ctx, id)
	ex, err := examResult(id, row, err)
	if err != nil {
		return nil, err
	}
	patch.apply(ex)
	if err := ex.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exam: %w", err)
	}
	row, err = fromModel(ex)
	if err != nil {
		return nil, err
	}
	n, err := q.UpdateExam(ctx, row)
	if err := affected(id, n, err); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ex, nil
}

func (s *PostgresStore) DeleteExam(ctx context.Context, id string) error {
	n, err := s.q.DeleteExam(ctx, id)
	return affected(id, n, err)
}

func (s *PostgresStore) MoveExam(ctx context.Context, id string, to models.Category) (*models.Exam, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, to)
	}
	row, err := s.q.SetExamCategory(ctx, id, string(to))
	return examResult(id, row, err)
}

func (s *PostgresStore) SetAssignedDoctor(ctx context.Context, examID, doctor string) error {
	n, err := s.q.SetExamDoctor(ctx, examID, nullString(doctor))
	return affected(examID, n, err)
}

func (s *PostgresStore) SetExpandedAll(ctx context.Context, category models.Category, expanded bool) error {
	return s.q.SetExpanded(ctx, string(category), expanded)
}

func (s *PostgresStore) TogglePinned(ctx context.Context, id string) (*models.Exam, error) {
	row, err := s.q.ToggleExamPinned(ctx, id)
	return examResult(id, row, err)
}

func (s *PostgresStore) ToggleSelected(ctx context.Context, id string) (*models.Exam, error) {
	row, err := s.q.ToggleExamSelected(ctx, id)
	return examResult(id, row, err)
}

func (s *PostgresStore) SetPriority(ctx context.Context, id string, p models.Priority) (*models.Exam, error) {
	if p != models.PriorityNormal && p != models.PriorityHigh {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, p)
	}
	row, err := s.q.SetExamPriority(ctx, id, string(p))
	return examResult(id, row, err)
}

func (s *PostgresStore) ListDoctors(ctx context.Context) ([]*models.Doctor, error) {
	rows, err := s.q.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Doctor, len(rows))
	for i, r := range rows {
		out[i] = &models.Doctor{ID: r.ID, Name: r.Name, Specialty: r.Specialty, ExamCount: int(r.ExamCount)}
	}
	return out, nil
}

// SaveDoctorCounts writes all counts in one transaction.
func (s *PostgresStore) SaveDoctorCounts(ctx context.Context, counts map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	q := s.q.WithTx(tx)

	for name, n := range counts {
		if err := q.SetDoctorCount(ctx, name, int32(n)); err != nil {
			return fmt.Errorf("update count of %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListExamPoints(ctx context.Context) ([]models.ExamPoint, error) {
	rows, err := s.q.ListExamPoints(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ExamPoint, len(rows))
	for i, r := range rows {
		out[i] = models.ExamPoint{
			ID:               r.ID,
			Date:             r.Date,
			ExamName:         r.ExamName,
			AnatomicalRegion: r.AnatomicalRegion,
			Description:      r.Description,
			Department:       r.Department,
		}
	}
	return out, nil
}

func (s *PostgresStore) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := s.q.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Department, len(rows))
	for i, r := range rows {
		out[i] = models.Department{ID: r.ID, Name: r.Name}
	}
	return out, nil
}

func (s *PostgresStore) ListAnatomyRegions(ctx context.Context) ([]models.AnatomyRegion, error) {
	rows, err := s.q.ListAnatomyRegions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.AnatomyRegion, len(rows))
	for i, r := range rows {
		out[i] = models.AnatomyRegion{ID: r.ID, Name: r.Name}
	}
	return out, nil
}

func (s *PostgresStore) ListPatientRecords(ctx context.Context) ([]models.PatientRecord, error) {
	rows, err := s.q.ListPatientRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PatientRecord, len(rows))
	for i, r := range rows {
		out[i] = models.PatientRecord{ID: r.ID, Date: r.Date, ExamName: r.ExamName, Description: r.Description}
	}
	return out, nil
}
