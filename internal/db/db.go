package db

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var Schema string

type Exam struct {
	ID             string
	PatientName    string
	ExamID         string
	ExamType       string
	Date           time.Time
	Indication     string
	AIStatus       string
	Category       string
	Site           string
	Priority       string
	Reported       bool
	IsPinned       bool
	IsExpanded     bool
	IsSelected     bool
	AssignedDoctor sql.NullString
	Thumbnails     []byte // JSONB
}

type Doctor struct {
	ID        string
	Name      string
	Specialty string
	ExamCount int32
}

type ExamPoint struct {
	ID               string
	Date             time.Time
	ExamName         string
	AnatomicalRegion string
	Description      string
	Department       string
}

type NamedRow struct {
	ID   string
	Name string
}

type PatientRecord struct {
	ID          string
	Date        time.Time
	ExamName    string
	Description string
}

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries interface mimicking sqlc generated code
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Open connects to Postgres through lib/pq and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func (q *Queries) Migrate(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, Schema)
	return err
}

const examColumns = "id, patient_name, exam_id, exam_type, date, indication, ai_status, category, site, priority, reported, is_pinned, is_expanded, is_selected, assigned_doctor, thumbnails"

type scanner interface {
	Scan(dest ...any) error
}

func scanExam(row scanner) (Exam, error) {
	var i Exam
	err := row.Scan(&i.ID, &i.PatientName, &i.ExamID, &i.ExamType, &i.Date, &i.Indication, &i.AIStatus,
		&i.Category, &i.Site, &i.Priority, &i.Reported, &i.IsPinned, &i.IsExpanded, &i.IsSelected,
		&i.AssignedDoctor, &i.Thumbnails)
	return i, err
}

func (q *Queries) ListExams(ctx context.Context) ([]Exam, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+examColumns+" FROM exams ORDER BY date DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Exam
	for rows.Next() {
		i, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) GetExam(ctx context.Context, id string) (Exam, error) {
	return scanExam(q.db.QueryRowContext(ctx, "SELECT "+examColumns+" FROM exams WHERE id = $1", id))
}

func (q *Queries) CreateExam(ctx context.Context, arg Exam) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO exams ("+examColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)",
		arg.ID, arg.PatientName, arg.ExamID, arg.ExamType, arg.Date, arg.Indication, arg.AIStatus,
		arg.Category, arg.Site, arg.Priority, arg.Reported, arg.IsPinned, arg.IsExpanded, arg.IsSelected,
		arg.AssignedDoctor, arg.Thumbnails,
	)
	return err
}

func (q *Queries) UpdateExam(ctx context.Context, arg Exam) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE exams SET patient_name = $2, exam_id = $3, exam_type = $4, date = $5, indication = $6,
		ai_status = $7, site = $8, priority = $9, reported = $10, is_pinned = $11
		WHERE id = $1`,
		arg.ID, arg.PatientName, arg.ExamID, arg.ExamType, arg.Date, arg.Indication,
		arg.AIStatus, arg.Site, arg.Priority, arg.Reported, arg.IsPinned,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteExam(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM exams WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) SetExamCategory(ctx context.Context, id, category string) (Exam, error) {
	return scanExam(q.db.QueryRowContext(ctx,
		"UPDATE exams SET category = $2 WHERE id = $1 RETURNING "+examColumns, id, category))
}

func (q *Queries) SetExamDoctor(ctx context.Context, id string, doctor sql.NullString) (int64, error) {
	res, err := q.db.ExecContext(ctx, "UPDATE exams SET assigned_doctor = $2 WHERE id = $1", id, doctor)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) SetExamPriority(ctx context.Context, id, priority string) (Exam, error) {
	return scanExam(q.db.QueryRowContext(ctx,
		"UPDATE exams SET priority = $2 WHERE id = $1 RETURNING "+examColumns, id, priority))
}

func (q *Queries) ToggleExamPinned(ctx context.Context, id string) (Exam, error) {
	return scanExam(q.db.QueryRowContext(ctx,
		"UPDATE exams SET is_pinned = NOT is_pinned WHERE id = $1 RETURNING "+examColumns, id))
}

func (q *Queries) ToggleExamSelected(ctx context.Context, id string) (Exam, error) {
	return scanExam(q.db.QueryRowContext(ctx,
		"UPDATE exams SET is_selected = NOT is_selected WHERE id = $1 RETURNING "+examColumns, id))
}

// SetExpanded updates every exam of category, or all exams for "".
func (q *Queries) SetExpanded(ctx context.Context, category string, expanded bool) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE exams SET is_expanded = $2 WHERE $1 = '' OR category = $1", category, expanded)
	return err
}

func (q *Queries) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT id, name, specialty, exam_count FROM doctors ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Doctor
	for rows.Next() {
		var i Doctor
		if err := rows.Scan(&i.ID, &i.Name, &i.Specialty, &i.ExamCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) SetDoctorCount(ctx context.Context, name string, count int32) error {
	_, err := q.db.ExecContext(ctx, "UPDATE doctors SET exam_count = $2 WHERE name = $1", name, count)
	return err
}

func (q *Queries) ListExamPoints(ctx context.Context) ([]ExamPoint, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, date, exam_name, anatomical_region, description, department FROM exam_points ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExamPoint
	for rows.Next() {
		var i ExamPoint
		if err := rows.Scan(&i.ID, &i.Date, &i.ExamName, &i.AnatomicalRegion, &i.Description, &i.Department); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) listNamed(ctx context.Context, table string) ([]NamedRow, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT id, name FROM "+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NamedRow
	for rows.Next() {
		var i NamedRow
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) ListDepartments(ctx context.Context) ([]NamedRow, error) {
	return q.listNamed(ctx, "departments")
}

func (q *Queries) ListAnatomyRegions(ctx context.Context) ([]NamedRow, error) {
	return q.listNamed(ctx, "anatomy_regions")
}

func (q *Queries) ListPatientRecords(ctx context.Context) ([]PatientRecord, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, date, exam_name, description FROM patient_records ORDER BY date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PatientRecord
	for rows.Next() {
		var i PatientRecord
		if err := rows.Scan(&i.ID, &i.Date, &i.ExamName, &i.Description); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
