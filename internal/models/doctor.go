package models

type Doctor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	ExamCount int    `json:"exam_count"` // derived, see assignment.Recount
}
