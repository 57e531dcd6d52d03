package models

import "time"

// ExamPoint is a dated entry on the patient calendar map. It is kept apart
// from Exam: nothing links the two collections.
type ExamPoint struct {
	ID               string    `json:"id"`
	Date             time.Time `json:"date"`
	ExamName         string    `json:"exam_name"`
	AnatomicalRegion string    `json:"anatomical_region"`
	Description      string    `json:"description"`
	Department       string    `json:"department"`
	IsFuture         bool      `json:"is_future"`
}

type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AnatomyRegion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PatientRecord struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	ExamName    string    `json:"exam_name"`
	Description string    `json:"description"`
}
