package timeline

import (
	"strings"

	"radiology-portal/internal/models"
)

type RecordKind string

const (
	RecordsAll     RecordKind = "All"
	RecordsImaging RecordKind = "Imaging"
	RecordsLab     RecordKind = "Lab"
	RecordsReports RecordKind = "Reports"
)

var recordKeywords = map[RecordKind][]string{
	RecordsImaging: {"CT", "MRI", "X-Ray", "Ultrasound", "Mammography", "PET"},
	RecordsLab:     {"Lab", "Blood", "Urine"},
	RecordsReports: {"Report", "Biopsy"},
}

// FilterRecords selects patient records by the keywords of their exam
// name. Unknown kinds select nothing.
func FilterRecords(records []models.PatientRecord, kind RecordKind) []models.PatientRecord {
	if kind == RecordsAll {
		return append([]models.PatientRecord(nil), records...)
	}
	keywords := recordKeywords[kind]
	out := []models.PatientRecord{}
	for _, r := range records {
		for _, k := range keywords {
			if strings.Contains(r.ExamName, k) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
