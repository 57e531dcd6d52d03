package store

import (
	"strconv"
	"time"

	"radiology-portal/internal/models"
)

const (
	scanThumb1 = "https://i.ibb.co/JqjTz3j/scan-thumb-1.png"
	scanThumb2 = "https://i.ibb.co/9gZ2YjM/scan-thumb-2.png"
	scanThumb3 = "https://i.ibb.co/yQdZn5P/scan-thumb-3.png"
)

// Seed is the initial content of a MemoryStore.
type Seed struct {
	Exams          []*models.Exam
	Doctors        []*models.Doctor
	ExamPoints     []models.ExamPoint
	Departments    []models.Department
	AnatomyRegions []models.AnatomyRegion
	PatientRecords []models.PatientRecord
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func thumbs(examID string, pairs ...string) []models.Thumbnail {
	out := make([]models.Thumbnail, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Thumbnail{
			ID:       examID + "-" + strconv.Itoa(i/2+1),
			Filename: pairs[i],
			ImageURL: pairs[i+1],
		})
	}
	return out
}

// DefaultSeed is the demo worklist: eight exams across three boxes, six
// radiologists and one patient's calendar map.
func DefaultSeed() Seed {
	return Seed{
		Exams: []*models.Exam{
			{
				ID: "1", PatientName: "Jean Dupont", ExamID: "25091200872_01",
				ExamType:   "CT - Abdomen - 2025-09-12 09:05",
				Date:       at(2025, time.September, 12, 9, 5),
				Indication: "Follow-up scan for previously identified lesion in the upper right quadrant, patient reports mild discomfort.",
				AIStatus:   models.AIStatusGreen, Category: models.CategoryInbox,
				Site: models.SitePrincipal, Priority: models.PriorityNormal,
				Thumbnails: thumbs("1",
					"axial_1.dcm", scanThumb1, "axial_2.dcm", scanThumb2, "sagittal_1.dcm", scanThumb3,
					"coronal_1.dcm", scanThumb1, "report.pdf", scanThumb2, "axial_3.dcm", scanThumb3),
			},
			{
				ID: "2", PatientName: "Marie Curie", ExamID: "25091200456_03",
				ExamType:   "MRI - Brain - 2025-09-12 08:30",
				Date:       at(2025, time.September, 12, 8, 30),
				Indication: "suspected tumor - FEMALE - 67y",
				AIStatus:   models.AIStatusRed, Category: models.CategoryInbox,
				Site: models.SitePoliclinique, Priority: models.PriorityHigh,
				Thumbnails: thumbs("2", "T1_axial.dcm", scanThumb3, "T2_axial.dcm", scanThumb2, "FLAIR_sag.dcm", scanThumb1),
			},
			{
				ID: "3", PatientName: "Louis Pasteur", ExamID: "25091200112_02",
				ExamType:   "X-RAY - Chest - 2025-09-12 07:45",
				Date:       at(2025, time.September, 12, 7, 45),
				Indication: "Routine check-up - MALE - 72y",
				AIStatus:   models.AIStatusOrange, Category: models.CategoryInbox,
				Site: models.SitePrincipal, Priority: models.PriorityNormal,
				Reported: true, AssignedDoctor: "Nicolas Dumont",
				Thumbnails: thumbs("3", "AP_view.dcm", scanThumb3, "Lateral_view.dcm", scanThumb2),
			},
			{
				ID: "4", PatientName: "Sophie Martin", ExamID: "25091200234_04",
				ExamType:   "MRI - Spine - 2025-09-11 14:20",
				Date:       at(2025, time.September, 11, 14, 20),
				Indication: "Lower back pain, suspected herniated disc - FEMALE - 45y",
				AIStatus:   models.AIStatusOrange, Category: models.CategoryPending,
				Site: models.SitePoliclinique, Priority: models.PriorityNormal,
				Thumbnails: thumbs("4", "T1_sagittal.dcm", scanThumb1, "T2_axial.dcm", scanThumb3, "STIR_coronal.dcm", scanThumb2),
			},
			{
				ID: "5", PatientName: "Pierre Dubois", ExamID: "25091200345_05",
				ExamType:   "CT - Thorax - 2025-09-11 11:45",
				Date:       at(2025, time.September, 11, 11, 45),
				Indication: "Persistent cough, rule out pulmonary nodules - MALE - 58y",
				AIStatus:   models.AIStatusGreen, Category: models.CategoryPending,
				Site: models.SitePrincipal, Priority: models.PriorityNormal,
				Reported: true, IsPinned: true, AssignedDoctor: "Damien Suchy",
				Thumbnails: thumbs("5", "axial_lung.dcm", scanThumb3, "coronal_chest.dcm", scanThumb1),
			},
			{
				ID: "6", PatientName: "Emma Rousseau", ExamID: "25091200456_06",
				ExamType:   "Mammography - Bilateral - 2025-09-11 09:30",
				Date:       at(2025, time.September, 11, 9, 30),
				Indication: "Routine screening mammography - FEMALE - 52y",
				AIStatus:   models.AIStatusRed, Category: models.CategoryPending,
				Site: models.SitePrincipal, Priority: models.PriorityNormal,
				Thumbnails: thumbs("6",
					"CC_right.dcm", scanThumb2, "CC_left.dcm", scanThumb3, "MLO_right.dcm", scanThumb1, "MLO_left.dcm", scanThumb2),
			},
			{
				ID: "7", PatientName: "Antoine Moreau", ExamID: "25091200567_07",
				ExamType:   "CT - Head - 2025-09-10 16:15",
				Date:       at(2025, time.September, 10, 16, 15),
				Indication: "Post-surgical follow-up, brain tumor resection - MALE - 34y",
				AIStatus:   models.AIStatusRed, Category: models.CategorySecondOpinion,
				Site: models.SitePoliclinique, Priority: models.PriorityHigh,
				IsPinned:   true,
				Thumbnails: thumbs("7", "axial_brain.dcm", scanThumb1, "contrast_axial.dcm", scanThumb3, "sagittal_brain.dcm", scanThumb2),
			},
			{
				ID: "8", PatientName: "Isabelle Leroy", ExamID: "25091200678_08",
				ExamType:   "MRI - Pelvis - 2025-09-10 13:00",
				Date:       at(2025, time.September, 10, 13, 0),
				Indication: "Suspected endometriosis, pelvic pain - FEMALE - 29y",
				AIStatus:   models.AIStatusOrange, Category: models.CategorySecondOpinion,
				Site: models.SitePrincipal, Priority: models.PriorityNormal,
				Thumbnails: thumbs("8", "T2_axial_pelvis.dcm", scanThumb3, "T1_sagittal.dcm", scanThumb1),
			},
		},
		// Counts are stale until the first recount.
		Doctors: []*models.Doctor{
			{ID: "1", Name: "Damien Suchy", Specialty: "Radiologist", ExamCount: 8},
			{ID: "2", Name: "Nicolas Dumont", Specialty: "Radiologist", ExamCount: 12},
			{ID: "3", Name: "Déborah Bernard", Specialty: "Radiologist", ExamCount: 6},
			{ID: "4", Name: "Daniel Lopez", Specialty: "Radiologist", ExamCount: 15},
			{ID: "5", Name: "Sylvie Massip", Specialty: "Radiologist", ExamCount: 9},
			{ID: "6", Name: "Julien Chrisman", Specialty: "Radiologist", ExamCount: 11},
		},
		ExamPoints: []models.ExamPoint{
			{ID: "1", Date: at(2025, time.January, 15, 0, 0), ExamName: "CT Abdomen", AnatomicalRegion: "Upper Limb - Pelvis", Description: "Follow-up scan showing improvement", Department: "Radiology"},
			{ID: "2", Date: at(2024, time.December, 20, 0, 0), ExamName: "MRI Brain", AnatomicalRegion: "Head - Shoulder", Description: "Brain imaging to rule out metastases", Department: "Neurology"},
			{ID: "3", Date: at(2024, time.December, 15, 0, 0), ExamName: "X-Ray Chest", AnatomicalRegion: "Shoulder - Upper Limb", Description: "Chest radiography for pulmonary assessment", Department: "Pulmonology"},
			{ID: "4", Date: at(2024, time.November, 20, 0, 0), ExamName: "Ultrasound Abdomen", AnatomicalRegion: "Upper Limb - Pelvis", Description: "Abdominal ultrasound examination", Department: "Gastroenterology"},
			{ID: "5", Date: at(2024, time.October, 25, 0, 0), ExamName: "CT Pelvis", AnatomicalRegion: "Pelvis - Lower Limb", Description: "Pelvic imaging for staging", Department: "Oncology"},
			{ID: "6", Date: at(2024, time.September, 10, 0, 0), ExamName: "Spine MRI", AnatomicalRegion: "Others", Description: "Spinal column examination", Department: "Orthopedics"},
			{ID: "7", Date: at(2024, time.August, 5, 0, 0), ExamName: "Cardiac Echo", AnatomicalRegion: "Shoulder - Upper Limb", Description: "Cardiac function assessment", Department: "Cardiology"},
			{ID: "8", Date: at(2024, time.July, 12, 0, 0), ExamName: "Brain CT", AnatomicalRegion: "Head - Shoulder", Description: "Emergency brain scan", Department: "Emergency"},
			{ID: "9", Date: at(2021, time.March, 15, 0, 0), ExamName: "Knee X-Ray", AnatomicalRegion: "Lower Limb - Foot", Description: "Knee joint evaluation", Department: "Orthopedics"},
			{ID: "10", Date: at(2020, time.November, 22, 0, 0), ExamName: "Chest CT", AnatomicalRegion: "Shoulder - Upper Limb", Description: "Pulmonary nodule follow-up", Department: "Pulmonology"},
			{ID: "11", Date: at(2025, time.July, 15, 0, 0), ExamName: "CT Scanner Follow-up", AnatomicalRegion: "Upper Limb - Pelvis", Description: "Scheduled follow-up CT scan", Department: "Radiology"},
			{ID: "12", Date: at(2025, time.September, 10, 0, 0), ExamName: "MRI Brain", AnatomicalRegion: "Head - Shoulder", Description: "Scheduled brain MRI", Department: "Neurology"},
			{ID: "13", Date: at(2025, time.December, 20, 0, 0), ExamName: "Annual Check-up", AnatomicalRegion: "Shoulder - Upper Limb", Description: "Annual comprehensive examination", Department: "Radiology"},
		},
		Departments: []models.Department{
			{ID: "radiology", Name: "Radiology"},
			{ID: "neurology", Name: "Neurology"},
			{ID: "pulmonology", Name: "Pulmonology"},
			{ID: "gastroenterology", Name: "Gastroenterology"},
			{ID: "oncology", Name: "Oncology"},
			{ID: "orthopedics", Name: "Orthopedics"},
			{ID: "cardiology", Name: "Cardiology"},
			{ID: "emergency", Name: "Emergency"},
		},
		AnatomyRegions: []models.AnatomyRegion{
			{ID: "head-shoulder", Name: "Head - Shoulder"},
			{ID: "shoulder-arm", Name: "Shoulder - Upper Limb"},
			{ID: "arm-pelvis", Name: "Upper Limb - Pelvis"},
			{ID: "pelvis-leg", Name: "Pelvis - Lower Limb"},
			{ID: "leg-foot", Name: "Lower Limb - Foot"},
		},
		PatientRecords: []models.PatientRecord{
			{ID: "1", Date: at(2025, time.January, 15, 0, 0), ExamName: "CT Abdomen", Description: "Follow-up scan for previously identified lesion in the upper right quadrant"},
			{ID: "2", Date: at(2025, time.January, 10, 0, 0), ExamName: "Lab Report", Description: "Complete blood count and liver function tests"},
			{ID: "3", Date: at(2025, time.January, 5, 0, 0), ExamName: "Blood Sample", Description: "Tumor markers and inflammatory indicators"},
			{ID: "4", Date: at(2024, time.December, 20, 0, 0), ExamName: "MRI Brain", Description: "Routine brain imaging to rule out metastases"},
			{ID: "5", Date: at(2024, time.December, 15, 0, 0), ExamName: "X-Ray Chest", Description: "Chest radiography for pulmonary assessment"},
			{ID: "6", Date: at(2024, time.December, 1, 0, 0), ExamName: "CT Thorax", Description: "Thoracic imaging for staging evaluation"},
			{ID: "7", Date: at(2024, time.November, 20, 0, 0), ExamName: "Ultrasound", Description: "Abdominal ultrasound examination"},
			{ID: "8", Date: at(2024, time.November, 10, 0, 0), ExamName: "PET Scan", Description: "Whole body PET-CT for metabolic assessment"},
			{ID: "9", Date: at(2024, time.October, 25, 0, 0), ExamName: "Biopsy", Description: "Tissue sampling for histopathological analysis"},
			{ID: "10", Date: at(2024, time.October, 15, 0, 0), ExamName: "Mammography", Description: "Bilateral mammographic examination"},
		},
	}
}
