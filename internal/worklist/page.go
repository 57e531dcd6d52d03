package worklist

import "radiology-portal/internal/models"

type Page struct {
	Exams       []*models.Exam `json:"exams"`
	TotalCount  int            `json:"total_count"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
}

// Paginate slices an already filtered sequence. Pages are 1-based; a page
// past the end yields no exams but keeps the totals.
func Paginate(exams []*models.Exam, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = len(exams)
	}

	p := Page{TotalCount: len(exams), CurrentPage: page, Exams: []*models.Exam{}}
	if pageSize > 0 {
		p.TotalPages = len(exams) / pageSize
		if len(exams)%pageSize != 0 {
			p.TotalPages++
		}
	}

	if page > p.TotalPages {
		return p
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(exams))
	p.Exams = exams[start:end]
	return p
}
