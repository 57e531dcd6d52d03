package main

import (
	"bytes"
	"net/http"
	"slices"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"radiology-portal/internal/models"
	"radiology-portal/internal/viewstate"
)

type ActiveSearchSignals struct {
	Query        string `json:"query"`
	DoctorSearch string `json:"doctorSearch"`
}

// maxDoctorResults caps the doctor search list.
const maxDoctorResults = 15

// Levenshtein calculates the Levenshtein distance between two strings.
func Levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	n, m := len(r1), len(r2)
	if n > m {
		r1, r2 = r2, r1
		n, m = m, n
	}

	currentRow := make([]int, n+1)
	for i := 0; i <= n; i++ {
		currentRow[i] = i
	}

	for i := 1; i <= m; i++ {
		previousRow := currentRow
		currentRow = make([]int, n+1)
		currentRow[0] = i
		for j := 1; j <= n; j++ {
			add, del, change := previousRow[j]+1, currentRow[j-1]+1, previousRow[j-1]
			if r1[j-1] != r2[i-1] {
				change++
			}
			currentRow[j] = min(add, del, change)
		}
	}
	return currentRow[n]
}

func (s *server) handleActiveSearch(w http.ResponseWriter, r *http.Request) {
	signals := &ActiveSearchSignals{}
	if err := datastar.ReadSignals(r, signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch r.URL.Query().Get("type") {
	case "exam":
		s.searchExams(w, r, signals.Query)
	case "doctor":
		s.searchDoctors(w, r, strings.ToLower(strings.TrimSpace(signals.DoctorSearch)))
	default:
		http.Error(w, "Invalid search type", http.StatusBadRequest)
	}
}

// searchExams feeds the query into the worklist view and patches the
// visible rows.
func (s *server) searchExams(w http.ResponseWriter, r *http.Request, query string) {
	snap, err := s.view.Dispatch(r.Context(), viewstate.Event{Field: viewstate.FieldQuery, Value: query})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sse := datastar.NewSSE(w, r)
	if err := s.patchWorklist(sse, snap); err != nil {
		s.logger.Warn().Err(err).Msg("patch worklist")
	}
}

type scoredDoctor struct {
	*models.Doctor
	Score int
}

// rankDoctors keeps doctors whose name or specialty contains query, then
// those within a small edit distance of it, best first.
func rankDoctors(doctors []*models.Doctor, query string) []*models.Doctor {
	var results []scoredDoctor
	for _, d := range doctors {
		if query == "" {
			results = append(results, scoredDoctor{Doctor: d})
			continue
		}

		name := strings.ToLower(d.Name)
		specialty := strings.ToLower(d.Specialty)

		score := 1000
		if strings.Contains(name, query) || strings.Contains(specialty, query) {
			score = 0
		} else {
			dist := Levenshtein(query, name)
			for _, part := range strings.Fields(name) {
				dist = min(dist, Levenshtein(query, part))
			}
			if dist < 5 {
				score = dist
			}
		}

		if score < 1000 {
			results = append(results, scoredDoctor{Doctor: d, Score: score})
		}
	}

	slices.SortStableFunc(results, func(a, b scoredDoctor) int {
		return a.Score - b.Score
	})
	if len(results) > maxDoctorResults {
		results = results[:maxDoctorResults]
	}

	out := make([]*models.Doctor, len(results))
	for i, res := range results {
		out[i] = res.Doctor
	}
	return out
}

func (s *server) searchDoctors(w http.ResponseWriter, r *http.Request, query string) {
	doctors, err := s.store.ListDoctors(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.ui.Partial(&buf, "doctor_results", rankDoctors(doctors, query)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sse := datastar.NewSSE(w, r)
	sse.PatchElements(buf.String())
}
