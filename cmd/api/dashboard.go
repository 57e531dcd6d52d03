package main

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"radiology-portal/internal/models"
)

const (
	strategyManual   = "manual"
	strategyRandom   = "random"
	strategyBalanced = "balanced"
)

type assignRequest struct {
	ExamIDs  []string `json:"exam_ids"`
	Doctor   string   `json:"doctor,omitempty"`
	Strategy string   `json:"strategy,omitempty"`
}

func (a assignRequest) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ExamIDs, validation.Required),
		validation.Field(&a.Strategy, validation.In(strategyManual, strategyRandom, strategyBalanced)),
		validation.Field(&a.Doctor, validation.When(a.Strategy == "" || a.Strategy == strategyManual, validation.Required)),
	)
}

type dashboardData struct {
	Doctors       []*models.Doctor
	Unassigned    []*models.Exam
	UnassignedIDs []string
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	doctors, err := s.store.ListDoctors(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	exams, err := s.store.ListExams(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := dashboardData{Doctors: doctors, UnassignedIDs: []string{}}
	for _, ex := range exams {
		if ex.AssignedDoctor == "" {
			data.Unassigned = append(data.Unassigned, ex)
			data.UnassignedIDs = append(data.UnassignedIDs, ex.ID)
		}
	}
	s.render(w, r, "dashboard", "Dashboard", data)
}

func (s *server) handleListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := s.store.ListDoctors(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (s *server) handleRecount(w http.ResponseWriter, r *http.Request) {
	doctors, err := s.engine.Recount(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (s *server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, fmt.Errorf("decode assignment: %w", err))
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(w, err)
		return
	}

	var (
		doctors []*models.Doctor
		err     error
	)
	switch req.Strategy {
	case strategyRandom:
		doctors, err = s.engine.AssignRandom(r.Context(), req.ExamIDs)
	case strategyBalanced:
		doctors, err = s.engine.AssignBalanced(r.Context(), req.ExamIDs)
	default:
		doctors, err = s.engine.Assign(r.Context(), req.ExamIDs, req.Doctor)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info().
		Strs("exam_ids", req.ExamIDs).
		Str("strategy", req.Strategy).
		Str("doctor", req.Doctor).
		Msg("exams assigned")
	s.refresh(r.Context())
	writeJSON(w, http.StatusOK, doctors)
}

func (s *server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, fmt.Errorf("decode assignment: %w", err))
		return
	}
	if len(req.ExamIDs) == 0 {
		badRequest(w, fmt.Errorf("exam_ids: cannot be blank"))
		return
	}
	doctors, err := s.engine.Unassign(r.Context(), req.ExamIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refresh(r.Context())
	writeJSON(w, http.StatusOK, doctors)
}
