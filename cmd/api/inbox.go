package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"radiology-portal/internal/assignment"
	"radiology-portal/internal/models"
	"radiology-portal/internal/store"
	"radiology-portal/internal/viewstate"
	"radiology-portal/internal/worklist"
)

var sortOrders = []worklist.SortOrder{
	worklist.SortDateDesc,
	worklist.SortDateAsc,
	worklist.SortPatientNameAsc,
	worklist.SortPatientNameDesc,
}

var queryFields = []viewstate.Field{
	viewstate.FieldCategory,
	viewstate.FieldQuery,
	viewstate.FieldSort,
	viewstate.FieldSite,
	viewstate.FieldModality,
	viewstate.FieldDoctor,
	viewstate.FieldFrom,
	viewstate.FieldTo,
	viewstate.FieldReport,
}

// viewEvents turns the view fields present in the query string into events.
func viewEvents(q url.Values) []viewstate.Event {
	var events []viewstate.Event
	if q.Has(string(viewstate.FieldReset)) {
		events = append(events, viewstate.Event{Field: viewstate.FieldReset})
	}
	for _, f := range queryFields {
		if q.Has(string(f)) {
			events = append(events, viewstate.Event{Field: f, Value: q.Get(string(f))})
		}
	}
	return events
}

func (s *server) snapshot(ctx context.Context, events []viewstate.Event) (viewstate.Snapshot, error) {
	if len(events) == 0 {
		return s.view.Refresh(ctx)
	}
	return s.view.Dispatch(ctx, events...)
}

// refresh republishes the worklist after the exam collection changed.
func (s *server) refresh(ctx context.Context) {
	if _, err := s.view.Refresh(ctx); err != nil {
		s.logger.Error().Err(err).Msg("refresh worklist")
	}
}

type categoryCount struct {
	Category models.Category
	Count    int
	Active   bool
}

func categoryCounts(snap viewstate.Snapshot) []categoryCount {
	out := make([]categoryCount, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, categoryCount{Category: c, Count: snap.Counts[c], Active: c == snap.State.Category()})
	}
	return out
}

func (s *server) page(ctx context.Context, r *http.Request, snap viewstate.Snapshot) worklist.Page {
	n, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size := s.properties(ctx).Limit(snap.State.Category())
	return worklist.Paginate(snap.Exams, n, size)
}

type inboxData struct {
	Query      string
	Sort       worklist.SortOrder
	SortOrders []worklist.SortOrder
	Categories []categoryCount
	Page       worklist.Page
}

func (s *server) handleInbox(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context(), viewEvents(r.URL.Query()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c := snap.State.Criteria()
	s.render(w, r, "inbox", "Inbox", inboxData{
		Query:      c.Query,
		Sort:       c.Sort,
		SortOrders: sortOrders,
		Categories: categoryCounts(snap),
		Page:       s.page(r.Context(), r, snap),
	})
}

type examsResponse struct {
	Criteria worklist.Criteria       `json:"criteria"`
	Counts   map[models.Category]int `json:"counts"`
	worklist.Page
}

func (s *server) handleListExams(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context(), viewEvents(r.URL.Query()))
	if err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, examsResponse{
		Criteria: snap.State.Criteria(),
		Counts:   snap.Counts,
		Page:     s.page(r.Context(), r, snap),
	})
}

// handleDispatch applies a JSON list of view events.
func (s *server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var events []viewstate.Event
	if err := decodeJSON(r, &events); err != nil {
		badRequest(w, fmt.Errorf("decode events: %w", err))
		return
	}
	snap, err := s.view.Dispatch(r.Context(), events...)
	if err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, examsResponse{
		Criteria: snap.State.Criteria(),
		Counts:   snap.Counts,
		Page:     s.page(r.Context(), r, snap),
	})
}

func (s *server) handleGetExam(w http.ResponseWriter, r *http.Request) {
	exam, err := s.store.GetExam(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exam)
}

func (s *server) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	var exam models.Exam
	if err := decodeJSON(r, &exam); err != nil {
		badRequest(w, fmt.Errorf("decode exam: %w", err))
		return
	}
	// The doctor goes through the engine so counts stay equal to a scan.
	doctor := exam.AssignedDoctor
	exam.AssignedDoctor = ""
	if doctor != "" {
		if _, err := s.engine.Doctor(r.Context(), doctor); err != nil {
			if errors.Is(err, assignment.ErrUnknownDoctor) {
				badRequest(w, err)
				return
			}
			s.writeError(w, r, err)
			return
		}
	}

	created, err := s.store.CreateExam(r.Context(), &exam)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if doctor != "" {
		if _, err := s.engine.Assign(r.Context(), []string{created.ID}, doctor); err != nil {
			s.writeError(w, r, err)
			return
		}
		if created, err = s.store.GetExam(r.Context(), created.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.refresh(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateExam(w http.ResponseWriter, r *http.Request) {
	var patch store.ExamPatch
	if err := decodeJSON(r, &patch); err != nil {
		badRequest(w, fmt.Errorf("decode patch: %w", err))
		return
	}
	exam, err := s.store.UpdateExam(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refresh(r.Context())
	writeJSON(w, http.StatusOK, exam)
}

func (s *server) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteExam(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.engine.Recount(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refresh(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) examMutation(fn func(ctx context.Context, id string) (*models.Exam, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exam, err := fn(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.refresh(r.Context())
		writeJSON(w, http.StatusOK, exam)
	}
}

func (s *server) handleTogglePinned(w http.ResponseWriter, r *http.Request) {
	s.examMutation(s.store.TogglePinned)(w, r)
}

func (s *server) handleToggleSelected(w http.ResponseWriter, r *http.Request) {
	s.examMutation(s.store.ToggleSelected)(w, r)
}

func (s *server) handleMoveExam(w http.ResponseWriter, r *http.Request) {
	to := models.Category(r.FormValue("category"))
	s.examMutation(func(ctx context.Context, id string) (*models.Exam, error) {
		return s.store.MoveExam(ctx, id, to)
	})(w, r)
}

func (s *server) handleSetPriority(w http.ResponseWriter, r *http.Request) {
	p := models.Priority(r.FormValue("priority"))
	s.examMutation(func(ctx context.Context, id string) (*models.Exam, error) {
		return s.store.SetPriority(ctx, id, p)
	})(w, r)
}

// handleExpandAll expands or collapses every exam of a category, or of the
// whole worklist when category is empty.
func (s *server) handleExpandAll(w http.ResponseWriter, r *http.Request) {
	category := models.Category(r.FormValue("category"))
	if category != "" && !category.Valid() {
		s.writeError(w, r, fmt.Errorf("%w: %q", store.ErrInvalidCategory, category))
		return
	}
	expanded, err := strconv.ParseBool(r.FormValue("expanded"))
	if err != nil {
		badRequest(w, fmt.Errorf("invalid expanded value: %w", err))
		return
	}
	if err := s.store.SetExpandedAll(r.Context(), category, expanded); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refresh(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleOpenExam shows an exam in the viewer popup and its summary in the
// reporting popup. Missing popups are ignored.
func (s *server) handleOpenExam(w http.ResponseWriter, r *http.Request) {
	exam, err := s.store.GetExam(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	viewer := s.properties(r.Context()).Viewer.URL
	if u, err := url.Parse(viewer); err == nil && u.Scheme != "about" {
		q := u.Query()
		q.Set("exam", exam.ExamID)
		u.RawQuery = q.Encode()
		viewer = u.String()
	}
	if err := s.windows.UpdateViewer(viewer); err != nil {
		s.logger.Warn().Err(err).Msg("update viewer window")
	}

	var body bytes.Buffer
	if err := s.ui.Partial(&body, "report_body", exam); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.windows.UpdateReporting(body.String()); err != nil {
		s.logger.Warn().Err(err).Msg("update reporting window")
	}
	writeJSON(w, http.StatusOK, exam)
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context(), viewEvents(r.URL.Query()))
	if err != nil {
		badRequest(w, err)
		return
	}
	var buf bytes.Buffer
	if err := worklist.Export(&buf, snap.Exams); err != nil {
		s.writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("worklist-%s-%s.xlsx", snap.State.Category(), s.now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	buf.WriteTo(w)
}

// handleStream pushes the exam list and category counts to the browser on
// every view change.
func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	updates, cancel := s.view.SubscribeChan(1)
	defer cancel()

	sse := datastar.NewSSE(w, r)
	if err := s.patchWorklist(sse, s.view.Last()); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := s.patchWorklist(sse, snap); err != nil {
				s.logger.Debug().Err(err).Msg("worklist stream closed")
				return
			}
		}
	}
}

func (s *server) patchWorklist(sse *datastar.ServerSentEventGenerator, snap viewstate.Snapshot) error {
	var buf bytes.Buffer
	if err := s.ui.Partial(&buf, "exam_rows", snap.Exams); err != nil {
		return err
	}
	if err := s.ui.Partial(&buf, "category_counts", categoryCounts(snap)); err != nil {
		return err
	}
	return sse.PatchElements(buf.String())
}
