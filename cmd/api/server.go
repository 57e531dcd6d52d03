package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"radiology-portal/internal/assignment"
	"radiology-portal/internal/config"
	"radiology-portal/internal/middleware"
	"radiology-portal/internal/models"
	"radiology-portal/internal/prefs"
	"radiology-portal/internal/store"
	"radiology-portal/internal/viewstate"
	"radiology-portal/internal/windows"
	"radiology-portal/ui"
)

type server struct {
	logger  zerolog.Logger
	store   store.Store
	engine  *assignment.Engine
	view    *viewstate.Coordinator
	windows *windows.Manager
	prefs   prefs.Store
	ui      *ui.Renderer

	properties       func(ctx context.Context) config.Properties
	reloadProperties func(ctx context.Context) config.Properties
	now              func() time.Time
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleInbox)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /timeline", s.handleTimeline)
	mux.HandleFunc("GET /windows/{id}", s.handleWindowPage)
	mux.HandleFunc("GET /windows/{id}/events", s.handleWindowEvents)

	mux.HandleFunc("GET /api/exams", s.handleListExams)
	mux.HandleFunc("POST /api/exams", s.handleCreateExam)
	mux.HandleFunc("GET /api/exams/export", s.handleExport)
	mux.HandleFunc("POST /api/exams/expand", s.handleExpandAll)
	mux.HandleFunc("GET /api/exams/{id}", s.handleGetExam)
	mux.HandleFunc("PATCH /api/exams/{id}", s.handleUpdateExam)
	mux.HandleFunc("DELETE /api/exams/{id}", s.handleDeleteExam)
	mux.HandleFunc("POST /api/exams/{id}/pin", s.handleTogglePinned)
	mux.HandleFunc("POST /api/exams/{id}/select", s.handleToggleSelected)
	mux.HandleFunc("POST /api/exams/{id}/move", s.handleMoveExam)
	mux.HandleFunc("POST /api/exams/{id}/priority", s.handleSetPriority)
	mux.HandleFunc("POST /api/exams/{id}/open", s.handleOpenExam)
	mux.HandleFunc("POST /api/view", s.handleDispatch)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /api/search", s.handleActiveSearch)

	mux.HandleFunc("GET /api/doctors", s.handleListDoctors)
	mux.HandleFunc("POST /api/doctors/recount", s.handleRecount)
	mux.HandleFunc("POST /api/assignments", s.handleAssign)
	mux.HandleFunc("DELETE /api/assignments", s.handleUnassign)

	mux.HandleFunc("GET /api/timeline", s.handleTimelineChart)
	mux.HandleFunc("GET /api/records", s.handleRecords)

	mux.HandleFunc("POST /api/theme/toggle", s.handleToggleTheme)
	mux.HandleFunc("GET /api/properties", s.handleProperties)
	mux.HandleFunc("POST /api/properties/reload", s.handleReloadProperties)

	mux.HandleFunc("POST /api/windows/{role}/open", s.handleOpenWindow)
	mux.HandleFunc("POST /api/windows/{role}/close", s.handleCloseWindow)
	mux.HandleFunc("POST /api/windows/message", s.handleWindowMessage)

	return mux
}

type pageData struct {
	Title     string
	Theme     models.Theme
	CSRFToken string
	Data      any
}

func (s *server) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	theme, err := s.prefs.Theme(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("read theme")
		theme = models.ThemeLight
	}

	var buf bytes.Buffer
	wrapper := pageData{
		Title:     title,
		Theme:     theme,
		CSRFToken: middleware.CSRFToken(r.Context()),
		Data:      data,
	}
	if err := s.ui.Render(&buf, page, wrapper); err != nil {
		s.logger.Error().Err(err).Str("page", page).Msg("render page")
		http.Error(w, "Template Execute Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeError maps domain errors to HTTP statuses.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var invalid validation.Errors
	switch {
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrExamNotFound),
		errors.Is(err, store.ErrDoctorNotFound),
		errors.Is(err, assignment.ErrUnknownExam),
		errors.Is(err, assignment.ErrUnknownDoctor):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidCategory),
		errors.Is(err, store.ErrInvalidPriority),
		errors.Is(err, assignment.ErrNoDoctors):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("request_id", middleware.RequestID(r.Context())).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}
