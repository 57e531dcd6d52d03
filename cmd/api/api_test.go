package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"radiology-portal/internal/assignment"
	"radiology-portal/internal/config"
	"radiology-portal/internal/models"
	"radiology-portal/internal/prefs"
	"radiology-portal/internal/store"
	"radiology-portal/internal/viewstate"
	"radiology-portal/internal/windows"
	"radiology-portal/ui"
)

var testNow = time.Date(2025, time.September, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t testing.TB) *server {
	t.Helper()
	renderer, err := ui.NewRenderer(ui.FS(""))
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	props := config.DefaultProperties()
	exams := store.NewMemoryStore(store.DefaultSeed())
	prefStore := prefs.NewMemoryStore(prefs.Defaults{Geometry: map[models.WindowRole]models.WindowGeometry{
		models.RoleReporting: props.Geometry(models.RoleReporting),
		models.RoleViewer:    props.Geometry(models.RoleViewer),
	}})
	logger := zerolog.Nop()

	return &server{
		logger:           logger,
		store:            exams,
		engine:           assignment.NewEngine(exams),
		view:             viewstate.NewCoordinator(exams, logger),
		windows:          windows.NewManager(windows.ChannelOpener{Buffer: 4}, prefStore, logger),
		prefs:            prefStore,
		ui:               renderer,
		properties:       func(context.Context) config.Properties { return props },
		reloadProperties: func(context.Context) config.Properties { return props },
		now:              func() time.Time { return testNow },
	}
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return do(t, h, method, target, r, "application/json")
}

func doForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func countsByName(doctors []*models.Doctor) map[string]int {
	out := make(map[string]int, len(doctors))
	for _, d := range doctors {
		out[d.Name] = d.ExamCount
	}
	return out
}

func TestHandleInbox(t *testing.T) {
	h := newTestServer(t).routes()

	rr := do(t, h, http.MethodGet, "/", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"Inbox - Radiology Portal", "Jean Dupont", "Marie Curie", "Louis Pasteur", `id="exam-list"`} {
		if !strings.Contains(body, want) {
			t.Errorf("inbox page missing %q", want)
		}
	}
	if strings.Contains(body, "Sophie Martin") {
		t.Errorf("inbox page shows a pending exam")
	}

	rr = do(t, h, http.MethodGet, "/?category=pending", nil, "")
	if !strings.Contains(rr.Body.String(), "Sophie Martin") || strings.Contains(rr.Body.String(), "Jean Dupont") {
		t.Errorf("pending page shows the wrong exams")
	}

	rr = do(t, h, http.MethodGet, "/?category=archive", nil, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", rr.Code)
	}
}

func TestHandleListExams(t *testing.T) {
	h := newTestServer(t).routes()

	rr := do(t, h, http.MethodGet, "/api/exams?category=inbox&query=curie", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[examsResponse](t, rr)
	if resp.TotalCount != 1 || resp.Exams[0].PatientName != "Marie Curie" {
		t.Errorf("expected only Marie Curie, got %+v", resp.Exams)
	}
	wantCounts := map[models.Category]int{
		models.CategoryInbox:         3,
		models.CategoryPending:       3,
		models.CategorySecondOpinion: 2,
		models.CategoryCompleted:     0,
	}
	for c, n := range wantCounts {
		if resp.Counts[c] != n {
			t.Errorf("count %s = %d, want %d", c, resp.Counts[c], n)
		}
	}

	// Moving to another category clears the query.
	resp = decode[examsResponse](t, do(t, h, http.MethodGet, "/api/exams?category=pending", nil, ""))
	if resp.Criteria.Query != "" || resp.TotalCount != 3 {
		t.Errorf("expected 3 pending exams and no query, got %d and %q", resp.TotalCount, resp.Criteria.Query)
	}
}

func TestHandleDispatch(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/view", `[{"field":"sort","value":"patient-name-asc"}]`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[examsResponse](t, rr)
	var names []string
	for _, ex := range resp.Exams {
		names = append(names, ex.PatientName)
	}
	if strings.Join(names, ",") != "Jean Dupont,Louis Pasteur,Marie Curie" {
		t.Errorf("unexpected order %v", names)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/view", `[{"field":"colour","value":"red"}]`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown field, got %d", rr.Code)
	}
}

func TestExamMutations(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	rr := do(t, h, http.MethodPost, "/api/exams/1/pin", nil, "")
	if ex := decode[models.Exam](t, rr); !ex.IsPinned {
		t.Errorf("expected exam 1 to be pinned")
	}

	rr = doForm(t, h, "/api/exams/1/move", url.Values{"category": {"completed"}})
	if ex := decode[models.Exam](t, rr); ex.Category != models.CategoryCompleted {
		t.Errorf("expected exam 1 in completed, got %s", ex.Category)
	}
	if got := s.view.Last().Counts[models.CategoryCompleted]; got != 1 {
		t.Errorf("expected the view to be refreshed, completed count = %d", got)
	}

	tests := []struct {
		name   string
		target string
		form   url.Values
		want   int
	}{
		{"move to unknown category", "/api/exams/1/move", url.Values{"category": {"archive"}}, http.StatusBadRequest},
		{"invalid priority", "/api/exams/1/priority", url.Values{"priority": {"urgent"}}, http.StatusBadRequest},
		{"high priority", "/api/exams/1/priority", url.Values{"priority": {"high"}}, http.StatusOK},
		{"unknown exam", "/api/exams/99/select", nil, http.StatusNotFound},
		{"expand pending", "/api/exams/expand", url.Values{"category": {"pending"}, "expanded": {"true"}}, http.StatusNoContent},
		{"expand bad flag", "/api/exams/expand", url.Values{"expanded": {"maybe"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doForm(t, h, tt.target, tt.form)
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}

	ex, _ := s.store.GetExam(context.Background(), "4")
	if !ex.IsExpanded {
		t.Errorf("expected pending exam 4 to be expanded")
	}
}

func TestExamCRUD(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	rr := doJSON(t, h, http.MethodPost, "/api/exams",
		`{"patient_name":"Ada Lovelace","exam_id":"25091500001_01","exam_type":"CT - Thorax","date":"2025-09-14T10:00:00Z"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[models.Exam](t, rr)
	if created.ID == "" || created.Category != models.CategoryInbox {
		t.Errorf("expected an id and the inbox category, got %+v", created)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/exams", `{"exam_id":"x","date":"2025-09-14T10:00:00Z"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without patient name, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPatch, "/api/exams/"+created.ID, `{"indication":"Persistent cough"}`)
	if ex := decode[models.Exam](t, rr); ex.Indication != "Persistent cough" {
		t.Errorf("patch not applied: %+v", ex)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/exams/"+created.ID, "")
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodDelete, "/api/exams/3", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	doctors, _ := s.store.ListDoctors(context.Background())
	if got := countsByName(doctors)["Nicolas Dumont"]; got != 0 {
		t.Errorf("expected Nicolas Dumont to have no exams after delete, got %d", got)
	}

	rr = doJSON(t, h, http.MethodDelete, "/api/exams/3", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestCreateExam_AssignedDoctorKeepsCounts(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()
	ctx := context.Background()

	rr := doJSON(t, h, http.MethodPost, "/api/exams",
		`{"patient_name":"Ada Lovelace","exam_id":"25091500002_01","date":"2025-09-14T10:00:00Z","assigned_doctor":"Damien Suchy"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if created := decode[models.Exam](t, rr); created.AssignedDoctor != "Damien Suchy" {
		t.Errorf("expected the exam to be assigned, got %q", created.AssignedDoctor)
	}

	exams, _ := s.store.ListExams(ctx)
	scan := make(map[string]int)
	for _, ex := range exams {
		scan[ex.AssignedDoctor]++
	}
	counts := countsByName(decode[[]*models.Doctor](t, do(t, h, http.MethodGet, "/api/doctors", nil, "")))
	for name, n := range counts {
		if n != scan[name] {
			t.Errorf("%s: stored count %d, full scan %d", name, n, scan[name])
		}
	}
	if counts["Damien Suchy"] != 2 {
		t.Errorf("expected Damien Suchy to have 2 exams, got %d", counts["Damien Suchy"])
	}

	before := len(exams)
	rr = doJSON(t, h, http.MethodPost, "/api/exams",
		`{"patient_name":"Grace Hopper","exam_id":"25091500003_01","date":"2025-09-14T10:00:00Z","assigned_doctor":"Nobody"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown doctor, got %d", rr.Code)
	}
	if exams, _ := s.store.ListExams(ctx); len(exams) != before {
		t.Errorf("exam created despite unknown doctor: %d exams, want %d", len(exams), before)
	}
}

func TestUpdateExam_CategoryNotPatchable(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	rr := doJSON(t, h, http.MethodPatch, "/api/exams/1", `{"category":"completed"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
	ex, _ := s.store.GetExam(context.Background(), "1")
	if ex.Category != models.CategoryInbox {
		t.Errorf("category changed by patch: %s", ex.Category)
	}
}

func TestHandleRecount(t *testing.T) {
	h := newTestServer(t).routes()

	before := decode[[]*models.Doctor](t, do(t, h, http.MethodGet, "/api/doctors", nil, ""))
	if countsByName(before)["Damien Suchy"] != 8 {
		t.Fatalf("expected seeded count 8 before recount")
	}

	rr := do(t, h, http.MethodPost, "/api/doctors/recount", nil, "")
	counts := countsByName(decode[[]*models.Doctor](t, rr))
	want := map[string]int{
		"Damien Suchy": 1, "Nicolas Dumont": 1, "Déborah Bernard": 0,
		"Daniel Lopez": 0, "Sylvie Massip": 0, "Julien Chrisman": 0,
	}
	for name, n := range want {
		if counts[name] != n {
			t.Errorf("%s = %d, want %d", name, counts[name], n)
		}
	}
}

func TestHandleAssign(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	rr := doJSON(t, h, http.MethodPost, "/api/assignments", `{"exam_ids":["1","2"],"doctor":"Sylvie Massip"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	counts := countsByName(decode[[]*models.Doctor](t, rr))
	if counts["Sylvie Massip"] != 2 || counts["Damien Suchy"] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/assignments", `{"exam_ids":["4"],"strategy":"balanced"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	ex, _ := s.store.GetExam(context.Background(), "4")
	if ex.AssignedDoctor != "Déborah Bernard" {
		t.Errorf("balanced assignment went to %q", ex.AssignedDoctor)
	}

	rr = doJSON(t, h, http.MethodDelete, "/api/assignments", `{"exam_ids":["3"]}`)
	if counts := countsByName(decode[[]*models.Doctor](t, rr)); counts["Nicolas Dumont"] != 0 {
		t.Errorf("expected Nicolas Dumont to be released, got %d", counts["Nicolas Dumont"])
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown doctor", `{"exam_ids":["1"],"doctor":"Gregory House"}`, http.StatusNotFound},
		{"unknown exam", `{"exam_ids":["99"],"doctor":"Sylvie Massip"}`, http.StatusNotFound},
		{"manual without doctor", `{"exam_ids":["1"]}`, http.StatusBadRequest},
		{"no exams", `{"exam_ids":[],"strategy":"random"}`, http.StatusBadRequest},
		{"unknown strategy", `{"exam_ids":["1"],"strategy":"round-robin"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodPost, "/api/assignments", tt.body)
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleDashboard(t *testing.T) {
	h := newTestServer(t).routes()

	rr := do(t, h, http.MethodGet, "/dashboard", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, `<h5 id="doctor-count">6</h5>`) {
		t.Errorf("dashboard missing doctor count")
	}
	if !strings.Contains(body, "Julien Chrisman") || !strings.Contains(body, "Jean Dupont") {
		t.Errorf("dashboard missing doctors or unassigned exams")
	}
}

func TestHandleTimelineChart(t *testing.T) {
	h := newTestServer(t).routes()

	rr := do(t, h, http.MethodGet, "/api/timeline", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	data := decode[timelineData](t, rr)
	if len(data.Chart.Points) != 11 {
		t.Errorf("expected 11 points within 3 years, got %d", len(data.Chart.Points))
	}
	if len(data.Chart.Lanes) != 9 || data.TrackHeight != 360 {
		t.Errorf("expected 9 lanes on a 360px track, got %d on %v", len(data.Chart.Lanes), data.TrackHeight)
	}
	if data.Chart.Today <= 0 || data.Chart.Today >= 100 {
		t.Errorf("today marker %v outside the data span", data.Chart.Today)
	}
	for _, p := range data.Chart.Points {
		if p.ID == "13" && !p.IsFuture {
			t.Errorf("expected the December appointment to be marked future")
		}
	}

	data = decode[timelineData](t, do(t, h, http.MethodGet, "/api/timeline?view=anatomy&anatomy=Others", nil, ""))
	if len(data.Chart.Points) != 1 || data.Chart.Points[0].ID != "6" {
		t.Errorf("expected only the spine MRI in Others, got %+v", data.Chart.Points)
	}

	rr = do(t, h, http.MethodGet, "/api/timeline?period=forever", nil, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown period, got %d", rr.Code)
	}
}

func TestHandleTimelinePage(t *testing.T) {
	h := newTestServer(t).routes()

	rr := do(t, h, http.MethodGet, "/timeline?view=anatomy", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{`id="today-marker"`, "Head - Shoulder", "Blood Sample"} {
		if !strings.Contains(body, want) {
			t.Errorf("timeline page missing %q", want)
		}
	}
}

func TestHandleRecords(t *testing.T) {
	h := newTestServer(t).routes()

	tests := []struct {
		kind string
		want int
	}{
		{"", 10},
		{"Lab", 2},
		{"Reports", 2},
	}
	for _, tt := range tests {
		rr := do(t, h, http.MethodGet, "/api/records?kind="+tt.kind, nil, "")
		if got := len(decode[[]models.PatientRecord](t, rr)); got != tt.want {
			t.Errorf("kind %q: expected %d records, got %d", tt.kind, tt.want, got)
		}
	}

	rr := do(t, h, http.MethodGet, "/api/records?kind=Genetics", nil, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown kind, got %d", rr.Code)
	}
}

func TestHandleToggleTheme(t *testing.T) {
	h := newTestServer(t).routes()

	req := httptest.NewRequest(http.MethodPost, "/api/theme/toggle", nil)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := decode[map[string]string](t, rr)["theme"]; got != "dark" {
		t.Errorf("expected dark theme, got %q", got)
	}

	if body := do(t, h, http.MethodGet, "/", nil, "").Body.String(); !strings.Contains(body, `data-theme="dark"`) {
		t.Errorf("inbox page not rendered with the dark theme")
	}

	rr = do(t, h, http.MethodPost, "/api/theme/toggle", nil, "")
	if rr.Code != http.StatusSeeOther {
		t.Errorf("expected redirect 303, got %d", rr.Code)
	}
}

func TestHandleExport(t *testing.T) {
	h := newTestServer(t).routes()

	rr := do(t, h, http.MethodGet, "/api/exams/export?category=pending", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.HasPrefix(rr.Body.String(), "PK") {
		t.Errorf("expected an xlsx (zip) body")
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "worklist-pending-20250915.xlsx") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
}

func TestHandleProperties(t *testing.T) {
	h := newTestServer(t).routes()

	props := decode[config.Properties](t, do(t, h, http.MethodGet, "/api/properties", nil, ""))
	if props.Viewer.URL != "about:blank" || props.Limit(models.CategoryCompleted) != 100 {
		t.Errorf("unexpected properties %+v", props)
	}
}
