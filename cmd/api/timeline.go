package main

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"radiology-portal/internal/models"
	"radiology-portal/internal/timeline"
)

// laneHeight is the height in pixels of one calendar map row.
const laneHeight = 40

func parseFilter(q url.Values) (timeline.Filter, error) {
	f := timeline.DefaultFilter()
	if v := q.Get("view"); v != "" {
		f.View = timeline.View(v)
	}
	if v := q.Get("department"); v != "" {
		f.Department = v
	}
	if v := q.Get("anatomy"); v != "" {
		f.Anatomy = v
	}
	if v := q.Get("period"); v != "" {
		f.Period = timeline.Period(v)
	}

	periods := make([]any, len(timeline.Periods))
	for i, p := range timeline.Periods {
		periods[i] = p
	}
	err := validation.ValidateStruct(&f,
		validation.Field(&f.View, validation.In(timeline.ViewDepartment, timeline.ViewAnatomy)),
		validation.Field(&f.Period, validation.In(periods...)),
	)
	return f, err
}

type timelineData struct {
	Filter      timeline.Filter        `json:"filter"`
	Periods     []timeline.Period      `json:"-"`
	Chart       timeline.Chart         `json:"chart"`
	TrackHeight float64                `json:"track_height"`
	Records     []models.PatientRecord `json:"records,omitempty"`
	Departments []models.Department    `json:"departments"`
	Regions     []models.AnatomyRegion `json:"regions"`
}

func (s *server) buildTimeline(ctx context.Context, f timeline.Filter) (timelineData, error) {
	points, err := s.store.ListExamPoints(ctx)
	if err != nil {
		return timelineData{}, err
	}
	departments, err := s.store.ListDepartments(ctx)
	if err != nil {
		return timelineData{}, err
	}
	regions, err := s.store.ListAnatomyRegions(ctx)
	if err != nil {
		return timelineData{}, err
	}

	deptNames := make([]string, len(departments))
	for i, d := range departments {
		deptNames[i] = d.Name
	}
	regionNames := make([]string, len(regions))
	for i, r := range regions {
		regionNames[i] = r.Name
	}
	regionLanes := timeline.NewLanes(regionNames)

	lanes := timeline.NewLanes(deptNames)
	if f.View == timeline.ViewAnatomy {
		lanes = regionLanes
	}
	trackHeight := float64(laneHeight * lanes.Len())

	now := s.now()
	selected := f.Apply(points, regionLanes, now)
	return timelineData{
		Filter:      f,
		Periods:     timeline.Periods,
		Chart:       timeline.Layout(selected, f.View, lanes, now, timeline.FullScale, trackHeight),
		TrackHeight: trackHeight,
		Departments: departments,
		Regions:     regions,
	}, nil
}

func (s *server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := s.buildTimeline(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	records, err := s.store.ListPatientRecords(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data.Records = timeline.FilterRecords(records, timeline.RecordsAll)
	s.render(w, r, "timeline", "Timeline", data)
}

func (s *server) handleTimelineChart(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}
	data, err := s.buildTimeline(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

var recordKinds = []timeline.RecordKind{
	timeline.RecordsAll, timeline.RecordsImaging, timeline.RecordsLab, timeline.RecordsReports,
}

func (s *server) handleRecords(w http.ResponseWriter, r *http.Request) {
	kind := timeline.RecordsAll
	if v := r.URL.Query().Get("kind"); v != "" {
		kind = timeline.RecordKind(v)
	}
	if !slices.Contains(recordKinds, kind) {
		badRequest(w, validation.NewError("validation_in_invalid", "unknown record kind"))
		return
	}
	records, err := s.store.ListPatientRecords(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, timeline.FilterRecords(records, kind))
}
