package timeline

import (
	"time"

	"radiology-portal/internal/models"
)

type PlottedPoint struct {
	models.ExamPoint
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type LaneLabel struct {
	Name string  `json:"name"`
	Y    float64 `json:"y"`
}

// Chart is everything the calendar map needs to draw one frame.
type Chart struct {
	Points []PlottedPoint `json:"points"`
	Lanes  []LaneLabel    `json:"lanes"`
	Today  float64        `json:"today"`
	Labels []AxisLabel    `json:"labels"`
}

// Layout computes a Chart for points already selected by a Filter. lanes
// are the departments or anatomical regions of the current view.
func Layout(points []models.ExamPoint, view View, lanes *Lanes, now time.Time, scale Scale, trackHeight float64) Chart {
	points = MarkFuture(points, now)
	xs := Positions(points, scale)

	chart := Chart{
		Points: make([]PlottedPoint, 0, len(points)),
		Today:  TodayPosition(points, now, scale),
		Labels: AxisLabels(points, scale),
	}
	for _, name := range lanes.Names() {
		chart.Lanes = append(chart.Lanes, LaneLabel{Name: name, Y: lanes.Y(name, trackHeight)})
	}
	for i, p := range points {
		lane := p.Department
		if view == ViewAnatomy {
			lane = p.AnatomicalRegion
		}
		chart.Points = append(chart.Points, PlottedPoint{
			ExamPoint: p,
			X:         xs[i],
			Y:         lanes.Y(lane, trackHeight),
		})
	}
	return chart
}
