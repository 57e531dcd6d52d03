// Package timeline places dated exam points on the patient calendar map:
// horizontal position from the date, vertical lane from the department or
// anatomical region, a "today" marker and axis labels.
package timeline

import (
	"slices"
	"time"

	"radiology-portal/internal/models"
)

// Scale is the output range of a horizontal position, in percent of the
// chart width.
type Scale struct {
	Min float64
	Max float64
}

var (
	// FullScale spans the whole chart. It is the scale used by the portal.
	FullScale = Scale{Min: 0, Max: 100}
	// MarginScale keeps a 10% left and 5% right margin.
	MarginScale = Scale{Min: 10, Max: 95}
)

func (s Scale) Mid() float64 {
	return (s.Min + s.Max) / 2
}

func (s Scale) at(frac float64) float64 {
	return s.Min + frac*(s.Max-s.Min)
}

func (s Scale) clamp(v float64) float64 {
	return max(s.Min, min(s.Max, v))
}

// Span is the observed date range of a set of points.
type Span struct {
	Min time.Time
	Max time.Time
}

// Bounds returns the earliest and latest date. ok is false for no dates.
func Bounds(dates []time.Time) (span Span, ok bool) {
	if len(dates) == 0 {
		return Span{}, false
	}
	span = Span{Min: dates[0], Max: dates[0]}
	for _, d := range dates[1:] {
		if d.Before(span.Min) {
			span.Min = d
		}
		if d.After(span.Max) {
			span.Max = d
		}
	}
	return span, true
}

// Degenerate reports a span of a single instant.
func (s Span) Degenerate() bool {
	return s.Max.Equal(s.Min)
}

// Fraction is the unclamped linear position of t inside the span.
func (s Span) Fraction(t time.Time) float64 {
	return float64(t.Sub(s.Min)) / float64(s.Max.Sub(s.Min))
}

func Dates(points []models.ExamPoint) []time.Time {
	dates := make([]time.Time, len(points))
	for i, p := range points {
		dates[i] = p.Date
	}
	return dates
}

// Position maps t onto scale. A degenerate span puts everything on the
// midpoint.
func Position(t time.Time, span Span, scale Scale) float64 {
	if span.Degenerate() {
		return scale.Mid()
	}
	return scale.at(span.Fraction(t))
}

// Positions returns the horizontal position of every point, in input
// order. Points sharing an id keep their own positions.
func Positions(points []models.ExamPoint, scale Scale) []float64 {
	out := make([]float64, len(points))
	span, ok := Bounds(Dates(points))
	if !ok {
		return out
	}
	for i, p := range points {
		out[i] = Position(p.Date, span, scale)
	}
	return out
}

// TodayPosition places now on the same axis as points, clamped into the
// scale. No points, or a single-instant span, give the midpoint.
func TodayPosition(points []models.ExamPoint, now time.Time, scale Scale) float64 {
	span, ok := Bounds(Dates(points))
	if !ok || span.Degenerate() {
		return scale.Mid()
	}
	return scale.clamp(Position(now, span, scale))
}

type AxisLabel struct {
	Label    string    `json:"label"`
	Position float64   `json:"position"`
	Date     time.Time `json:"date"`
}

// AxisLabels emits one label per populated calendar month, or per year
// once the span exceeds one year. Each label sits at the first day of its
// bucket, clamped into the scale.
func AxisLabels(points []models.ExamPoint, scale Scale) []AxisLabel {
	span, ok := Bounds(Dates(points))
	if !ok {
		return []AxisLabel{}
	}

	yearly := span.Max.After(span.Min.AddDate(1, 0, 0))
	layout := "Jan 06"
	if yearly {
		layout = "2006"
	}

	seen := make(map[time.Time]bool)
	var labels []AxisLabel
	for _, p := range points {
		y, m, _ := p.Date.Date()
		if yearly {
			m = time.January
		}
		bucket := time.Date(y, m, 1, 0, 0, 0, 0, p.Date.Location())
		if seen[bucket] {
			continue
		}
		seen[bucket] = true
		labels = append(labels, AxisLabel{
			Label:    bucket.Format(layout),
			Position: scale.clamp(Position(bucket, span, scale)),
			Date:     bucket,
		})
	}

	slices.SortFunc(labels, func(a, b AxisLabel) int {
		if a.Position != b.Position {
			if a.Position < b.Position {
				return -1
			}
			return 1
		}
		return a.Date.Compare(b.Date)
	})
	return labels
}

// MarkFuture returns a copy of points with IsFuture set from now.
func MarkFuture(points []models.ExamPoint, now time.Time) []models.ExamPoint {
	out := make([]models.ExamPoint, len(points))
	for i, p := range points {
		p.IsFuture = p.Date.After(now)
		out[i] = p
	}
	return out
}
