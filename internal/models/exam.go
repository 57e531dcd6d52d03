package models

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryInbox         Category = "inbox"
	CategoryPending       Category = "pending"
	CategorySecondOpinion Category = "second-opinion"
	CategoryCompleted     Category = "completed"
)

// Categories lists the workflow boxes in navigation order.
var Categories = []Category{CategoryInbox, CategoryPending, CategorySecondOpinion, CategoryCompleted}

func (c Category) Valid() bool {
	switch c {
	case CategoryInbox, CategoryPending, CategorySecondOpinion, CategoryCompleted:
		return true
	}
	return false
}

type AIStatus string

const (
	AIStatusGreen  AIStatus = "green"
	AIStatusOrange AIStatus = "orange"
	AIStatusRed    AIStatus = "red"
)

type Site string

const (
	SitePrincipal    Site = "principal"
	SitePoliclinique Site = "policlinique"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

type Thumbnail struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	ImageURL string `json:"image_url"`
}

type Exam struct {
	ID             string      `json:"id"`
	PatientName    string      `json:"patient_name"`
	ExamID         string      `json:"exam_id"`
	ExamType       string      `json:"exam_type"`
	Date           time.Time   `json:"date"`
	Indication     string      `json:"indication"`
	AIStatus       AIStatus    `json:"ai_status"`
	Category       Category    `json:"category"`
	Site           Site        `json:"site"`
	Priority       Priority    `json:"priority"`
	Reported       bool        `json:"reported"`
	IsPinned       bool        `json:"is_pinned"`
	IsExpanded     bool        `json:"is_expanded"`
	IsSelected     bool        `json:"is_selected"`
	AssignedDoctor string      `json:"assigned_doctor,omitempty"` // doctor name, empty when unassigned
	Thumbnails     []Thumbnail `json:"thumbnails"`
}

// Modality returns the normalized modality code carried by the leading
// token of ExamType ("MRI - Brain - ..." -> "MR").
func (e *Exam) Modality() string {
	token := e.ExamType
	if i := strings.Index(token, " - "); i >= 0 {
		token = token[:i]
	}
	token = strings.ToUpper(strings.TrimSpace(token))
	if f := strings.Fields(token); len(f) > 0 {
		token = f[0]
	}
	switch token {
	case "MRI", "MR":
		return "MR"
	case "US", "ULTRASOUND":
		return "US"
	case "X-RAY", "XRAY", "XR", "CR":
		return "CR"
	case "MAMMOGRAPHY", "MG":
		return "MG"
	}
	return token
}

// DaysOld counts whole days between the exam date and now.
func (e *Exam) DaysOld(now time.Time) int {
	if now.Before(e.Date) {
		return 0
	}
	return int(now.Sub(e.Date).Hours() / 24)
}

func (e *Exam) DaysOldText(now time.Time) string {
	switch d := e.DaysOld(now); d {
	case 0:
		return "Today"
	case 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", d)
	}
}

// Clone returns a copy that shares nothing mutable with e.
func (e *Exam) Clone() *Exam {
	c := *e
	c.Thumbnails = append([]Thumbnail(nil), e.Thumbnails...)
	return &c
}
