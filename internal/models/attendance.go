package models

import (
	"fmt"
	"time"
)

// AttendanceStatus represents the outcome recorded for a class on a date.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusHoliday AttendanceStatus = "holiday"
	AttendanceStatusPending AttendanceStatus = "pending"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusHoliday, AttendanceStatusPending:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one outcome per user, class and calendar date.
type AttendanceRecord struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	ClassID          string           `json:"classId"`
	ClassName        string           `json:"className,omitempty"`
	ClassCode        string           `json:"classCode,omitempty"`
	Date             string           `json:"date"`
	Status           AttendanceStatus `json:"status"`
	ManuallyRecorded bool             `json:"manuallyRecorded,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
	UpdatedAt        *time.Time       `json:"updatedAt,omitempty"`
}

// AttendanceKey builds the deterministic record identity. Writes against the
// same key are upserts, never duplicate inserts.
func AttendanceKey(userID, classID, date string) string {
	return fmt.Sprintf("%s_%s_%s", userID, classID, date)
}

// DateOf formats the calendar date of a timestamp in its own location.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// AttendanceMark describes one attendance write. Manual distinguishes user
// edits, which always overwrite, from automated inference, which is subject
// to the no-downgrade rule.
type AttendanceMark struct {
	UserID    string
	ClassID   string
	ClassName string
	ClassCode string
	Date      string
	Status    AttendanceStatus
	Manual    bool
}

// SubjectSummary aggregates per-subject attendance for the dashboard and the
// low-attendance policy.
type SubjectSummary struct {
	ClassID            string  `json:"classId"`
	ClassName          string  `json:"className"`
	ClassCode          string  `json:"classCode"`
	ClassesConducted   int     `json:"classesConducted"`
	ClassesAttended    int     `json:"classesAttended"`
	Percentage         float64 `json:"percentage"`
	RequiredPercentage float64 `json:"requiredPercentage"`
}

// OverallSummary aggregates a user's full attendance history.
type OverallSummary struct {
	Percentage         float64 `json:"percentage"`
	RequiredPercentage float64 `json:"requiredPercentage"`
	DaysPresent        int     `json:"daysPresent"`
	TotalDays          int     `json:"totalDays"`
}

// TrendPoint is one bucket of the weekly or monthly dashboard series.
type TrendPoint struct {
	Name    string `json:"name"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Total   int    `json:"total"`
}

// StatusSplit counts records per status, the dashboard pie chart.
type StatusSplit struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Holiday int `json:"holiday"`
	Pending int `json:"pending"`
}

// DashboardStats is the full dashboard payload.
type DashboardStats struct {
	Overall  OverallSummary   `json:"overall"`
	Subjects []SubjectSummary `json:"subjects"`
	Weekly   []TrendPoint     `json:"weekly"`
	Monthly  []TrendPoint     `json:"monthly"`
	Split    StatusSplit      `json:"split"`
}
