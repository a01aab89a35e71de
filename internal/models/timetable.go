package models

import (
	"strings"
	"time"
)

// Weekday is the lowercase day name keying a timetable bucket.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists all seven days in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid returns true when the weekday is one of the seven known names.
func (w Weekday) Valid() bool {
	switch w {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	default:
		return false
	}
}

// WeekdayOf maps a timestamp to its lowercase weekday name.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(strings.ToLower(t.Weekday().String()))
}

// ClockTimeOf formats a timestamp as HH:MM in its own location.
func ClockTimeOf(t time.Time) string {
	return t.Format("15:04")
}

// ClassSlot is a scheduled class occurrence within one weekday bucket.
type ClassSlot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location,omitempty"`
}

// Covers reports whether the slot is in session at the given HH:MM clock
// time. Both boundaries are inclusive, so a slot still matches at its exact
// end minute; HH:MM strings compare correctly as strings.
func (s ClassSlot) Covers(clock string) bool {
	return s.StartTime <= clock && clock <= s.EndTime
}

// Timetable maps every weekday to its ordered class slots. All seven keys are
// always present, possibly with empty slices.
type Timetable map[Weekday][]ClassSlot

// EmptyTimetable returns a timetable with all weekday buckets initialised.
func EmptyTimetable() Timetable {
	tt := make(Timetable, len(Weekdays))
	for _, day := range Weekdays {
		tt[day] = []ClassSlot{}
	}
	return tt
}

// Normalize fills in any missing weekday buckets.
func (t Timetable) Normalize() Timetable {
	if t == nil {
		return EmptyTimetable()
	}
	for _, day := range Weekdays {
		if _, ok := t[day]; !ok {
			t[day] = []ClassSlot{}
		}
	}
	return t
}

// HolidaySet holds the days on which no class matching happens. Recurring
// weekdays and ad-hoc calendar dates are both honoured; a moment is a holiday
// when either rule covers it.
type HolidaySet struct {
	Weekdays []Weekday `json:"weekdays,omitempty"`
	Dates    []string  `json:"dates,omitempty"`
}

// Contains reports whether the given moment falls on a holiday.
func (h HolidaySet) Contains(t time.Time) bool {
	day := WeekdayOf(t)
	for _, wd := range h.Weekdays {
		if wd == day {
			return true
		}
	}
	date := DateOf(t)
	for _, d := range h.Dates {
		if d == date {
			return true
		}
	}
	return false
}
