package models

import "time"

// NotificationType labels persisted notification events.
type NotificationType string

const (
	NotificationAttendanceMarked  NotificationType = "attendance-marked"
	NotificationMarkedAbsent      NotificationType = "marked-absent"
	NotificationClassReminder     NotificationType = "class-reminder"
	NotificationAttendanceWarning NotificationType = "attendance-warning"
)

// Notification is a persisted notification event for a user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Subject   string           `json:"subject,omitempty"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

// NotificationSettings holds per-user notification preferences.
type NotificationSettings struct {
	Enabled                bool    `json:"enabled"`
	ClassReminders         bool    `json:"classReminders"`
	AttendanceWarnings     bool    `json:"attendanceWarnings"`
	LowAttendanceThreshold float64 `json:"lowAttendanceThreshold"`
}

// DefaultNotificationSettings mirror the defaults applied when a user has
// never saved preferences.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:                true,
		ClassReminders:         true,
		AttendanceWarnings:     true,
		LowAttendanceThreshold: 75,
	}
}

