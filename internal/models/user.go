package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserProfile holds the editable profile fields on the user document.
// The same document also carries the timetable, holiday set, campus location,
// presence snapshot and notification settings; profile saves merge so those
// colocated fields are never clobbered.
type UserProfile struct {
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Course      string `json:"course,omitempty"`
	Semester    string `json:"semester,omitempty"`
}

// UserDocument is the full per-user record as stored in the users collection.
type UserDocument struct {
	UserProfile
	Timetable            Timetable             `json:"timetable,omitempty"`
	Holidays             *HolidaySet           `json:"holidays,omitempty"`
	CampusLocation       *CampusLocation       `json:"campusLocation,omitempty"`
	IsOnCampus           *bool                 `json:"isOnCampus,omitempty"`
	LastLocationCheck    *time.Time            `json:"lastLocationCheck,omitempty"`
	NotificationSettings *NotificationSettings `json:"notificationSettings,omitempty"`
	UpdatedAt            *time.Time            `json:"updatedAt,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens. Token issuance is
// handled by the external identity provider; this service only validates.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
