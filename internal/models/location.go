package models

import "time"

// DefaultCampusRadiusMeters applies when a geofence has no explicit radius.
const DefaultCampusRadiusMeters = 100.0

// Position is a single device location fix.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// CampusLocation is the circular geofence defining "on campus".
type CampusLocation struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radiusMeters"`
}

// Radius returns the configured radius, falling back to the default.
func (c CampusLocation) Radius() float64 {
	if c.RadiusMeters > 0 {
		return c.RadiusMeters
	}
	return DefaultCampusRadiusMeters
}

// PresenceStatus is the latest campus-presence snapshot for a user. It is
// overwritten on every location sample, not appended.
type PresenceStatus struct {
	IsOnCampus        bool      `json:"isOnCampus"`
	LastLocationCheck time.Time `json:"lastLocationCheck"`
}
