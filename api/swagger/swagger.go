package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Attend API",
        "description": "Automated attendance tracking: geofence presence, timetable matching and attendance records.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Weekly schedule and holidays"},
        {"name": "Attendance", "description": "Attendance history, manual marking and export"},
        {"name": "Location", "description": "Campus geofence and location checks"},
        {"name": "Dashboard", "description": "Aggregated attendance statistics"},
        {"name": "Notifications", "description": "Preferences and notification history"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Dependencies unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "Metrics exposition"}
                }
            }
        },
        "/api/v1/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Weekly timetable",
                "responses": {
                    "200": {"description": "Envelope with timetable and holiday configuration"}
                }
            },
            "put": {
                "tags": ["Timetable"],
                "summary": "Replace the weekly timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "Stored timetable"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/api/v1/timetable/today": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Today's classes",
                "responses": {
                    "200": {"description": "Resolved schedule for today"}
                }
            }
        },
        "/api/v1/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance history",
                "responses": {
                    "200": {"description": "Records, newest date first"}
                }
            }
        },
        "/api/v1/attendance/manual": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Manually record attendance for a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManualMarkRequest"}}
                ],
                "responses": {
                    "200": {"description": "Stored record"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/api/v1/attendance/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download attendance history",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Rendered file"},
                    "400": {"description": "Unsupported format"}
                }
            }
        },
        "/api/v1/location/check": {
            "post": {
                "tags": ["Location"],
                "summary": "Run an attendance check for a submitted position",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Position"}}
                ],
                "responses": {
                    "200": {"description": "Check outcome"},
                    "400": {"description": "Position out of range"}
                }
            }
        },
        "/api/v1/location/campus": {
            "get": {
                "tags": ["Location"],
                "summary": "Stored campus geofence",
                "responses": {
                    "200": {"description": "Campus location"},
                    "404": {"description": "No campus configured"}
                }
            },
            "put": {
                "tags": ["Location"],
                "summary": "Configure the campus geofence",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CampusLocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Stored geofence"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/api/v1/location/presence": {
            "get": {
                "tags": ["Location"],
                "summary": "Last persisted on-campus snapshot",
                "responses": {
                    "200": {"description": "Presence snapshot"},
                    "404": {"description": "No presence recorded yet"}
                }
            }
        },
        "/api/v1/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Attendance dashboard statistics",
                "responses": {
                    "200": {"description": "Overall, per-subject and trend aggregates"}
                }
            }
        },
        "/api/v1/profile": {
            "get": {
                "tags": ["Profile"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "Stored profile, empty when never saved"}
                }
            },
            "put": {
                "tags": ["Profile"],
                "summary": "Update the user profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "Stored profile"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/api/v1/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Notification history",
                "responses": {
                    "200": {"description": "Notifications, newest first"}
                }
            }
        },
        "/api/v1/notifications/settings": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Notification preferences",
                "responses": {
                    "200": {"description": "Stored or default preferences"}
                }
            },
            "put": {
                "tags": ["Notifications"],
                "summary": "Update notification preferences",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NotificationSettings"}}
                ],
                "responses": {
                    "200": {"description": "Stored preferences"},
                    "400": {"description": "Validation failure"}
                }
            }
        }
    },
    "definitions": {
        "Position": {
            "type": "object",
            "required": ["latitude", "longitude"],
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "CampusLocationRequest": {
            "type": "object",
            "required": ["latitude", "longitude"],
            "properties": {
                "name": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "radiusMeters": {"type": "number"}
            }
        },
        "SlotInput": {
            "type": "object",
            "required": ["name", "startTime", "endTime"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "code": {"type": "string"},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "10:00"}
            }
        },
        "SaveTimetableRequest": {
            "type": "object",
            "required": ["days"],
            "properties": {
                "days": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {"$ref": "#/definitions/SlotInput"}
                    }
                },
                "holidayWeekdays": {"type": "array", "items": {"type": "string"}},
                "holidayDates": {"type": "array", "items": {"type": "string", "example": "2025-03-10"}}
            }
        },
        "ManualMarkRequest": {
            "type": "object",
            "required": ["classId", "date", "status"],
            "properties": {
                "classId": {"type": "string"},
                "className": {"type": "string"},
                "classCode": {"type": "string"},
                "date": {"type": "string", "example": "2025-03-10"},
                "status": {"type": "string", "enum": ["present", "absent", "holiday", "pending"]}
            }
        },
        "ProfileRequest": {
            "type": "object",
            "properties": {
                "displayName": {"type": "string"},
                "email": {"type": "string"},
                "course": {"type": "string"},
                "semester": {"type": "string"}
            }
        },
        "NotificationSettings": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "classReminders": {"type": "boolean"},
                "attendanceWarnings": {"type": "boolean"},
                "lowAttendanceThreshold": {"type": "number"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
