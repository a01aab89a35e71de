package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-attend-api/internal/models"
	"github.com/noah-isme/campus-attend-api/internal/service"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
	"github.com/noah-isme/campus-attend-api/pkg/response"
)

type timetableService interface {
	Get(ctx context.Context, userID string) (models.Timetable, models.HolidaySet, error)
	Save(ctx context.Context, userID string, req service.SaveTimetableRequest) (models.Timetable, error)
	Today(ctx context.Context, userID string, now time.Time) (*service.TodaySchedule, error)
}

// TimetableHandler wires the timetable service to HTTP endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

type timetableResponse struct {
	Timetable       models.Timetable `json:"timetable"`
	HolidayWeekdays []models.Weekday `json:"holidayWeekdays"`
	HolidayDates    []string         `json:"holidayDates"`
}

// Get godoc
// @Summary Weekly timetable
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	timetable, holidays, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetableResponse{
		Timetable:       timetable,
		HolidayWeekdays: holidays.Weekdays,
		HolidayDates:    holidays.Dates,
	}, nil)
}

// Save godoc
// @Summary Replace the weekly timetable
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.SaveTimetableRequest true "Weekly schedule"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable [put]
func (h *TimetableHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	timetable, err := h.service.Save(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"timetable": timetable}, nil)
}

// Today godoc
// @Summary Today's classes
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/today [get]
func (h *TimetableHandler) Today(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	schedule, err := h.service.Today(c.Request.Context(), claims.UserID, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}
