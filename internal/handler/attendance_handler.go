package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-attend-api/internal/models"
	"github.com/noah-isme/campus-attend-api/internal/service"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
	"github.com/noah-isme/campus-attend-api/pkg/response"
)

type attendanceService interface {
	List(ctx context.Context, userID string) ([]models.AttendanceRecord, error)
	ManualMark(ctx context.Context, userID string, req service.ManualMarkRequest) (*models.AttendanceRecord, error)
	Export(ctx context.Context, userID string, format service.ExportFormat) (*service.ExportFile, error)
}

// AttendanceHandler wires the attendance service to HTTP endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// List godoc
// @Summary Attendance history
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	records, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ManualMark godoc
// @Summary Manually record attendance for a class
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.ManualMarkRequest true "Attendance correction"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/manual [post]
func (h *AttendanceHandler) ManualMark(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ManualMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	rec, err := h.service.ManualMark(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// Export godoc
// @Summary Download attendance history
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	file, err := h.service.Export(c.Request.Context(), claims.UserID, service.ExportFormat(format))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
