package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-attend-api/internal/models"
	"github.com/noah-isme/campus-attend-api/internal/service"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
	"github.com/noah-isme/campus-attend-api/pkg/response"
)

type locationService interface {
	Campus(ctx context.Context, userID string) (*models.CampusLocation, error)
	SaveCampus(ctx context.Context, userID string, req service.CampusLocationRequest) (*models.CampusLocation, error)
	Check(ctx context.Context, userID string, pos models.Position) (*service.CheckResult, error)
	Presence(ctx context.Context, userID string) (*models.PresenceStatus, error)
}

// LocationHandler wires the geofence and location-check endpoints.
type LocationHandler struct {
	service locationService
}

// NewLocationHandler constructs the handler.
func NewLocationHandler(service locationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// Check godoc
// @Summary Run an attendance check for a submitted position
// @Tags Location
// @Accept json
// @Produce json
// @Param payload body models.Position true "Device position"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /location/check [post]
func (h *LocationHandler) Check(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var pos models.Position
	if err := c.ShouldBindJSON(&pos); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.service.Check(c.Request.Context(), claims.UserID, pos)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Campus godoc
// @Summary Stored campus geofence
// @Tags Location
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /location/campus [get]
func (h *LocationHandler) Campus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	campus, err := h.service.Campus(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if campus == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no campus location configured"))
		return
	}
	response.JSON(c, http.StatusOK, campus, nil)
}

// SaveCampus godoc
// @Summary Configure the campus geofence
// @Tags Location
// @Accept json
// @Produce json
// @Param payload body service.CampusLocationRequest true "Campus geofence"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /location/campus [put]
func (h *LocationHandler) SaveCampus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CampusLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	campus, err := h.service.SaveCampus(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campus, nil)
}

// Presence godoc
// @Summary Last persisted on-campus snapshot
// @Tags Location
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /location/presence [get]
func (h *LocationHandler) Presence(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	presence, err := h.service.Presence(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if presence == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no presence recorded yet"))
		return
	}
	response.JSON(c, http.StatusOK, presence, nil)
}
