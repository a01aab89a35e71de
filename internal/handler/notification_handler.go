package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-attend-api/internal/models"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
	"github.com/noah-isme/campus-attend-api/pkg/response"
)

type notificationService interface {
	Settings(ctx context.Context, userID string) (models.NotificationSettings, error)
	SaveSettings(ctx context.Context, userID string, settings models.NotificationSettings) error
	History(ctx context.Context, userID string) ([]models.Notification, error)
}

// NotificationHandler wires notification preferences and history endpoints.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Settings godoc
// @Summary Notification preferences
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/settings [get]
func (h *NotificationHandler) Settings(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	settings, err := h.service.Settings(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// SaveSettings godoc
// @Summary Update notification preferences
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body models.NotificationSettings true "Preferences"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications/settings [put]
func (h *NotificationHandler) SaveSettings(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var settings models.NotificationSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.service.SaveSettings(c.Request.Context(), claims.UserID, settings); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// List godoc
// @Summary Notification history
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	notifications, err := h.service.History(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}
