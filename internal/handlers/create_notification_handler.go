package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	createmodels "io.revoapps.revofit/internal/models/create_notification"
	notificationmodels "io.revoapps.revofit/internal/models/notification"
	"io.revoapps.revofit/internal/store"
)

// CreateNotification persists a notification record. Immediate records (no
// scheduled_for) also trigger a best-effort push send; push failure never
// fails the create.
func (h *NotificationsHandler) CreateNotification(c *gin.Context) {
	var req createmodels.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if req.Title == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and message are required"})
		return
	}

	nType := notificationmodels.Type(req.Type)
	if !nType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown notification type"})
		return
	}

	priority := notificationmodels.Priority(req.Priority)
	if req.Priority == "" {
		priority = notificationmodels.PriorityNormal
	} else if !priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown priority"})
		return
	}

	id, err := h.store.Create(c.Request.Context(), store.CreateInput{
		UserID:       uid.(string),
		Type:         nType,
		Title:        req.Title,
		Message:      req.Message,
		Data:         req.Data,
		Priority:     priority,
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		h.logError(c, err, "failed to create notification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	c.JSON(http.StatusOK, createmodels.CreateNotificationResponse{ID: id})
}
