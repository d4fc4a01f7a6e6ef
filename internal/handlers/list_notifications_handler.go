package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	listmodels "io.revoapps.revofit/internal/models/list_notifications"
	notificationmodels "io.revoapps.revofit/internal/models/notification"
)

// ListNotifications returns the user's notifications, newest first, with
// the derived unread count.
func (h *NotificationsHandler) ListNotifications(c *gin.Context) {
	var req listmodels.ListNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	items, err := h.store.List(c.Request.Context(), uid.(string), req.Limit)
	if err != nil {
		h.logError(c, err, "failed to list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, listmodels.ListNotificationsResponse{
		Notifications: items,
		UnreadCount:   notificationmodels.UnreadCount(items),
	})
}

// GetUnreadCount answers from the live feed session when one exists,
// falling back to the cached derivation and then the store.
func (h *NotificationsHandler) GetUnreadCount(c *gin.Context) {
	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := h.feeds.UnreadCount(c.Request.Context(), uid.(string))
	if err != nil {
		h.logError(c, err, "failed to compute unread count")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute unread count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
