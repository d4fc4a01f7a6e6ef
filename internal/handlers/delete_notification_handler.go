package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeleteNotification removes a single notification through the feed
// session.
func (h *NotificationsHandler) DeleteNotification(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Notification id is required"})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	session := h.feeds.Session(c.Request.Context(), uid.(string))
	if err := session.DeleteNotification(c.Request.Context(), req.ID); err != nil {
		h.logError(c, err, "delete write failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
