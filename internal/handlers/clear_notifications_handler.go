package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ClearNotifications deletes every notification owned by the user and
// clears the badge optimistically, even while deletes are still draining.
// Safe to re-invoke until the result set is empty.
func (h *NotificationsHandler) ClearNotifications(c *gin.Context) {
	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	session := h.feeds.Session(c.Request.Context(), uid.(string))
	if err := session.ClearAll(c.Request.Context()); err != nil {
		h.logError(c, err, "clear-all incomplete")
		c.JSON(http.StatusOK, gin.H{"message": "Some notifications could not be removed; retry to finish clearing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications cleared"})
}
