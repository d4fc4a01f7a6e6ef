package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.revoapps.revofit/internal/store"
)

// MarkRead marks a notification read through the feed session, which
// applies the change optimistically and re-syncs the badge. Safe to retry:
// a second call on the same record is a no-op.
func (h *NotificationsHandler) MarkRead(c *gin.Context) {
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
	if err := session.MarkAsRead(c.Request.Context(), req.ID); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		// Mutation errors do not interrupt the client; the optimistic local
		// change stands and the next snapshot reconciles.
		h.logError(c, err, "mark-read write failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}
