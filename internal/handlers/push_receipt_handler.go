package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PushReceipt is invoked by the app when the user acts on a system
// notification. A payload referencing a notification marks it read, which
// is how tapping a push reconciles the in-app unread state.
func (h *NotificationsHandler) PushReceipt(c *gin.Context) {
	var req struct {
		Data map[string]string `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	session := h.feeds.Session(c.Request.Context(), uid.(string))
	session.HandlePushReceipt(c.Request.Context(), req.Data)

	c.JSON(http.StatusOK, gin.H{"message": "Receipt processed"})
}
