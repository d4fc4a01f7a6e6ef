package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StreamFeed serves the live feed as server-sent events. The current
// snapshot is sent immediately, then every change delivers the full
// up-to-date list with its derived unread count. Closing the connection
// detaches the listener; the session itself stays warm until sign-out.
func (h *NotificationsHandler) StreamFeed(c *gin.Context) {
	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	session := h.feeds.Session(c.Request.Context(), uid.(string))
	snapshots, cancel := session.Listen()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
