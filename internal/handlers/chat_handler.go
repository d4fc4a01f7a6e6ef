package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.revoapps.revofit/internal/chat"
	"io.revoapps.revofit/internal/store"
)

// ChatHandler serves the coach-chat token endpoint and the Stream Chat
// webhook that turns incoming messages into notifications.
type ChatHandler struct {
	chat   *chat.Service
	store  store.Store
	logger *zap.SugaredLogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *chat.Service, st store.Store, logger *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{
		chat:   chatService,
		store:  st,
		logger: logger,
	}
}

// GetChatToken provisions a Stream Chat user token for the mobile app.
func (h *ChatHandler) GetChatToken(c *gin.Context) {
	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if h.chat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Chat is not configured"})
		return
	}

	token, err := h.chat.UserToken(uid.(string))
	if err != nil {
		h.logError(c, err, "failed to create chat token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
