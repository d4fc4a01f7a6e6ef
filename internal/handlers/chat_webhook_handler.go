package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
	"io.revoapps.revofit/internal/store"
)

// HandleStreamChatWebhook turns new Stream Chat messages into message
// notifications for every channel member except the sender. Creating the
// record triggers the push send.
func (h *ChatHandler) HandleStreamChatWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	if h.chat != nil {
		signature := c.GetHeader("X-Signature")
		if signature == "" || !h.chat.VerifyWebhook(body, []byte(signature)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
			return
		}
	}

	var webhookData map[string]interface{}
	if err := json.Unmarshal(body, &webhookData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	// Only new-message events produce notifications
	eventType, ok := webhookData["type"].(string)
	if !ok || eventType != "message.new" {
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
		return
	}

	message, ok := webhookData["message"].(map[string]interface{})
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message data"})
		return
	}

	senderID, _ := message["user_id"].(string)
	messageText, _ := message["text"].(string)
	senderName := senderDisplayName(message)

	channelID := ""
	if channel, ok := webhookData["channel"].(map[string]interface{}); ok {
		channelID, _ = channel["id"].(string)
	}

	for _, memberID := range channelMembers(webhookData) {
		if memberID == senderID {
			continue
		}

		_, err := h.store.Create(c.Request.Context(), store.CreateInput{
			UserID:  memberID,
			Type:    notificationmodels.TypeMessage,
			Title:   "New message from " + senderName,
			Message: preview(messageText),
			Data: map[string]string{
				"senderId":  senderID,
				"channelId": channelID,
			},
			Priority: notificationmodels.PriorityHigh,
		})
		if err != nil {
			h.logError(c, err, "failed to create message notification", "member_id", memberID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications created"})
}

func channelMembers(webhookData map[string]interface{}) []string {
	channel, ok := webhookData["channel"].(map[string]interface{})
	if !ok {
		return nil
	}

	members, ok := channel["members"].([]interface{})
	if !ok {
		return nil
	}

	var memberIDs []string
	for _, member := range members {
		if memberMap, ok := member.(map[string]interface{}); ok {
			if userID, ok := memberMap["user_id"].(string); ok {
				memberIDs = append(memberIDs, userID)
			}
		}
	}
	return memberIDs
}

func senderDisplayName(message map[string]interface{}) string {
	if user, ok := message["user"].(map[string]interface{}); ok {
		if name, ok := user["name"].(string); ok && name != "" {
			return name
		}
	}
	return "Your coach"
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > 120 {
		return text[:117] + "..."
	}
	return text
}
